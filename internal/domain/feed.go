package domain

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// maxLineBytes bounds a single feed line. Real exports stay well under 1 KiB.
const maxLineBytes = 1 << 20

// FeedStats summarizes what happened to the rows of one feed.
type FeedStats struct {
	Rows        int            `json:"rows"` // non-blank data rows after the header
	Kept        int            `json:"kept"`
	OutOfRegion int            `json:"out_of_region"`
	Malformed   map[Column]int `json:"malformed"`
}

// MalformedTotal sums malformed rows across columns.
func (s FeedStats) MalformedTotal() int {
	n := 0
	for _, c := range s.Malformed {
		n += c
	}
	return n
}

// ParseFeed reads a whitespace-delimited feed, skipping the header line and
// blank lines, and returns the rows that normalize cleanly and fall inside
// region, in feed order. Malformed rows are counted and handed to
// onMalformed (which may be nil); they never make ParseFeed fail. Only a
// read failure is returned, wrapped in ErrSourceUnavailable.
func ParseFeed(r io.Reader, region Region, onMalformed func(*RowError)) ([]Strike, FeedStats, error) {
	stats := FeedStats{Malformed: make(map[Column]int)}
	strikes := make([]Strike, 0)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for sc.Scan() {
		line++
		if line == 1 {
			continue
		}

		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		stats.Rows++

		strike, err := ParseRow(fields, line)
		if err != nil {
			var rowErr *RowError
			if errors.As(err, &rowErr) {
				stats.Malformed[rowErr.Column]++
				if onMalformed != nil {
					onMalformed(rowErr)
				}
			}
			continue
		}

		if !region.Contains(strike.Lat, strike.Lon) {
			stats.OutOfRegion++
			continue
		}

		strikes = append(strikes, strike)
		stats.Kept++
	}

	if err := sc.Err(); err != nil {
		return nil, stats, fmt.Errorf("%w: read feed: %w", ErrSourceUnavailable, err)
	}
	return strikes, stats, nil
}
