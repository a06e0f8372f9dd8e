// Package feedgen writes synthetic flash exports in the upstream text
// format, for fixtures and local runs without network access.
package feedgen

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/couchcryptid/lightning-report-etl/internal/domain"
)

// Header is the first line of every generated feed.
const Header = "Time Months Year Day Latitude Longitude Radiance"

// Options controls a generated feed.
type Options struct {
	Year int
	Rows int
	Seed uint64

	// Region is where most strikes land. Margin widens it on every side so
	// that some rows fall outside and get filtered.
	Region domain.Region
	Margin float64

	// MalformedEvery makes every n-th row unparseable. Zero disables it.
	MalformedEvery int
}

// Stats describes what was written.
type Stats struct {
	Rows      int
	Malformed int
	InRegion  int
}

// Generate writes a feed to w. The same options always produce the same
// bytes.
func Generate(w io.Writer, opts Options) (Stats, error) {
	if opts.Rows < 0 {
		return Stats{}, fmt.Errorf("rows must not be negative, got %d", opts.Rows)
	}
	if err := opts.Region.Validate(); err != nil {
		return Stats{}, fmt.Errorf("region: %w", err)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, uint64(opts.Year)))
	bw := bufio.NewWriter(w)
	var stats Stats

	if _, err := fmt.Fprintln(bw, Header); err != nil {
		return stats, err
	}

	start := time.Date(opts.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := start.AddDate(1, 0, 0).Sub(start).Hours() / 24

	for i := 1; i <= opts.Rows; i++ {
		ts := start.
			AddDate(0, 0, rng.IntN(int(days))).
			Add(time.Duration(rng.Int64N(int64(24 * time.Hour))))
		lat := between(rng, opts.Region.LatMin-opts.Margin, opts.Region.LatMax+opts.Margin)
		lon := between(rng, opts.Region.LonMin-opts.Margin, opts.Region.LonMax+opts.Margin)

		stamp := ts.Format("2006-002T15:04:05.000Z")
		if opts.MalformedEvery > 0 && i%opts.MalformedEvery == 0 {
			// Day 999 never parses.
			stamp = fmt.Sprintf("%04d-999T%s", opts.Year, ts.Format("15:04:05.000Z"))
			stats.Malformed++
		} else if opts.Region.Contains(roundTo4(lat), roundTo4(lon)) {
			stats.InRegion++
		}

		_, err := fmt.Fprintf(bw, "%s [%s %d] %03d %.4f, %.4f) %.3f\n",
			stamp, ts.Format("Jan"), opts.Year, ts.YearDay(), lat, lon, rng.Float64())
		if err != nil {
			return stats, err
		}
		stats.Rows++
	}

	if err := bw.Flush(); err != nil {
		return stats, err
	}
	return stats, nil
}

func between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// roundTo4 matches the four decimals the feed is printed with.
func roundTo4(v float64) float64 {
	out, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 4, 64), 64)
	return out
}
