package domain

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Column names a feed column that takes part in normalization.
type Column string

const (
	ColumnTime      Column = "Time"
	ColumnMonths    Column = "Months"
	ColumnLatitude  Column = "Latitude"
	ColumnLongitude Column = "Longitude"

	// ColumnRow is reported when a row is too short to index every column.
	ColumnRow Column = "Row"
)

// MinColumns is the number of whitespace-delimited fields a data row must
// carry for every rule in Rules to find its column.
const MinColumns = 6

// TimeLayout parses the feed timestamp "2020-152T13:04:05.123Z".
// "002" is the three-digit day of year. The fraction is checked separately
// by fractionSuffix since the layout alone treats it as optional.
const TimeLayout = "2006-002T15:04:05.999999999Z"

// fractionSuffix requires one to six fractional second digits before the Z.
var fractionSuffix = regexp.MustCompile(`:\d{2}\.\d{1,6}Z$`)

// Rule strips the known upstream decorations from one column.
type Rule struct {
	Column Column
	Index  int
	Clean  func(string) string
}

// Rules is the normalization table, keyed by column. Cleaning happens before
// any type conversion; conversion lives in ParseRow.
var Rules = []Rule{
	{Column: ColumnTime, Index: 0, Clean: stripLeadingBracket},
	{Column: ColumnMonths, Index: 1, Clean: removeAll("[")},
	{Column: ColumnLatitude, Index: 4, Clean: removeAll(",")},
	{Column: ColumnLongitude, Index: 5, Clean: removeAll(")")},
}

// Clean applies the rule registered for col to raw. Columns without a rule
// are returned unchanged.
func Clean(col Column, raw string) string {
	for _, r := range Rules {
		if r.Column == col {
			return r.Clean(raw)
		}
	}
	return raw
}

func stripLeadingBracket(s string) string {
	return strings.TrimPrefix(s, "[")
}

func removeAll(sub string) func(string) string {
	return func(s string) string {
		return strings.ReplaceAll(s, sub, "")
	}
}

var (
	errTooFewColumns = errors.New("too few columns")
	errNotFinite     = errors.New("value is not finite")
	errFraction      = errors.New("timestamp needs 1 to 6 fractional second digits")
)

// ParseRow normalizes the whitespace-split fields of one data row.
// line is the 1-based line number in the feed and is only used for
// reporting. Failures are *RowError values matching ErrMalformedRecord.
func ParseRow(fields []string, line int) (Strike, error) {
	if len(fields) < MinColumns {
		return Strike{}, &RowError{
			Line:   line,
			Column: ColumnRow,
			Value:  strings.Join(fields, " "),
			Err:    fmt.Errorf("%w: got %d, want at least %d", errTooFewColumns, len(fields), MinColumns),
		}
	}

	cleaned := make(map[Column]string, len(Rules))
	for _, r := range Rules {
		cleaned[r.Column] = r.Clean(fields[r.Index])
	}

	hour, err := parseHour(cleaned[ColumnTime])
	if err != nil {
		return Strike{}, &RowError{Line: line, Column: ColumnTime, Value: fields[0], Err: err}
	}

	lat, err := parseCoordinate(cleaned[ColumnLatitude])
	if err != nil {
		return Strike{}, &RowError{Line: line, Column: ColumnLatitude, Value: fields[4], Err: err}
	}

	lon, err := parseCoordinate(cleaned[ColumnLongitude])
	if err != nil {
		return Strike{}, &RowError{Line: line, Column: ColumnLongitude, Value: fields[5], Err: err}
	}

	return Strike{
		Hour:  hour,
		Month: cleaned[ColumnMonths],
		Lat:   lat,
		Lon:   lon,
		Line:  line,
	}, nil
}

// parseHour extracts the UTC hour of day from a feed timestamp.
func parseHour(s string) (int, error) {
	if !fractionSuffix.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", errFraction, s)
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return 0, err
	}
	return t.UTC().Hour(), nil
}

// parseCoordinate converts a cleaned coordinate string into finite degrees.
func parseCoordinate(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}
