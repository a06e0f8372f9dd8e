package domain

import (
	"maps"
	"slices"
)

// Strike is a single normalized lightning detection.
type Strike struct {
	Hour  int     `json:"hour"`
	Month string  `json:"month"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Line  int     `json:"line,omitempty"` // 1-based line number in the source feed
}

// Dataset maps a year to the strikes ingested for it, in feed order.
// It is built once per run and treated as read-only afterwards.
type Dataset map[int][]Strike

// Years returns the dataset's years in ascending order.
func (d Dataset) Years() []int {
	return slices.Sorted(maps.Keys(d))
}

// All concatenates every year's strikes in ascending year order.
func (d Dataset) All() []Strike {
	var out []Strike
	for _, year := range d.Years() {
		out = append(out, d[year]...)
	}
	return out
}

// Count returns the number of strikes recorded for year.
func (d Dataset) Count(year int) int {
	return len(d[year])
}
