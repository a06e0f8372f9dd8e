package domain

import (
	"errors"
	"fmt"
)

// Range is an inclusive interval of degrees.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// Region is an inclusive latitude/longitude rectangle.
type Region struct {
	LonMin float64 `yaml:"lon_min" json:"lon_min"`
	LonMax float64 `yaml:"lon_max" json:"lon_max"`
	LatMin float64 `yaml:"lat_min" json:"lat_min"`
	LatMax float64 `yaml:"lat_max" json:"lat_max"`
}

// NewRegion builds a Region from latitude and longitude ranges.
func NewRegion(lat, lon Range) Region {
	return Region{LonMin: lon.Min, LonMax: lon.Max, LatMin: lat.Min, LatMax: lat.Max}
}

// LatRange returns the region's latitude interval.
func (r Region) LatRange() Range { return Range{Min: r.LatMin, Max: r.LatMax} }

// LonRange returns the region's longitude interval.
func (r Region) LonRange() Range { return Range{Min: r.LonMin, Max: r.LonMax} }

// Contains reports whether the point lies inside the region, bounds included.
func (r Region) Contains(lat, lon float64) bool {
	return r.LatRange().Contains(lat) && r.LonRange().Contains(lon)
}

// Validate checks that both axes are ordered and within WGS-84 limits.
func (r Region) Validate() error {
	if r.LatMin > r.LatMax {
		return fmt.Errorf("lat_min %g is greater than lat_max %g", r.LatMin, r.LatMax)
	}
	if r.LonMin > r.LonMax {
		return fmt.Errorf("lon_min %g is greater than lon_max %g", r.LonMin, r.LonMax)
	}
	if r.LatMin < -90 || r.LatMax > 90 {
		return errors.New("latitude bounds must lie within [-90, 90]")
	}
	if r.LonMin < -180 || r.LonMax > 180 {
		return errors.New("longitude bounds must lie within [-180, 180]")
	}
	return nil
}

// FilterByRegion keeps the strikes whose latitude lies in lat and longitude
// in lon, both inclusive, preserving order. It never returns nil.
func FilterByRegion(strikes []Strike, lat, lon Range) []Strike {
	out := make([]Strike, 0, len(strikes))
	for _, s := range strikes {
		if lat.Contains(s.Lat) && lon.Contains(s.Lon) {
			out = append(out, s)
		}
	}
	return out
}
