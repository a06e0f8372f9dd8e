// Package boundary loads the country outline drawn over every map.
package boundary

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Boundary is a parsed GeoJSON FeatureCollection.
type Boundary struct {
	// Raw is the file content, embedded as-is in the HTML overlays.
	Raw   []byte
	Bound orb.Bound

	features *geojson.FeatureCollection
}

// Load reads a GeoJSON FeatureCollection from path. An empty path means no
// overlay and yields a nil Boundary.
func Load(path string) (*Boundary, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundary: %w", err)
	}
	return Parse(data)
}

// Parse decodes GeoJSON bytes. The collection must hold at least one
// geometry.
func Parse(data []byte) (*Boundary, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse boundary: %w", err)
	}

	var (
		bound orb.Bound
		seen  bool
	)
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		if !seen {
			bound, seen = f.Geometry.Bound(), true
			continue
		}
		bound = bound.Union(f.Geometry.Bound())
	}
	if !seen {
		return nil, fmt.Errorf("parse boundary: no geometries in feature collection")
	}

	return &Boundary{Raw: data, Bound: bound, features: fc}, nil
}

// Contains reports whether (lat, lon) lies inside any polygon of the outline.
// Point and line features never contain anything.
func (b *Boundary) Contains(lat, lon float64) bool {
	p := orb.Point{lon, lat}
	if !b.Bound.Contains(p) {
		return false
	}
	for _, f := range b.features.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if planar.PolygonContains(g, p) {
				return true
			}
		case orb.MultiPolygon:
			if planar.MultiPolygonContains(g, p) {
				return true
			}
		}
	}
	return false
}
