// Package analysis turns normalized strikes into the counts and grids the
// report renders.
package analysis

import (
	"math"

	"github.com/couchcryptid/lightning-report-etl/internal/domain"
)

// MonthLabels are the feed's month labels in calendar order.
var MonthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthIndex returns the 0-based position of a month label, or -1.
func MonthIndex(label string) int {
	for i, m := range MonthLabels {
		if m == label {
			return i
		}
	}
	return -1
}

// HourCounts tallies strikes by UTC hour.
func HourCounts(strikes []domain.Strike) [24]int {
	var counts [24]int
	for _, s := range strikes {
		if s.Hour >= 0 && s.Hour < 24 {
			counts[s.Hour]++
		}
	}
	return counts
}

// MonthCounts tallies strikes by month, January first. Labels outside
// MonthLabels are ignored.
func MonthCounts(strikes []domain.Strike) [12]int {
	var counts [12]int
	for _, s := range strikes {
		if i := MonthIndex(s.Month); i >= 0 {
			counts[i]++
		}
	}
	return counts
}

// Grid is a square 2-D histogram over a region. Cells[y][x] counts the
// strikes whose longitude falls in column x and latitude in row y; row 0 is
// the southern edge.
type Grid struct {
	Bins   int
	Region domain.Region
	Cells  [][]int
}

// Max returns the largest cell count.
func (g Grid) Max() int {
	m := 0
	for _, row := range g.Cells {
		for _, c := range row {
			m = max(m, c)
		}
	}
	return m
}

// Total returns the number of strikes binned.
func (g Grid) Total() int {
	n := 0
	for _, row := range g.Cells {
		for _, c := range row {
			n += c
		}
	}
	return n
}

// Histogram2D bins strikes into a bins×bins grid spanning region. The upper
// edge of each axis belongs to the last bin; strikes outside region are
// skipped. bins below 1 is treated as 1.
func Histogram2D(strikes []domain.Strike, region domain.Region, bins int) Grid {
	bins = max(bins, 1)
	cells := make([][]int, bins)
	for i := range cells {
		cells[i] = make([]int, bins)
	}
	g := Grid{Bins: bins, Region: region, Cells: cells}

	for _, s := range strikes {
		if !region.Contains(s.Lat, s.Lon) {
			continue
		}
		x := binIndex(s.Lon, region.LonMin, region.LonMax, bins)
		y := binIndex(s.Lat, region.LatMin, region.LatMax, bins)
		cells[y][x]++
	}
	return g
}

func binIndex(v, lo, hi float64, bins int) int {
	if hi <= lo {
		return 0
	}
	i := int(math.Floor((v - lo) / (hi - lo) * float64(bins)))
	return min(max(i, 0), bins-1)
}

// Points returns (lat, lon) pairs in strike order, the shape the heat map
// layer consumes.
func Points(strikes []domain.Strike) [][2]float64 {
	out := make([][2]float64, len(strikes))
	for i, s := range strikes {
		out[i] = [2]float64{s.Lat, s.Lon}
	}
	return out
}

// YearCounts is one row of the summary: the strikes of a year in the main
// region and in each sub-region.
type YearCounts struct {
	Year       int
	Region     int
	SubRegions []int
}

// CountByYear reports, per dataset year in ascending order, the region count
// and the count inside each of subs.
func CountByYear(ds domain.Dataset, subs []domain.Region) []YearCounts {
	years := ds.Years()
	out := make([]YearCounts, 0, len(years))
	for _, y := range years {
		row := YearCounts{Year: y, Region: ds.Count(y), SubRegions: make([]int, len(subs))}
		for i, sub := range subs {
			row.SubRegions[i] = len(domain.FilterByRegion(ds[y], sub.LatRange(), sub.LonRange()))
		}
		out = append(out, row)
	}
	return out
}
