package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/lightning-report-etl/internal/analysis"
	"github.com/couchcryptid/lightning-report-etl/internal/domain"
)

var armenia = domain.Region{LonMin: 43.45, LonMax: 47.17, LatMin: 38.84, LatMax: 41.3}

const outline = `{"type":"FeatureCollection","features":[]}`

// --- HTML ---

// compact drops the spaces the template escaper puts around numbers.
func compact(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

func TestWriteHeatMap(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHeatMap(&buf, HeatMap{
		Title:    "Lightning 2020",
		View:     View{Lat: 40, Lon: 45, Zoom: 7.5},
		Points:   [][2]float64{{40.1, 44.5}, {39.5, 45.25}},
		Boundary: json.RawMessage(outline),
	})
	require.NoError(t, err)

	page := buf.String()
	assert.Contains(t, page, "<title>Lightning 2020</title>")
	assert.Contains(t, page, "leaflet-heat.js")
	assert.Contains(t, compact(page), "setView([40,45],7.5)")
	assert.Contains(t, page, "L.heatLayer([[40.1,44.5],[39.5,45.25]]")
	assert.Contains(t, page, `"minOpacity":0.2`)
	assert.Contains(t, page, `"max":0.8`)
	assert.Contains(t, page, `"radius":15`)
	assert.Contains(t, page, `"blur":10`)
	assert.Contains(t, page, `L.geoJSON({"type":"FeatureCollection","features":[]}`)
}

func TestWriteHeatMap_EmptyAndNoBoundary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHeatMap(&buf, HeatMap{Title: "empty", View: View{Lat: 40, Lon: 45, Zoom: 7}}))

	page := buf.String()
	assert.Contains(t, page, "L.heatLayer([]")
	assert.NotContains(t, page, "L.geoJSON")
}

func TestWriteHeatMap_EscapesTitle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHeatMap(&buf, HeatMap{Title: "<script>x</script>"}))
	assert.NotContains(t, buf.String(), "<title><script>")
}

func TestWriteDotsMap(t *testing.T) {
	armavir := domain.Region{LonMin: 43.6, LonMax: 44.6, LatMin: 40, LatMax: 40.3}

	var buf bytes.Buffer
	err := WriteDotsMap(&buf, DotsMap{
		Title: "Armavir",
		View:  View{Lat: 40.15446, Lon: 44.03815, Zoom: 10},
		Layers: []DotLayer{
			{Name: "2021", Color: "red", Points: [][2]float64{{40.15, 44.04}}},
			{Name: "2020", Color: "blue"},
		},
		Outline: &armavir,
	})
	require.NoError(t, err)

	page := buf.String()
	assert.NotContains(t, page, "leaflet-heat.js")
	assert.Contains(t, page, `overlays["2021"]`)
	assert.Contains(t, page, `overlays["2020"]`)
	assert.Contains(t, page, `var color = "red"`)
	assert.Contains(t, page, "[[40.15,44.04]].forEach")
	assert.Contains(t, page, "[].forEach")
	assert.Contains(t, compact(page), "L.rectangle([[40,43.6],[40.3,44.6]]")
	assert.Contains(t, page, "L.control.layers")
}

// --- PDF ---

func TestWriteBarChart(t *testing.T) {
	tests := []struct {
		name  string
		chart BarChart
	}{
		{
			name: "single series",
			chart: BarChart{
				Title: "Hours", XLabel: "Hour (UTC)", YLabel: "Strikes",
				Labels: []string{"0", "1", "2"},
				Series: []Series{{Name: "2020", Color: "blue", Values: []int{3, 0, 7}}},
			},
		},
		{
			name: "grouped",
			chart: BarChart{
				Title:  "Months",
				Labels: analysis.MonthLabels[:],
				Series: []Series{
					{Name: "2020", Color: "red", Values: make([]int, 12)},
					{Name: "2021", Color: "#00ff00", Values: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
				},
			},
		},
		{
			name:  "empty",
			chart: BarChart{Title: "Nothing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteBarChart(&buf, tt.chart))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
		})
	}
}

func TestWriteDensityChart(t *testing.T) {
	strikes := []domain.Strike{{Lat: 40.1, Lon: 44.5}, {Lat: 40.1, Lon: 44.5}, {Lat: 39.5, Lon: 45.25}}
	grid := analysis.Histogram2D(strikes, armenia, 100)

	var buf bytes.Buffer
	require.NoError(t, WriteDensityChart(&buf, DensityChart{Title: "Density 2020", Grid: grid, Clamp: 9}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	empty := analysis.Histogram2D(nil, armenia, 100)
	require.NoError(t, WriteDensityChart(&buf, DensityChart{Title: "Density 2019", Grid: empty, Clamp: 9}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestNiceStep(t *testing.T) {
	tests := []struct {
		top, want int
	}{
		{0, 1},
		{3, 1},
		{9, 2},
		{7, 2},
		{42, 10},
		{1000, 200},
	}
	for _, tt := range tests {
		got := niceStep(tt.top, 5)
		assert.Equal(t, tt.want, got, "top=%d", tt.top)
		assert.GreaterOrEqual(t, got*5, tt.top)
	}
}

func TestViridis(t *testing.T) {
	r, g, b := viridis(0)
	assert.Equal(t, [3]int{68, 1, 84}, [3]int{r, g, b})
	r, g, b = viridis(1)
	assert.Equal(t, [3]int{253, 231, 37}, [3]int{r, g, b})
	r, g, b = viridis(2)
	assert.Equal(t, [3]int{253, 231, 37}, [3]int{r, g, b}, "clamped above 1")
	r, g, b = viridis(0.5)
	assert.Equal(t, [3]int{33, 145, 140}, [3]int{r, g, b})
}

func TestColorRGB(t *testing.T) {
	tests := []struct {
		in   string
		want [3]int
	}{
		{"red", [3]int{214, 39, 40}},
		{" Blue ", [3]int{31, 119, 180}},
		{"#102030", [3]int{16, 32, 48}},
		{"#zzzzzz", [3]int{127, 127, 127}},
		{"mauve", [3]int{127, 127, 127}},
	}
	for _, tt := range tests {
		r, g, b := colorRGB(tt.in)
		assert.Equal(t, tt.want, [3]int{r, g, b}, tt.in)
	}
}

// --- XLSX ---

func TestWriteSummary(t *testing.T) {
	s := Summary{
		SubRegions: []string{"Armavir"},
		Counts: []analysis.YearCounts{
			{Year: 2020, Region: 3, SubRegions: []int{1}},
			{Year: 2021, Region: 2, SubRegions: []int{2}},
		},
		InBoundary: map[int]int{2020: 2, 2021: 2},
		Hours:      []YearSeries{{Year: 2020, Values: make([]int, 24)}},
		Months:     []YearSeries{{Year: 2020, Values: []int{0, 0, 0, 0, 0, 2, 1, 0, 0, 0, 0, 0}}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, s))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetCounts, SheetHours, SheetMonths}, f.GetSheetList())

	counts, err := f.GetRows(SheetCounts)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"year", "region", "Armavir", "boundary"},
		{"2020", "3", "1", "2"},
		{"2021", "2", "2", "2"},
	}, counts)

	hours, err := f.GetRows(SheetHours)
	require.NoError(t, err)
	require.Len(t, hours, 2)
	assert.Len(t, hours[0], 25)
	assert.Equal(t, "23", hours[0][24])

	months, err := f.GetRows(SheetMonths)
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Equal(t, "Jan", months[0][1])
	assert.Equal(t, "2", months[1][6])
}

func TestWriteSummary_NoBoundaryColumn(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, Summary{
		Counts: []analysis.YearCounts{{Year: 2020, Region: 0, SubRegions: []int{}}},
	}))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	counts, err := f.GetRows(SheetCounts)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"year", "region"}, {"2020", "0"}}, counts)
}
