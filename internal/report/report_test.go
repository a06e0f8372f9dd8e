package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/lightning-report-etl/internal/config"
	"github.com/couchcryptid/lightning-report-etl/internal/domain"
	"github.com/couchcryptid/lightning-report-etl/internal/observability"
)

func testDataset() domain.Dataset {
	return domain.Dataset{
		2018: {{Hour: 10, Month: "May", Lat: 40.2, Lon: 44.0}},
		2019: {{Hour: 13, Month: "Jun", Lat: 40.1, Lon: 44.5}, {Hour: 14, Month: "Jun", Lat: 39.5, Lon: 46.0}},
		2020: {{Hour: 2, Month: "Jul", Lat: 40.15, Lon: 44.04}},
	}
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.Feeds = []config.Feed{
		{Year: 2018, Source: "a", Reference: true},
		{Year: 2019, Source: "b"},
		{Year: 2020, Source: "c"},
	}
	return cfg
}

func names(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func TestBuild_Artifacts(t *testing.T) {
	cfg := testConfig(t)
	metrics := observability.NewMetrics()
	b := NewBuilder(observability.DiscardLogger(), metrics)

	paths, err := b.Build(context.Background(), testDataset(), cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"HeatMap_2019.html",
		"Density_2019.pdf",
		"HeatMap_2020.html",
		"Density_2020.pdf",
		"HeatMap_AllYears.html",
		"MapWithDots.html",
		"ArmavirMap.html",
		"HourHistogram.pdf",
		"MonthlyHistogram.pdf",
		"MonthlyComparison.pdf",
		"Summary.xlsx",
	}, names(paths))

	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), p)
	}

	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.ArtifactsWritten.WithLabelValues("html")))
	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.ArtifactsWritten.WithLabelValues("pdf")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ArtifactsWritten.WithLabelValues("xlsx")))
}

func TestBuild_ReferenceYearPlacement(t *testing.T) {
	cfg := testConfig(t)
	paths, err := NewBuilder(observability.DiscardLogger(), nil).Build(context.Background(), testDataset(), cfg)
	require.NoError(t, err)
	assert.NotContains(t, names(paths), "HeatMap_2018.html")

	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(cfg.OutputDir, name))
		require.NoError(t, err)
		return string(data)
	}

	dots := read("MapWithDots.html")
	assert.NotContains(t, dots, `overlays["2018"]`)
	// Newest year takes the first palette colour.
	assert.Less(t, strings.Index(dots, `overlays["2020"]`), strings.Index(dots, `overlays["2019"]`))

	armavir := read("ArmavirMap.html")
	assert.Contains(t, armavir, `overlays["2018"]`)
	assert.Contains(t, armavir, "[[40.2,44]]", "2018 strike inside Armavir")
	assert.NotContains(t, armavir, "39.5", "strike outside Armavir is filtered")

	all := read("HeatMap_AllYears.html")
	assert.Contains(t, all, "[40.2,44]")
	assert.Contains(t, all, "[39.5,46]")
}

func TestBuild_Summary(t *testing.T) {
	cfg := testConfig(t)
	cfg.BoundaryPath = "testdata/outline.geojson"

	_, err := NewBuilder(observability.DiscardLogger(), nil).Build(context.Background(), testDataset(), cfg)
	require.NoError(t, err)

	f, err := excelize.OpenFile(filepath.Join(cfg.OutputDir, "Summary.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	counts, err := f.GetRows("counts")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"year", "region", "Armavir", "boundary"},
		{"2018", "1", "1", "1"},
		{"2019", "2", "1", "2"},
		{"2020", "1", "1", "1"},
	}, counts)

	hours, err := f.GetRows("hours")
	require.NoError(t, err)
	require.Len(t, hours, 3, "header plus the two chart years")
	assert.Equal(t, "2019", hours[1][0])
	assert.Equal(t, "2020", hours[2][0])
}

func TestBuild_EmptyDataset(t *testing.T) {
	cfg := testConfig(t)
	paths, err := NewBuilder(observability.DiscardLogger(), nil).Build(context.Background(), domain.Dataset{}, cfg)
	require.NoError(t, err)
	assert.Len(t, paths, 11)
}

func TestBuild_Errors(t *testing.T) {
	t.Run("missing boundary", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.BoundaryPath = "testdata/absent.geojson"
		_, err := NewBuilder(observability.DiscardLogger(), nil).Build(context.Background(), testDataset(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read boundary")
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		paths, err := NewBuilder(observability.DiscardLogger(), nil).Build(ctx, testDataset(), testConfig(t))
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, paths)
	})
}

func TestFileSafe(t *testing.T) {
	assert.Equal(t, "Armavir", fileSafe("Armavir"))
	assert.Equal(t, "LoriNorth", fileSafe("Lori / North"))
	assert.Equal(t, "a_b-1", fileSafe("a_b-1"))
}
