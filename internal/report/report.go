// Package report turns a dataset into the HTML maps, PDF charts and summary
// workbook of a run.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/lightning-report-etl/internal/adapter/boundary"
	"github.com/couchcryptid/lightning-report-etl/internal/adapter/render"
	"github.com/couchcryptid/lightning-report-etl/internal/analysis"
	"github.com/couchcryptid/lightning-report-etl/internal/config"
	"github.com/couchcryptid/lightning-report-etl/internal/domain"
	"github.com/couchcryptid/lightning-report-etl/internal/observability"
)

// Clamp is the top of the density colour scale.
const Clamp = 9

const (
	hourColor  = "purple"
	monthColor = "pink"
)

// Builder writes every report artifact for a dataset.
type Builder struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewBuilder creates a Builder.
func NewBuilder(logger *slog.Logger, metrics *observability.Metrics) *Builder {
	return &Builder{logger: logger, metrics: metrics}
}

type run struct {
	*Builder
	ctx      context.Context
	cfg      *config.Config
	ds       domain.Dataset
	outline  *boundary.Boundary
	geojson  json.RawMessage
	written  []string
	chartYrs []int
}

// Build writes the artifacts into cfg.OutputDir and returns their paths in
// the order they were written. Years missing from the dataset render as
// empty charts and maps.
func (b *Builder) Build(ctx context.Context, ds domain.Dataset, cfg *config.Config) ([]string, error) {
	outline, err := boundary.Load(cfg.BoundaryPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	r := &run{Builder: b, ctx: ctx, cfg: cfg, ds: ds, outline: outline}
	if outline != nil {
		r.geojson = outline.Raw
	}
	for _, f := range cfg.ChartFeeds() {
		r.chartYrs = append(r.chartYrs, f.Year)
	}
	slices.Sort(r.chartYrs)

	steps := []func() error{
		r.yearly,
		r.allYearsHeatMap,
		r.dotsMap,
		r.subRegionMaps,
		r.hourHistogram,
		r.monthlyHistogram,
		r.monthlyComparison,
		r.summary,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return r.written, err
		}
	}

	b.logger.Info("report written", "dir", cfg.OutputDir, "artifacts", len(r.written))
	return r.written, nil
}

func (r *run) view() render.View {
	return render.View{Lat: r.cfg.Map.CenterLat, Lon: r.cfg.Map.CenterLon, Zoom: r.cfg.Map.Zoom}
}

func (r *run) yearly() error {
	for _, year := range r.chartYrs {
		strikes := r.ds[year]
		err := r.write(fmt.Sprintf("HeatMap_%d.html", year), func(w io.Writer) error {
			return render.WriteHeatMap(w, render.HeatMap{
				Title:    fmt.Sprintf("Lightning strikes %d", year),
				View:     r.view(),
				Points:   analysis.Points(strikes),
				Boundary: r.geojson,
			})
		})
		if err != nil {
			return err
		}

		err = r.write(fmt.Sprintf("Density_%d.pdf", year), func(w io.Writer) error {
			return render.WriteDensityChart(w, render.DensityChart{
				Title: fmt.Sprintf("Spread of lightning strikes in %d", year),
				Grid:  analysis.Histogram2D(strikes, r.cfg.Region, r.cfg.DensityBins),
				Clamp: Clamp,
			})
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *run) allYearsHeatMap() error {
	return r.write("HeatMap_AllYears.html", func(w io.Writer) error {
		return render.WriteHeatMap(w, render.HeatMap{
			Title:    "Lightning strikes, all years",
			View:     r.view(),
			Points:   analysis.Points(r.ds.All()),
			Boundary: r.geojson,
		})
	})
}

// dotLayers builds one layer per year, newest first, coloured from the
// palette in that order.
func (r *run) dotLayers(years []int, region *domain.Region) []render.DotLayer {
	desc := slices.Clone(years)
	slices.Reverse(desc)

	layers := make([]render.DotLayer, 0, len(desc))
	for i, year := range desc {
		strikes := r.ds[year]
		if region != nil {
			strikes = domain.FilterByRegion(strikes, region.LatRange(), region.LonRange())
		}
		layers = append(layers, render.DotLayer{
			Name:   strconv.Itoa(year),
			Color:  r.cfg.Palette[i%len(r.cfg.Palette)],
			Points: analysis.Points(strikes),
		})
	}
	return layers
}

func (r *run) dotsMap() error {
	return r.write("MapWithDots.html", func(w io.Writer) error {
		return render.WriteDotsMap(w, render.DotsMap{
			Title:    "Lightning strikes by year",
			View:     r.view(),
			Layers:   r.dotLayers(r.chartYrs, nil),
			Boundary: r.geojson,
		})
	})
}

func (r *run) subRegionMaps() error {
	years := r.ds.Years()
	for _, sub := range r.cfg.SubRegions {
		region := sub.Region()
		name := fileSafe(sub.Name) + "Map.html"
		err := r.write(name, func(w io.Writer) error {
			return render.WriteDotsMap(w, render.DotsMap{
				Title:    fmt.Sprintf("Lightning strikes in %s", sub.Name),
				View:     render.View{Lat: sub.View.CenterLat, Lon: sub.View.CenterLon, Zoom: sub.View.Zoom},
				Layers:   r.dotLayers(years, &region),
				Outline:  &region,
				Boundary: r.geojson,
			})
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// chartStrikes pools the strikes of every non-reference year.
func (r *run) chartStrikes() []domain.Strike {
	var out []domain.Strike
	for _, year := range r.chartYrs {
		out = append(out, r.ds[year]...)
	}
	return out
}

func (r *run) hourHistogram() error {
	counts := analysis.HourCounts(r.chartStrikes())
	labels := make([]string, 24)
	for h := range labels {
		labels[h] = strconv.Itoa(h)
	}
	return r.write("HourHistogram.pdf", func(w io.Writer) error {
		return render.WriteBarChart(w, render.BarChart{
			Title:  "Lightning strikes by hour of day " + r.span(),
			XLabel: "Hour (UTC)",
			YLabel: "Strikes",
			Labels: labels,
			Series: []render.Series{{Name: "Hour", Color: hourColor, Values: counts[:]}},
		})
	})
}

func (r *run) monthlyHistogram() error {
	counts := analysis.MonthCounts(r.chartStrikes())
	return r.write("MonthlyHistogram.pdf", func(w io.Writer) error {
		return render.WriteBarChart(w, render.BarChart{
			Title:  "Monthly lightning activity " + r.span(),
			XLabel: "Month",
			YLabel: "Strikes",
			Labels: analysis.MonthLabels[:],
			Series: []render.Series{{Name: "Monthly", Color: monthColor, Values: counts[:]}},
		})
	})
}

func (r *run) monthlyComparison() error {
	series := make([]render.Series, 0, len(r.chartYrs))
	for i, year := range r.chartYrs {
		counts := analysis.MonthCounts(r.ds[year])
		series = append(series, render.Series{
			Name:   strconv.Itoa(year),
			Color:  r.cfg.Palette[i%len(r.cfg.Palette)],
			Values: counts[:],
		})
	}
	return r.write("MonthlyComparison.pdf", func(w io.Writer) error {
		return render.WriteBarChart(w, render.BarChart{
			Title:  "Monthly lightning activity per year",
			XLabel: "Month",
			YLabel: "Strikes",
			Labels: analysis.MonthLabels[:],
			Series: series,
		})
	})
}

func (r *run) summary() error {
	subs := make([]domain.Region, len(r.cfg.SubRegions))
	names := make([]string, len(r.cfg.SubRegions))
	for i, s := range r.cfg.SubRegions {
		subs[i] = s.Region()
		names[i] = s.Name
	}

	s := render.Summary{
		SubRegions: names,
		Counts:     analysis.CountByYear(r.ds, subs),
	}
	if r.outline != nil {
		s.InBoundary = make(map[int]int, len(r.ds))
		for year, strikes := range r.ds {
			n := 0
			for _, st := range strikes {
				if r.outline.Contains(st.Lat, st.Lon) {
					n++
				}
			}
			s.InBoundary[year] = n
		}
	}
	for _, year := range r.chartYrs {
		hours := analysis.HourCounts(r.ds[year])
		months := analysis.MonthCounts(r.ds[year])
		s.Hours = append(s.Hours, render.YearSeries{Year: year, Values: hours[:]})
		s.Months = append(s.Months, render.YearSeries{Year: year, Values: months[:]})
	}

	return r.write("Summary.xlsx", func(w io.Writer) error {
		return render.WriteSummary(w, s)
	})
}

// span labels the chart years, e.g. "2019-2022".
func (r *run) span() string {
	switch len(r.chartYrs) {
	case 0:
		return ""
	case 1:
		return strconv.Itoa(r.chartYrs[0])
	}
	return fmt.Sprintf("%d-%d", r.chartYrs[0], r.chartYrs[len(r.chartYrs)-1])
}

// write renders one artifact into the output directory.
func (r *run) write(name string, fn func(io.Writer) error) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(r.cfg.OutputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}

	r.written = append(r.written, path)
	if r.metrics != nil {
		r.metrics.ArtifactsWritten.WithLabelValues(strings.TrimPrefix(filepath.Ext(name), ".")).Inc()
	}
	r.logger.Debug("artifact written", "path", path)
	return nil
}

// fileSafe drops characters that do not belong in a file name.
func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, name)
}
