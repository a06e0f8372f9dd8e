package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/lightning-report-etl/internal/adapter/kafka"
	"github.com/couchcryptid/lightning-report-etl/internal/analysis"
	"github.com/couchcryptid/lightning-report-etl/internal/config"
	"github.com/couchcryptid/lightning-report-etl/internal/domain"
	"github.com/couchcryptid/lightning-report-etl/internal/observability"
	"github.com/couchcryptid/lightning-report-etl/internal/pipeline"
	"github.com/couchcryptid/lightning-report-etl/internal/report"
)

// Execute implements the go-flags Commander interface for ReportCommand.
func (c *ReportCommand) Execute(_ []string) error {
	cfg, logger, metrics, err := setup(c.globals)
	if err != nil {
		return err
	}
	if c.OutputDir != "" {
		cfg.OutputDir = c.OutputDir
	}
	if c.Boundary != "" {
		cfg.BoundaryPath = c.Boundary
	}

	logger = logger.With("version", c.version)

	ctx, stop := signalContext()
	defer stop()

	runErr := c.run(ctx, cfg, logger, metrics, newFetcher(cfg, logger, metrics))
	return errors.Join(runErr, flushMetrics(cfg, metrics, logger))
}

func (c *ReportCommand) run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, fetcher domain.Fetcher) error {
	p := pipeline.New(fetcher, logger, metrics)
	if cfg.PublishEnabled() {
		w := kafka.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger, metrics)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		p.WithPublisher(w)
		logger.Info("publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	ds, err := p.BuildDataset(ctx, cfg.Feeds, cfg.Region)
	if err != nil {
		return fmt.Errorf("build dataset: %w", err)
	}

	paths, err := report.NewBuilder(logger, metrics).Build(ctx, ds, cfg)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	printCounts(cfg, ds)
	fmt.Println()
	fmt.Printf("%d artifacts written to %s\n", len(paths), cfg.OutputDir)
	return nil
}

// printCounts prints the strikes per year in the region and each sub-region.
func printCounts(cfg *config.Config, ds domain.Dataset) {
	subs := make([]domain.Region, len(cfg.SubRegions))
	header := []string{fmt.Sprintf("%-6s", "Year"), fmt.Sprintf("%10s", "Region")}
	for i, s := range cfg.SubRegions {
		subs[i] = s.Region()
		header = append(header, fmt.Sprintf("%10s", s.Name))
	}
	fmt.Println(strings.Join(header, " "))

	for _, row := range analysis.CountByYear(ds, subs) {
		cols := []string{fmt.Sprintf("%-6d", row.Year), fmt.Sprintf("%10d", row.Region)}
		for _, n := range row.SubRegions {
			cols = append(cols, fmt.Sprintf("%10d", n))
		}
		fmt.Println(strings.Join(cols, " "))
	}
}
