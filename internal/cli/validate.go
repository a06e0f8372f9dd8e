package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/couchcryptid/lightning-report-etl/internal/config"
	"github.com/couchcryptid/lightning-report-etl/internal/domain"
	"github.com/couchcryptid/lightning-report-etl/internal/observability"
	"github.com/couchcryptid/lightning-report-etl/internal/pipeline"
)

// Execute implements the go-flags Commander interface for ValidateCommand.
func (c *ValidateCommand) Execute(_ []string) error {
	cfg, logger, metrics, err := setup(c.globals)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	return c.run(ctx, cfg, logger, metrics, newFetcher(cfg, logger, metrics))
}

// problems collects findings that fail a strict validation.
type problems []string

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (c *ValidateCommand) run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, fetcher domain.Fetcher) error {
	feeds := cfg.Feeds
	if c.Year != 0 {
		f, ok := feedFor(cfg, c.Year)
		if !ok {
			return fmt.Errorf("validate: no feed configured for %d", c.Year)
		}
		feeds = []config.Feed{f}
	}

	p := pipeline.New(fetcher, logger, metrics)
	var found problems

	fmt.Printf("%-6s %8s %8s %8s %10s  %s\n", "Year", "Rows", "Kept", "Outside", "Malformed", "By column")
	for _, f := range feeds {
		_, stats, err := p.IngestWithStats(ctx, f.Source, cfg.Region)
		if err != nil {
			return fmt.Errorf("validate %d: %w", f.Year, err)
		}
		fmt.Printf("%-6d %8d %8d %8d %10d  %s\n",
			f.Year, stats.Rows, stats.Kept, stats.OutOfRegion, stats.MalformedTotal(), byColumn(stats))

		if n := stats.MalformedTotal(); n > 0 {
			found.addf("%d: %d malformed rows", f.Year, n)
		}
		if stats.Kept == 0 {
			found.addf("%d: no strikes inside the region", f.Year)
		}
	}

	if len(found) == 0 {
		fmt.Println("\nPASS")
		return nil
	}
	fmt.Println()
	for _, msg := range found {
		fmt.Printf("  - %s\n", msg)
	}
	if c.Strict {
		return fmt.Errorf("validation failed: %d problems", len(found))
	}
	fmt.Println("WARN")
	return nil
}

// byColumn renders the malformed counts as "Latitude=2 Time=1".
func byColumn(stats domain.FeedStats) string {
	if len(stats.Malformed) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(stats.Malformed))
	for col, n := range stats.Malformed {
		parts = append(parts, fmt.Sprintf("%s=%d", col, n))
	}
	slices.Sort(parts)
	return strings.Join(parts, " ")
}
