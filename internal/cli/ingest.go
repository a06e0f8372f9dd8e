package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/lightning-report-etl/internal/config"
	"github.com/couchcryptid/lightning-report-etl/internal/domain"
	"github.com/couchcryptid/lightning-report-etl/internal/observability"
	"github.com/couchcryptid/lightning-report-etl/internal/pipeline"
)

// Execute implements the go-flags Commander interface for IngestCommand.
func (c *IngestCommand) Execute(_ []string) error {
	cfg, logger, metrics, err := setup(c.globals)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	return c.run(ctx, cfg, logger, metrics, newFetcher(cfg, logger, metrics))
}

func (c *IngestCommand) run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, fetcher domain.Fetcher) error {
	source := c.Source
	if source == "" {
		if c.Year == 0 {
			return errors.New("ingest: --source or --year is required")
		}
		f, ok := feedFor(cfg, c.Year)
		if !ok {
			return fmt.Errorf("ingest: no feed configured for %d", c.Year)
		}
		source = f.Source
	}

	strikes, stats, err := pipeline.New(fetcher, logger, metrics).IngestWithStats(ctx, source, cfg.Region)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, s := range strikes {
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("write strike: %w", err)
		}
	}
	logger.Info("feed ingested", "source", source, "rows", stats.Rows, "kept", stats.Kept, "malformed", stats.MalformedTotal())
	return nil
}
