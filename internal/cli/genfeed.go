package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/lightning-report-etl/internal/config"
	"github.com/couchcryptid/lightning-report-etl/internal/domain"
	"github.com/couchcryptid/lightning-report-etl/internal/feedgen"
)

// Execute implements the go-flags Commander interface for GenfeedCommand.
func (c *GenfeedCommand) Execute(_ []string) error {
	cfg, logger, _, err := setup(c.globals)
	if err != nil {
		return err
	}
	return c.run(cfg, logger)
}

func (c *GenfeedCommand) run(cfg *config.Config, logger *slog.Logger) error {
	year := c.Year
	if year == 0 {
		year = domain.Now().Year()
	}
	opts := feedgen.Options{
		Year:           year,
		Rows:           c.Rows,
		Seed:           c.Seed,
		Region:         cfg.Region,
		Margin:         c.Margin,
		MalformedEvery: c.Malformed,
	}

	var (
		stats feedgen.Stats
		err   error
	)
	if c.Out == "" || c.Out == "-" {
		stats, err = feedgen.Generate(os.Stdout, opts)
	} else {
		stats, err = writeFeedFile(c.Out, opts)
	}
	if err != nil {
		return fmt.Errorf("genfeed: %w", err)
	}

	logger.Info("feed generated", "out", c.Out, "year", year, "rows", stats.Rows, "in_region", stats.InRegion, "malformed", stats.Malformed)
	return nil
}

// writeFeedFile generates into path. A failed close is returned as an error.
func writeFeedFile(path string, opts feedgen.Options) (feedgen.Stats, error) {
	f, err := os.Create(path)
	if err != nil {
		return feedgen.Stats{}, err
	}
	stats, err := feedgen.Generate(f, opts)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", path, cerr)
	}
	return stats, err
}
