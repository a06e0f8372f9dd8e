package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/lightning-report-etl/internal/adapter/feed"
	"github.com/couchcryptid/lightning-report-etl/internal/config"
	"github.com/couchcryptid/lightning-report-etl/internal/domain"
	"github.com/couchcryptid/lightning-report-etl/internal/observability"
)

// metricsJob is the Pushgateway job name.
const metricsJob = "lightning_report"

// setup loads the configuration and builds the logger and metrics shared by
// every command.
func setup(globals *GlobalFlags) (*config.Config, *slog.Logger, *observability.Metrics, error) {
	path := ""
	verbose := false
	if globals != nil {
		path = globals.Config
		verbose = globals.Verbose
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger := observability.NewLogger(level, cfg.LogFormat)
	return cfg, logger, observability.NewMetrics(), nil
}

// newFetcher wires the HTTP client behind the feed cache and routes bare
// paths and file:// URLs to the local reader.
func newFetcher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) domain.Fetcher {
	client := feed.NewClient(cfg.FetchTimeout, metrics, logger)
	return &feed.Router{
		Remote: feed.NewCachedFetcher(client, cfg.FeedCacheSize, metrics),
		Local:  feed.NewFileSource(metrics),
	}
}

// flushMetrics pushes and/or dumps the run metrics when configured.
func flushMetrics(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) error {
	var errs []error
	if cfg.PushgatewayURL != "" {
		if err := metrics.Push(cfg.PushgatewayURL, metricsJob); err != nil {
			errs = append(errs, err)
		} else {
			logger.Debug("metrics pushed", "url", cfg.PushgatewayURL)
		}
	}
	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			errs = append(errs, err)
		} else {
			logger.Debug("metrics written", "path", cfg.MetricsFile)
		}
	}
	return errors.Join(errs...)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// feedFor returns the configured feed for year.
func feedFor(cfg *config.Config, year int) (config.Feed, bool) {
	for _, f := range cfg.Feeds {
		if f.Year == year {
			return f, true
		}
	}
	return config.Feed{}, false
}
