package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/lightning-report-etl/internal/config"
	"github.com/couchcryptid/lightning-report-etl/internal/domain"
	"github.com/couchcryptid/lightning-report-etl/internal/observability"
)

// Publisher receives each year's strikes once the year has been ingested.
type Publisher interface {
	Publish(ctx context.Context, year int, strikes []domain.Strike) error
}

// Pipeline fetches yearly feeds, normalizes them, and assembles the dataset.
type Pipeline struct {
	fetcher   domain.Fetcher
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Pipeline reading feeds through fetcher.
func New(fetcher domain.Fetcher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
		logger:  logger,
		metrics: metrics,
	}
}

// WithPublisher sets the sink that receives each year after ingestion.
func (p *Pipeline) WithPublisher(pub Publisher) *Pipeline {
	p.publisher = pub
	return p
}

// Ingest returns the strikes of source that normalize cleanly and fall inside
// region, in feed order. Malformed rows are dropped. A fetch or read failure
// is returned wrapped in domain.ErrSourceUnavailable.
func (p *Pipeline) Ingest(ctx context.Context, source string, region domain.Region) ([]domain.Strike, error) {
	strikes, _, err := p.IngestWithStats(ctx, source, region)
	return strikes, err
}

// IngestWithStats is Ingest plus the per-row accounting of the feed.
func (p *Pipeline) IngestWithStats(ctx context.Context, source string, region domain.Region) ([]domain.Strike, domain.FeedStats, error) {
	rc, err := p.fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, domain.FeedStats{}, err
	}
	defer rc.Close()

	logger := p.logger.With("source", source)
	strikes, stats, err := domain.ParseFeed(rc, region, func(e *domain.RowError) {
		logger.Debug("row dropped", "line", e.Line, "column", e.Column, "value", e.Value, "error", e.Err)
	})
	if err != nil {
		return nil, stats, fmt.Errorf("ingest %s: %w", source, err)
	}
	return strikes, stats, nil
}

// BuildDataset ingests every feed in order, one at a time. The first
// failure aborts the run and no partial dataset is returned.
func (p *Pipeline) BuildDataset(ctx context.Context, feeds []config.Feed, region domain.Region) (domain.Dataset, error) {
	if err := region.Validate(); err != nil {
		return nil, fmt.Errorf("build dataset: %w", err)
	}

	dataset := make(domain.Dataset, len(feeds))
	for _, f := range feeds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, dup := dataset[f.Year]; dup {
			return nil, fmt.Errorf("build dataset: year %d listed twice", f.Year)
		}

		start := time.Now()
		strikes, stats, err := p.IngestWithStats(ctx, f.Source, region)
		if err != nil {
			p.logger.Error("ingest failed", "year", f.Year, "source", f.Source, "error", err)
			return nil, fmt.Errorf("year %d: %w", f.Year, err)
		}
		p.record(f.Year, stats)
		p.logger.Info("year ingested",
			"year", f.Year,
			"rows", stats.Rows,
			"kept", stats.Kept,
			"out_of_region", stats.OutOfRegion,
			"malformed", stats.MalformedTotal(),
			"duration", time.Since(start),
		)

		if p.publisher != nil {
			if err := p.publisher.Publish(ctx, f.Year, strikes); err != nil {
				return nil, fmt.Errorf("publish year %d: %w", f.Year, err)
			}
		}
		dataset[f.Year] = strikes
	}
	return dataset, nil
}

func (p *Pipeline) record(year int, stats domain.FeedStats) {
	if p.metrics == nil {
		return
	}
	y := strconv.Itoa(year)
	p.metrics.RowsRead.WithLabelValues(y).Add(float64(stats.Rows))
	p.metrics.RowsKept.WithLabelValues(y).Add(float64(stats.Kept))
	if stats.OutOfRegion > 0 {
		p.metrics.RowsDropped.WithLabelValues(y, "out_of_region", "").Add(float64(stats.OutOfRegion))
	}
	for col, n := range stats.Malformed {
		p.metrics.RowsDropped.WithLabelValues(y, "malformed", string(col)).Add(float64(n))
	}
}
