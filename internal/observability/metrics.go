package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "lightning_etl"

// Metrics holds the Prometheus counters and histograms for one report run.
// Each Metrics owns its registry: a batch run pushes or dumps exactly what it
// recorded, and tests can create as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	RowsRead         *prometheus.CounterVec // labels: year
	RowsKept         *prometheus.CounterVec // labels: year
	RowsDropped      *prometheus.CounterVec // labels: year, reason={malformed,out_of_region}, column
	FeedFetches      *prometheus.CounterVec // labels: scheme, outcome={success,error}
	FeedFetchSeconds *prometheus.HistogramVec
	FeedCache        *prometheus.CounterVec // labels: result={hit,miss}
	ArtifactsWritten *prometheus.CounterVec // labels: kind={html,pdf,xlsx}
	RecordsPublished prometheus.Counter
}

// NewMetrics creates the run metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Data rows read from a feed, header and blank lines excluded.",
		}, []string{"year"}),
		RowsKept: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_kept_total",
			Help:      "Rows that normalized cleanly and fell inside the region.",
		}, []string{"year"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows dropped during ingestion by reason and failing column.",
		}, []string{"year", "reason", "column"}),
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetches_total",
			Help:      "Feed fetch attempts by scheme and outcome.",
		}, []string{"scheme", "outcome"}),
		FeedFetchSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_fetch_duration_seconds",
			Help:      "Time to open a feed, including HTTP round trip.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"scheme"}),
		FeedCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_cache_total",
			Help:      "Feed cache lookups by result.",
		}, []string{"result"}),
		ArtifactsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_written_total",
			Help:      "Report artifacts written by kind.",
		}, []string{"kind"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Normalized strikes published to Kafka.",
		}),
	}

	m.Registry.MustRegister(
		m.RowsRead,
		m.RowsKept,
		m.RowsDropped,
		m.FeedFetches,
		m.FeedFetchSeconds,
		m.FeedCache,
		m.ArtifactsWritten,
		m.RecordsPublished,
	)

	return m
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Push sends the registry to a Prometheus Pushgateway under the given job.
func (m *Metrics) Push(url, job string) error {
	if err := push.New(url, job).Gatherer(m.Registry).Push(); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
