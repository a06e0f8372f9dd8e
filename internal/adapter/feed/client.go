package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/lightning-report-etl/internal/domain"
	"github.com/couchcryptid/lightning-report-etl/internal/observability"
)

// maxErrorBody caps how much of a failed response is quoted in the error.
const maxErrorBody = 512

// Client implements domain.Fetcher for http and https feeds.
type Client struct {
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an HTTP feed client. timeout bounds the whole request,
// body download included.
func NewClient(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// Fetch issues a GET for location and returns the response body.
func (c *Client) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		c.observe("http", start, false)
		return nil, fmt.Errorf("%w: create request: %w", domain.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(req.URL.Scheme, start, false)
		return nil, fmt.Errorf("%w: fetch %s: %w", domain.ErrSourceUnavailable, location, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.observe(req.URL.Scheme, start, false)
		return nil, fmt.Errorf("%w: fetch %s: status %d: %s", domain.ErrSourceUnavailable, location, resp.StatusCode, body)
	}

	c.observe(req.URL.Scheme, start, true)
	c.logger.Debug("feed fetched", "source", location, "duration", time.Since(start))
	return resp.Body, nil
}

func (c *Client) observe(scheme string, start time.Time, ok bool) {
	if c.metrics == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	c.metrics.FeedFetches.WithLabelValues(scheme, outcome).Inc()
	c.metrics.FeedFetchSeconds.WithLabelValues(scheme).Observe(time.Since(start).Seconds())
}
