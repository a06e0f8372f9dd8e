package feed

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/couchcryptid/lightning-report-etl/internal/domain"
	"github.com/couchcryptid/lightning-report-etl/internal/observability"
)

// FileSource implements domain.Fetcher for local paths and file:// URLs.
type FileSource struct {
	metrics *observability.Metrics
}

// NewFileSource creates a local feed reader.
func NewFileSource(metrics *observability.Metrics) *FileSource {
	return &FileSource{metrics: metrics}
}

// Fetch opens the file at location.
func (f *FileSource) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}

	path, err := filePath(location)
	if err != nil {
		f.observe(false)
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}

	file, err := os.Open(path)
	if err != nil {
		f.observe(false)
		return nil, fmt.Errorf("%w: open feed: %w", domain.ErrSourceUnavailable, err)
	}
	f.observe(true)
	return file, nil
}

func (f *FileSource) observe(ok bool) {
	if f.metrics == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	f.metrics.FeedFetches.WithLabelValues("file", outcome).Inc()
}

// filePath turns "file:///a/b.txt" into "/a/b.txt"; plain paths pass through.
func filePath(location string) (string, error) {
	if !strings.HasPrefix(location, "file://") {
		return location, nil
	}
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parse file url: %w", err)
	}
	if u.Path == "" {
		return "", fmt.Errorf("file url %q has no path", location)
	}
	return u.Path, nil
}
