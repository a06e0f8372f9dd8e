package domain

import (
	"context"
	"io"
)

// Fetcher opens a feed by location. Implementations wrap every failure in
// ErrSourceUnavailable; the caller closes the returned reader.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (io.ReadCloser, error)
}
