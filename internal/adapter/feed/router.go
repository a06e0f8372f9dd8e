package feed

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/lightning-report-etl/internal/domain"
)

// Router picks a fetcher by the location's scheme: http and https go to
// Remote, file:// URLs and bare paths go to Local.
type Router struct {
	Remote domain.Fetcher
	Local  domain.Fetcher
}

// Fetch implements domain.Fetcher.
func (r *Router) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	switch scheme(location) {
	case "http", "https":
		return r.Remote.Fetch(ctx, location)
	case "", "file":
		return r.Local.Fetch(ctx, location)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme in %q", domain.ErrSourceUnavailable, location)
	}
}

// scheme returns the lower-cased URL scheme of location, or "" for a path.
// Windows drive letters ("C:/data/feed.txt") are treated as paths.
func scheme(location string) string {
	i := strings.Index(location, "://")
	if i <= 1 {
		return ""
	}
	return strings.ToLower(location[:i])
}
