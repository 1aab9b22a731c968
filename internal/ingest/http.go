package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPFetcher retrieves feed objects over HTTP, for feeds published on
// a plain web server instead of a bucket.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

// Compile-time interface check.
var _ ObjectFetcher = (*HTTPFetcher)(nil)

// Fetch downloads one object relative to the base URL.
func (f *HTTPFetcher) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	url := strings.TrimRight(f.BaseURL, "/") + "/" + key

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}
