// Package fetcher downloads pages for offline ingestion.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultTimeout  = 30 * time.Second
	DefaultMaxBytes = 5 << 20
	userAgent       = "actionsense/1.0 (+https://github.com/dtnitsch/actionsense)"
)

// Page is a fetched document. URL is the final URL after redirects.
type Page struct {
	URL         string
	ContentType string
	HTML        []byte
}

type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher returns a fetcher using client, or a client with
// DefaultTimeout when nil.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Fetcher{client: client, maxBytes: DefaultMaxBytes}
}

// GetHTML fetches rawURL. Bodies larger than the byte cap are truncated.
func (f *Fetcher) GetHTML(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch HTML, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Page{
		URL:         resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		HTML:        body,
	}, nil
}
