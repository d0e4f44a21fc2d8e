package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// NetworkError covers a failed catalog fetch: transport errors, non-2xx
// responses and malformed bodies all collapse into it. The caller treats a
// failed fetch as terminal for the session; recovery is a full reload.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("catalog fetch from %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Source delivers the raw catalog. It abstracts the upstream API so the
// service can be tested without a network.
type Source interface {
	// Fetch retrieves the full product listing.
	// Returns *NetworkError on any failure.
	Fetch(ctx context.Context) ([]RawProduct, error)
}

// Client fetches the product listing from the upstream catalog API.
type Client struct {
	httpClient *http.Client
	url        string
	logger     *slog.Logger
}

// NewClient creates a catalog client for the given product-listing URL.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		logger:     logger.With("component", "catalog_client"),
	}
}

// Fetch performs a single GET against the product listing endpoint. There is
// no retry and no backoff: one call per session, pass or fail.
func (c *Client) Fetch(ctx context.Context) ([]RawProduct, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &NetworkError{URL: c.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: c.url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &NetworkError{URL: c.url, Err: fmt.Errorf("unexpected status code %d", resp.StatusCode)}
	}

	var raws []RawProduct
	if err := json.NewDecoder(resp.Body).Decode(&raws); err != nil {
		return nil, &NetworkError{URL: c.url, Err: fmt.Errorf("malformed catalog payload: %w", err)}
	}
	c.logger.DebugContext(ctx, "Catalog fetched", "count", len(raws))
	return raws, nil
}
