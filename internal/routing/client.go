// Package routing resolves drivable paths between two points through an
// external directions API. A resolution failure is surfaced to the
// caller; there is no client-side retry and no partial result.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *Cache // nil disables caching
}

func NewClient(baseURL, apiKey string, timeout time.Duration, cache *Cache) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache: cache,
	}
}

// ResolvePath fetches the route geometry between the two points. The
// raw provider document is returned untouched; the presentation layer
// draws from it directly.
func (c *Client) ResolvePath(ctx context.Context, startLat, startLon, endLat, endLon float64) (json.RawMessage, error) {
	if c.cache != nil {
		if geom, ok := c.cache.Get(ctx, startLat, startLon, endLat, endLon); ok {
			return geom, nil
		}
	}

	params := url.Values{
		// The provider takes lon,lat order.
		"origin":      {fmt.Sprintf("%f,%f", startLon, startLat)},
		"destination": {fmt.Sprintf("%f,%f", endLon, endLat)},
		"priority":    {"RECOMMEND"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("directions API error: status %d: %s", resp.StatusCode, body)
	}

	geom, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	if !json.Valid(geom) {
		return nil, fmt.Errorf("directions API returned invalid JSON")
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, startLat, startLon, endLat, endLon, geom); err != nil {
			slog.Warn("route cache write failed", "error", err)
		}
	}

	return geom, nil
}
