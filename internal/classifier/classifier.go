// Package classifier is a thin client for the external text-analysis
// service that scores disaster messages. It never returns an error to
// its caller: any transport or decode failure collapses to a fixed
// fail-safe verdict so the ingestion pipeline keeps running when the
// analysis server is down.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

const (
	VerdictSafe   = "SAFE"
	VerdictDanger = "DANGER"

	// CategoryUnknown is the category reported when no classification
	// could be obtained.
	CategoryUnknown = "UNKNOWN"
)

// Result is the classifier's answer for one message body.
type Result struct {
	DisasterType string  `json:"disaster_type"`
	Safety       string  `json:"safety"`
	Confidence   float64 `json:"confidence"`
}

// Fallback is the fixed tuple substituted when the classifier is
// unreachable or returns garbage. Absence of classification means "no
// action", not an error.
func Fallback() Result {
	return Result{DisasterType: CategoryUnknown, Safety: VerdictSafe, Confidence: 0.0}
}

type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type request struct {
	Text string `json:"text"`
}

// Analyze sends the message body for classification. The returned
// Result is always usable; failures are logged and replaced by the
// fallback tuple.
func (c *Client) Analyze(ctx context.Context, text string) Result {
	body, err := json.Marshal(request{Text: text})
	if err != nil {
		slog.Error("classifier request encode failed", "error", err)
		return Fallback()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		slog.Error("classifier request build failed", "error", err)
		return Fallback()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("classifier unreachable", "error", err)
		return Fallback()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("classifier returned non-200", "status", resp.StatusCode)
		return Fallback()
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Error("classifier response decode failed", "error", err)
		return Fallback()
	}

	return result
}

// IsCritical reports whether the classifier flagged the text as
// dangerous.
func (c *Client) IsCritical(ctx context.Context, text string) bool {
	return c.Analyze(ctx, text).Safety == VerdictDanger
}
