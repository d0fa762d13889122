package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// noData mirrors the placeholder the upstream portal shows for a
// missing field.
const noData = "정보 없음"

// Message is one alert snapshot as served by the external source.
type Message struct {
	DisasterType string `json:"disaster_type"`
	Area         string `json:"area"`
	SentDate     string `json:"sent_date"`
	Content      string `json:"content"`
}

// Source fetches the current alert snapshot.
type Source interface {
	Fetch(ctx context.Context) (Message, error)
}

// HTTPSource reads the snapshot from a JSON endpoint.
type HTTPSource struct {
	url        string
	httpClient *http.Client
}

func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		url: url,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) (Message, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return Message{}, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Message{}, fmt.Errorf("error doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Message{}, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var msg Message
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return Message{}, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	return msg.normalized(), nil
}

// normalized substitutes the portal's placeholder for absent fields so
// downstream comparisons see what the portal renders.
func (m Message) normalized() Message {
	if m.DisasterType == "" {
		m.DisasterType = noData
	}
	if m.Area == "" {
		m.Area = noData
	}
	if m.SentDate == "" {
		m.SentDate = noData
	}
	if m.Content == "" {
		m.Content = noData
	}
	return m
}
