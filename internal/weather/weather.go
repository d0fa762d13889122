// Package weather builds a point weather summary from two independent
// external lookups — a reverse-address query and a current-conditions
// query — run in parallel and joined before producing the result. Each
// call carries its own timeout.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// Report is the combined weather answer for a coordinate.
type Report struct {
	Address     string `json:"address"`
	Temperature string `json:"temp"`
	Condition   string `json:"weatherStatus"`
}

type Client struct {
	observationURL string
	addressURL     string
	serviceKey     string
	apiKey         string
	timeout        time.Duration
	httpClient     *http.Client
}

func NewClient(observationURL, addressURL, serviceKey, apiKey string, timeout time.Duration) *Client {
	return &Client{
		observationURL: observationURL,
		addressURL:     addressURL,
		serviceKey:     serviceKey,
		apiKey:         apiKey,
		timeout:        timeout,
		httpClient:     &http.Client{},
	}
}

// Lookup resolves the address and current conditions for the point.
// The two upstream calls run concurrently; if either fails the whole
// lookup fails.
func (c *Client) Lookup(ctx context.Context, lat, lon float64) (Report, error) {
	var (
		address    string
		conditions map[string]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(gctx, c.timeout)
		defer cancel()
		var err error
		address, err = c.fetchAddress(callCtx, lat, lon)
		return err
	})
	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(gctx, c.timeout)
		defer cancel()
		var err error
		conditions, err = c.fetchConditions(callCtx, lat, lon)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	temp, ok := conditions["T1H"]
	if !ok {
		temp = "N/A"
	}
	return Report{
		Address:     address,
		Temperature: temp,
		Condition:   combineStatus(conditions["PTY"], conditions["SKY"]),
	}, nil
}

type addressResponse struct {
	Documents []struct {
		Address struct {
			Region2 string `json:"region_2depth_name"`
			Region3 string `json:"region_3depth_name"`
		} `json:"address"`
	} `json:"documents"`
}

func (c *Client) fetchAddress(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{
		"x": {strconv.FormatFloat(lon, 'f', -1, 64)},
		"y": {strconv.FormatFloat(lat, 'f', -1, 64)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.addressURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("error creating address request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error doing address request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("address API status %d", resp.StatusCode)
	}

	var data addressResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("error decoding address response: %w", err)
	}
	if len(data.Documents) == 0 {
		return "주소 정보 없음", nil
	}
	addr := data.Documents[0].Address
	return addr.Region2 + " " + addr.Region3, nil
}

type observationResponse struct {
	Response struct {
		Body struct {
			Items struct {
				Item []struct {
					Category string `json:"category"`
					Value    string `json:"obsrValue"`
				} `json:"item"`
			} `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

func (c *Client) fetchConditions(ctx context.Context, lat, lon float64) (map[string]string, error) {
	// The observation grid is keyed by base date/time 30 minutes back,
	// matching the provider's publication cadence.
	base := time.Now().Add(-30 * time.Minute)
	nx, ny := toGrid(lat, lon)

	params := url.Values{
		"serviceKey": {c.serviceKey},
		"pageNo":     {"1"},
		"numOfRows":  {"10"},
		"dataType":   {"JSON"},
		"base_date":  {base.Format("20060102")},
		"base_time":  {base.Format("1500")},
		"nx":         {strconv.Itoa(nx)},
		"ny":         {strconv.Itoa(ny)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.observationURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating observation request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error doing observation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("observation API status %d", resp.StatusCode)
	}

	var data observationResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding observation response: %w", err)
	}

	conditions := make(map[string]string)
	for _, item := range data.Response.Body.Items.Item {
		switch item.Category {
		case "T1H", "SKY", "PTY":
			conditions[item.Category] = item.Value
		}
	}
	return conditions, nil
}

// combineStatus folds precipitation (PTY) and sky (SKY) codes into one
// display string, precipitation winning when present.
func combineStatus(pty, sky string) string {
	switch pty {
	case "1":
		return "비"
	case "2":
		return "비/눈"
	case "3":
		return "눈"
	case "5":
		return "빗방울"
	case "6":
		return "빗방울/눈날림"
	case "7":
		return "눈날림"
	}
	switch sky {
	case "3":
		return "구름많음"
	case "4":
		return "흐림"
	}
	return "맑음"
}
