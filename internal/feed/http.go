package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPSource reads pre-computed market conditions from a REST endpoint
// returning {"liquidity": "...", "volatility_bp": n, "demand_bp": n}.
type HTTPSource struct {
	BaseURL string
	APIKey  string
	Symbol  string
	Client  *http.Client
}

// NewHTTPSource creates a new source with optional proxy support.
func NewHTTPSource(baseURL, apiKey, symbol, proxyURL string) *HTTPSource {
	return &HTTPSource{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Symbol:  symbol,
		Client:  newHTTPClient(proxyURL),
	}
}

func (s *HTTPSource) Name() string { return "http" }

func (s *HTTPSource) Fetch(ctx context.Context) (Reading, error) {
	endpoint := fmt.Sprintf("%s/api/v1/conditions?symbol=%s", s.BaseURL, url.QueryEscape(s.Symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Reading{}, err
	}
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return Reading{}, fmt.Errorf("fetch conditions: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Reading{}, fmt.Errorf("fetch conditions: status %d, body: %s", resp.StatusCode, string(body))
	}
	var r Reading
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Reading{}, fmt.Errorf("decode conditions: %w", err)
	}
	return r, nil
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
