package oracle

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// HTTPOracle prices assets through a REST quote endpoint.
type HTTPOracle struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPOracle creates an oracle with optional proxy support.
func NewHTTPOracle(baseURL, apiKey, proxyURL string) *HTTPOracle {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPOracle{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
}

// quote is the expected JSON shape; price travels as a string to keep precision.
type quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// Value implements Oracle.
func (o *HTTPOracle) Value(asset string, amount decimal.Decimal) (decimal.Decimal, error) {
	px, err := o.Price(asset)
	if err != nil {
		return decimal.Zero, err
	}
	return px.Mul(amount), nil
}

// Price fetches the unit price of an asset.
func (o *HTTPOracle) Price(asset string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/api/v1/quote?symbol=%s", o.BaseURL, url.QueryEscape(normalize(asset)))
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, err
	}
	if o.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.APIKey)
	}
	resp, err := o.Client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch quote: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNoPrice, asset)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return decimal.Zero, fmt.Errorf("fetch quote: status %d, body: %s", resp.StatusCode, string(body))
	}
	var q quote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return decimal.Zero, fmt.Errorf("decode quote: %w", err)
	}
	if q.Price.IsNegative() {
		return decimal.Zero, fmt.Errorf("fetch quote: negative price %s for %s", q.Price, asset)
	}
	return q.Price, nil
}
