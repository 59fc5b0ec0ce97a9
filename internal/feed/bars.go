package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"BasketMint/internal/calculator"
	"BasketMint/internal/model"
)

// BarFetcher loads daily candles for a symbol.
type BarFetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	Name() string
}

// BarsSource derives a reading from daily bars: liquidity is the average
// dollar volume, volatility the annualised EWMA of log returns and demand
// the smoothed share of upward movement.
type BarsSource struct {
	Fetcher         BarFetcher
	Symbol          string
	Days            int
	LiquidityWindow int
	DemandPeriod    int
	Alpha           float64
}

// NewBarsSource creates a source with the default windows.
func NewBarsSource(fetcher BarFetcher, symbol string) *BarsSource {
	return &BarsSource{
		Fetcher:         fetcher,
		Symbol:          symbol,
		Days:            60,
		LiquidityWindow: 20,
		DemandPeriod:    14,
		Alpha:           0.10,
	}
}

func (s *BarsSource) Name() string { return "bars/" + s.Fetcher.Name() }

func (s *BarsSource) Fetch(ctx context.Context) (Reading, error) {
	bars, err := s.Fetcher.FetchDailyBars(ctx, s.Symbol, s.Days)
	if err != nil {
		return Reading{}, fmt.Errorf("fetch daily bars: %w", err)
	}
	adv, err := calculator.AverageDollarVolume(bars, s.LiquidityWindow)
	if err != nil {
		return Reading{}, fmt.Errorf("liquidity: %w", err)
	}
	vol, err := calculator.AnnualisedVolatilityBP(bars, s.Alpha)
	if err != nil {
		return Reading{}, fmt.Errorf("volatility: %w", err)
	}
	demand, err := calculator.DemandBP(bars, s.DemandPeriod)
	if err != nil {
		return Reading{}, fmt.Errorf("demand: %w", err)
	}
	return Reading{
		Liquidity:    decimal.NewFromFloat(adv).Round(2),
		VolatilityBP: vol,
		DemandBP:     demand,
	}, nil
}

// RESTBarFetcher reads daily bars from a market-data REST API.
type RESTBarFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTBarFetcher creates a new fetcher with optional proxy support.
func NewRESTBarFetcher(baseURL, apiKey, proxyURL string) *RESTBarFetcher {
	return &RESTBarFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *RESTBarFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bars endpoint.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (f *RESTBarFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&limit=%d", f.BaseURL, url.QueryEscape(symbol), days)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var raw []restBar
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.OHLCV, len(raw))
	for i, rb := range raw {
		bars[i] = model.OHLCV{
			Time:   time.Unix(rb.Timestamp, 0),
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		}
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// MockBarFetcher returns controllable fixed data for development and testing.
type MockBarFetcher struct {
	Price  float64
	Volume float64
	Bars   []model.OHLCV
}

func (m *MockBarFetcher) Name() string { return "mock" }

func (m *MockBarFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.OHLCV, error) {
	if m.Bars != nil {
		return m.Bars, nil
	}
	volume := m.Volume
	if volume == 0 {
		volume = 1000000
	}
	return generateMockBars(m.Price, volume, days), nil
}

func generateMockBars(basePrice, volume float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: volume,
		}
	}
	return bars
}
