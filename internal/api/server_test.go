package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BasketMint/internal/fund"
	"BasketMint/internal/market"
	"BasketMint/internal/metrics"
	"BasketMint/internal/minimum"
	"BasketMint/internal/oracle"
)

type testServer struct {
	*httptest.Server
	prices *oracle.PriceTable
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := market.NewStore(nil)
	_, err := store.Update(decimal.NewFromInt(150_000_000), 0, 0)
	require.NoError(t, err)
	calc, err := minimum.NewCalculator(store, minimum.DefaultPolicy())
	require.NoError(t, err)
	prices := oracle.NewPriceTable(map[string]decimal.Decimal{
		"BTC": decimal.NewFromInt(1),
		"ETH": decimal.NewFromInt(1),
	})
	reg := prometheus.NewRegistry()
	eng, err := fund.NewEngine(fund.DefaultConfig(), prices, calc, fund.WithNotifier(metrics.NewCollector(reg)))
	require.NoError(t, err)

	srv := httptest.NewServer(New(eng, store, reg, nil).Handler())
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, prices: prices}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, bytes.NewBufferString(body))
	require.NoError(t, err)
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	if resp.StatusCode != http.StatusNoContent && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func (s *testServer) createFund(t *testing.T) string {
	t.Helper()
	resp, out := s.do(t, http.MethodPost, "/funds", `{"name":"Majors","symbol":"MAJ","creator":"ops",
		"components":[{"asset":"BTC","target_bp":6000},{"asset":"ETH","target_bp":4000}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := out["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestAPI_FundLifecycle(t *testing.T) {
	s := newTestServer(t)
	id := s.createFund(t)

	resp, out := s.do(t, http.MethodPost, "/funds/"+id+"/deposits", `{"asset":"BTC","amount":"600","contributor":"alice"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "600", out["value"])

	resp, out = s.do(t, http.MethodPost, "/funds/"+id+"/issue", `{"contributor":"alice"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["first"])
	assert.Equal(t, "600000000000000000000", out["shares"])

	resp, out = s.do(t, http.MethodGet, "/funds/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["issued"])

	resp, out = s.do(t, http.MethodGet, "/funds/"+id+"/nav", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "600", out["nav"])
	assert.Equal(t, "1", out["price_per_share"])

	resp, _ = s.do(t, http.MethodPost, "/funds/"+id+"/deactivate", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, out = s.do(t, http.MethodPost, "/funds/"+id+"/deposits", `{"asset":"BTC","amount":"1","contributor":"bob"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, out["error"], "inactive")
}

func TestAPI_ErrorStatuses(t *testing.T) {
	s := newTestServer(t)
	id := s.createFund(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown fund", http.MethodGet, "/funds/fund-missing", "", http.StatusNotFound},
		{"bad allocation", http.MethodPost, "/funds", `{"name":"X","symbol":"X","creator":"c","components":[{"asset":"BTC","target_bp":5000}]}`, http.StatusBadRequest},
		{"unknown asset", http.MethodPost, "/funds/" + id + "/deposits", `{"asset":"DOGE","amount":"1","contributor":"a"}`, http.StatusBadRequest},
		{"zero amount", http.MethodPost, "/funds/" + id + "/deposits", `{"asset":"BTC","amount":"0","contributor":"a"}`, http.StatusBadRequest},
		{"missing contributor", http.MethodPost, "/funds/" + id + "/deposits", `{"asset":"BTC","amount":"1"}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/funds/" + id + "/issue", `{"who":"a"}`, http.StatusBadRequest},
		{"nothing pending", http.MethodPost, "/funds/" + id + "/issue", `{"contributor":"nobody"}`, http.StatusUnprocessableEntity},
		{"negative market", http.MethodPost, "/market", `{"liquidity":"-1","volatility_bp":0,"demand_bp":0}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestAPI_BelowMinimumAndValuation(t *testing.T) {
	s := newTestServer(t)
	id := s.createFund(t)

	resp, _ := s.do(t, http.MethodPost, "/funds/"+id+"/deposits", `{"asset":"BTC","amount":"10","contributor":"carol"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, out := s.do(t, http.MethodPost, "/funds/"+id+"/issue", `{"contributor":"carol"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, out["error"], "minimum")

	s.prices.Remove("ETH")
	resp, _ = s.do(t, http.MethodPost, "/funds/"+id+"/deposits", `{"asset":"ETH","amount":"10","contributor":"carol"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAPI_MarketAndMinimum(t *testing.T) {
	s := newTestServer(t)

	resp, out := s.do(t, http.MethodGet, "/minimum", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "50", out["minimum"])
	assert.Equal(t, "Ultra High", out["tier"])

	resp, out = s.do(t, http.MethodPost, "/market", `{"liquidity":"50000","volatility_bp":0,"demand_bp":0}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1000", out["minimum"])
	assert.Equal(t, "Minimal", out["tier"])
}

func TestAPI_Metrics(t *testing.T) {
	s := newTestServer(t)
	s.createFund(t)

	resp, err := s.Client().Get(s.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `basketmint_events_total{kind="fund_created"} 1`)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
	assert.Equal(t, http.StatusNotFound, statusFor(fund.ErrFundNotFound))
}
