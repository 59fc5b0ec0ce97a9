package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BasketMint/internal/config"
	"BasketMint/internal/feed"
	"BasketMint/internal/oracle"
)

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	c, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	c.Oracle.Prices = map[string]decimal.Decimal{"btc": decimal.NewFromInt(65000)}
	require.NoError(t, c.Validate())
	return c
}

func TestNewSource(t *testing.T) {
	c := loadTestConfig(t)

	tests := []struct {
		kind, baseURL, want string
	}{
		{config.FeedStatic, "", "static"},
		{config.FeedHTTP, "http://feed", "http"},
		{config.FeedBars, "http://feed", "bars/rest"},
		{config.FeedBars, "", "bars/yahoo"},
		{config.FeedMock, "", "bars/mock"},
	}
	for _, tt := range tests {
		c.Feed.Kind, c.Feed.BaseURL = tt.kind, tt.baseURL
		assert.Equal(t, tt.want, newSource(c).Name(), tt.kind)
	}
}

func TestNewOracle(t *testing.T) {
	c := loadTestConfig(t)
	o := newOracle(c)
	require.IsType(t, &oracle.PriceTable{}, o)
	v, err := o.Value("BTC", decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.True(t, v.Equal(decimal.NewFromInt(130000)))

	c.Oracle.BaseURL = "http://quotes"
	assert.IsType(t, &oracle.HTTPOracle{}, newOracle(c))
}

func TestComputeMinimum(t *testing.T) {
	cfg = loadTestConfig(t)
	res, err := computeMinimum(context.Background(), &feed.Static{Reading: feed.Reading{Liquidity: decimal.NewFromInt(20_000_000)}})
	require.NoError(t, err)
	assert.Equal(t, "High", res.TierLabel)
	assert.True(t, res.Minimum.Equal(decimal.NewFromInt(100)))
}

func TestMinimumCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("oracle:\n  prices:\n    BTC: 1\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"minimum", "--config", path, "--liquidity", "50000", "--log-level", "error"})
	require.NoError(t, rootCmd.Execute())

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "Minimal", got["tier"])
	assert.Equal(t, "1000", got["minimum"])
	assert.Equal(t, "static", got["source"])
}
