package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BasisPoints is the denominator for every ratio, volatility and demand figure.
const BasisPoints = 10000

// MarketCondition is the latest snapshot of the trading venue.
type MarketCondition struct {
	Liquidity    decimal.Decimal `json:"liquidity"`
	VolatilityBP int64           `json:"volatility_bp"`
	DemandBP     int64           `json:"demand_bp"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// LiquidityTier maps a liquidity threshold to a base minimum contribution.
type LiquidityTier struct {
	Threshold   decimal.Decimal `json:"threshold" yaml:"threshold"`
	BaseMinimum decimal.Decimal `json:"base_minimum" yaml:"base_minimum"`
	Label       string          `json:"label" yaml:"label"`
}

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
