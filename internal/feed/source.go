package feed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"BasketMint/internal/model"
)

// Reading is one observation of the market inputs to the minimum calculator.
type Reading struct {
	Liquidity    decimal.Decimal `json:"liquidity"`
	VolatilityBP int64           `json:"volatility_bp"`
	DemandBP     int64           `json:"demand_bp"`
}

// Source produces market readings.
type Source interface {
	Fetch(ctx context.Context) (Reading, error)
	Name() string
}

// Static always returns the same reading. Used when no live feed is configured.
type Static struct {
	Reading Reading
}

func (s *Static) Name() string { return "static" }

func (s *Static) Fetch(_ context.Context) (Reading, error) {
	return s.Reading, nil
}

// ConditionWriter is the write side of the market condition store.
type ConditionWriter interface {
	Update(liquidity decimal.Decimal, volatilityBP, demandBP int64) (model.MarketCondition, error)
}

// Refresher pulls one reading from a source and writes it to the store.
type Refresher struct {
	Source Source
	Store  ConditionWriter
	Log    *zap.Logger
}

// NewRefresher creates a refresher. A nil logger is replaced by a no-op one.
func NewRefresher(src Source, store ConditionWriter, log *zap.Logger) *Refresher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Refresher{Source: src, Store: store, Log: log}
}

// Refresh fetches a reading and stores it. On failure the store keeps its
// previous snapshot.
func (r *Refresher) Refresh(ctx context.Context) (model.MarketCondition, error) {
	reading, err := r.Source.Fetch(ctx)
	if err != nil {
		return model.MarketCondition{}, fmt.Errorf("fetch from %s: %w", r.Source.Name(), err)
	}
	cond, err := r.Store.Update(reading.Liquidity, reading.VolatilityBP, reading.DemandBP)
	if err != nil {
		return model.MarketCondition{}, fmt.Errorf("store reading from %s: %w", r.Source.Name(), err)
	}
	r.Log.Info("market condition refreshed",
		zap.String("source", r.Source.Name()),
		zap.String("liquidity", cond.Liquidity.String()),
		zap.Int64("volatility_bp", cond.VolatilityBP),
		zap.Int64("demand_bp", cond.DemandBP))
	return cond, nil
}
