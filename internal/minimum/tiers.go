package minimum

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"BasketMint/internal/model"
)

// ErrInvalidTiers is returned for a tier table that breaks ordering rules.
var ErrInvalidTiers = errors.New("minimum: invalid tier table")

// DefaultTiers is the five-level liquidity mapping.
var DefaultTiers = []model.LiquidityTier{
	{Threshold: decimal.NewFromInt(100_000_000), BaseMinimum: decimal.NewFromInt(50), Label: "Ultra High"},
	{Threshold: decimal.NewFromInt(10_000_000), BaseMinimum: decimal.NewFromInt(100), Label: "High"},
	{Threshold: decimal.NewFromInt(1_000_000), BaseMinimum: decimal.NewFromInt(250), Label: "Medium"},
	{Threshold: decimal.NewFromInt(100_000), BaseMinimum: decimal.NewFromInt(500), Label: "Low"},
	{Threshold: decimal.Zero, BaseMinimum: decimal.NewFromInt(1000), Label: "Minimal"},
}

// TierTable is an ordered, validated list of liquidity tiers.
type TierTable struct {
	tiers []model.LiquidityTier
}

// NewTierTable validates that thresholds strictly descend, base minimums are
// non-negative, and the last threshold is zero so every liquidity matches.
func NewTierTable(tiers []model.LiquidityTier) (*TierTable, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidTiers)
	}
	for i, t := range tiers {
		if t.Label == "" {
			return nil, fmt.Errorf("%w: tier %d has no label", ErrInvalidTiers, i)
		}
		if t.BaseMinimum.IsNegative() {
			return nil, fmt.Errorf("%w: tier %q has negative base minimum", ErrInvalidTiers, t.Label)
		}
		if i > 0 && !t.Threshold.LessThan(tiers[i-1].Threshold) {
			return nil, fmt.Errorf("%w: tier %q threshold %s not below %s",
				ErrInvalidTiers, t.Label, t.Threshold, tiers[i-1].Threshold)
		}
	}
	if !tiers[len(tiers)-1].Threshold.IsZero() {
		return nil, fmt.Errorf("%w: last threshold must be zero", ErrInvalidTiers)
	}
	return &TierTable{tiers: append([]model.LiquidityTier(nil), tiers...)}, nil
}

// Select returns the first tier whose threshold does not exceed liquidity.
func (t *TierTable) Select(liquidity decimal.Decimal) model.LiquidityTier {
	for _, tier := range t.tiers {
		if tier.Threshold.LessThanOrEqual(liquidity) {
			return tier
		}
	}
	// Only reachable for negative liquidity, which the store rejects.
	return t.tiers[len(t.tiers)-1]
}

// Tiers returns a copy of the table rows.
func (t *TierTable) Tiers() []model.LiquidityTier {
	return append([]model.LiquidityTier(nil), t.tiers...)
}
