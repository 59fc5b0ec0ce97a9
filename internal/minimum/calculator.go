package minimum

import (
	"fmt"

	"github.com/shopspring/decimal"

	"BasketMint/internal/model"
)

// Policy carries the tunable parameters of the minimum calculation.
type Policy struct {
	Tiers             *TierTable
	VolatilityDivisor decimal.Decimal // volatility can raise the base by up to 10000/divisor
	DemandDivisor     decimal.Decimal // demand can lower the base by up to 10000/divisor
	Floor             decimal.Decimal
	Ceiling           decimal.Decimal
}

// DefaultPolicy returns the standard coefficients and tier table.
func DefaultPolicy() Policy {
	table, err := NewTierTable(DefaultTiers)
	if err != nil {
		panic(err)
	}
	return Policy{
		Tiers:             table,
		VolatilityDivisor: decimal.NewFromInt(20000),
		DemandDivisor:     decimal.NewFromInt(40000),
		Floor:             decimal.NewFromInt(10),
		Ceiling:           decimal.NewFromInt(10000),
	}
}

// Validate checks the policy is usable.
func (p Policy) Validate() error {
	if p.Tiers == nil {
		return fmt.Errorf("%w: no tier table", ErrInvalidTiers)
	}
	if !p.VolatilityDivisor.IsPositive() || !p.DemandDivisor.IsPositive() {
		return fmt.Errorf("minimum: divisors must be positive")
	}
	if !p.Floor.IsPositive() {
		return fmt.Errorf("minimum: floor must be positive")
	}
	if p.Ceiling.LessThan(p.Floor) {
		return fmt.Errorf("minimum: ceiling %s below floor %s", p.Ceiling, p.Floor)
	}
	return nil
}

// ConditionReader is the read side of the market condition store.
type ConditionReader interface {
	Current() model.MarketCondition
}

// Result is the outcome of one minimum calculation.
type Result struct {
	Minimum       decimal.Decimal
	TierLabel     string
	Base          decimal.Decimal
	VolatilityAdj decimal.Decimal
	DemandAdj     decimal.Decimal
	Condition     model.MarketCondition
}

// Calculator derives the dynamic issuance minimum from market conditions.
type Calculator struct {
	market ConditionReader
	policy Policy
}

// NewCalculator creates a Calculator over the given store and policy.
func NewCalculator(market ConditionReader, policy Policy) (*Calculator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{market: market, policy: policy}, nil
}

// Calculate computes the current minimum. It reads one snapshot and has no
// side effects.
func (c *Calculator) Calculate() Result {
	cond := c.market.Current()
	tier := c.policy.Tiers.Select(cond.Liquidity)
	base := tier.BaseMinimum

	volAdj := base.Mul(decimal.NewFromInt(cond.VolatilityBP)).Div(c.policy.VolatilityDivisor)
	demandAdj := decimal.Min(base.Mul(decimal.NewFromInt(cond.DemandBP)).Div(c.policy.DemandDivisor), base)

	value := base.Add(volAdj).Sub(demandAdj)
	value = clamp(value, c.policy.Floor, c.policy.Ceiling)

	return Result{
		Minimum:       value,
		TierLabel:     tier.Label,
		Base:          base,
		VolatilityAdj: volAdj,
		DemandAdj:     demandAdj,
		Condition:     cond,
	}
}

// Policy returns the calculator's policy.
func (c *Calculator) Policy() Policy {
	return c.policy
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
