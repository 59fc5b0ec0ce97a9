package fund

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"BasketMint/internal/model"
	"BasketMint/internal/oracle"
)

var bpDecimal = decimal.NewFromInt(model.BasisPoints)

// valueComponents prices every component's deposited amount and returns the
// per-component values with their sum. Empty components are worth zero and
// are not sent to the oracle.
func valueComponents(o oracle.Oracle, comps []model.Component) ([]decimal.Decimal, decimal.Decimal, error) {
	values := make([]decimal.Decimal, len(comps))
	aggregate := decimal.Zero
	for i, c := range comps {
		if c.Deposited.IsZero() {
			values[i] = decimal.Zero
			continue
		}
		v, err := valueOf(o, c.Asset, c.Deposited)
		if err != nil {
			return nil, decimal.Zero, err
		}
		values[i] = v
		aggregate = aggregate.Add(v)
	}
	return values, aggregate, nil
}

func valueOf(o oracle.Oracle, asset string, amount decimal.Decimal) (decimal.Decimal, error) {
	v, err := o.Value(asset, amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %w", ErrValuationUnavailable, asset, err)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s valued negative (%s)", ErrValuationUnavailable, asset, v)
	}
	return v, nil
}

// recomputeRatios sets every component's CurrentBP to its share of aggregate.
// Floors are topped up by largest remainder so the ratios sum to exactly
// 10000 whenever aggregate is positive.
func recomputeRatios(comps []model.Component, values []decimal.Decimal, aggregate decimal.Decimal) {
	if !aggregate.IsPositive() {
		for i := range comps {
			comps[i].CurrentBP = 0
		}
		return
	}

	remainders := make([]decimal.Decimal, len(comps))
	var sum int64
	for i := range comps {
		q, r := values[i].Mul(bpDecimal).QuoRem(aggregate, 0)
		comps[i].CurrentBP = q.IntPart()
		remainders[i] = r
		sum += comps[i].CurrentBP
	}

	order := make([]int, len(comps))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].GreaterThan(remainders[order[b]])
	})
	for k := 0; sum < model.BasisPoints && k < len(order); k++ {
		if !remainders[order[k]].IsPositive() {
			break
		}
		comps[order[k]].CurrentBP++
		sum++
	}
}

// validateComponents checks the creation-time allocation rules.
func validateComponents(specs []ComponentSpec, maxComponents int) error {
	if len(specs) == 0 {
		return fmt.Errorf("%w: no components", ErrInvalidAllocation)
	}
	if len(specs) > maxComponents {
		return fmt.Errorf("%w: %d components exceeds maximum %d", ErrInvalidAllocation, len(specs), maxComponents)
	}
	seen := make(map[string]struct{}, len(specs))
	var total int64
	for _, s := range specs {
		if s.Asset == "" {
			return fmt.Errorf("%w: component without asset", ErrInvalidAllocation)
		}
		if _, dup := seen[s.Asset]; dup {
			return fmt.Errorf("%w: duplicate asset %s", ErrInvalidAllocation, s.Asset)
		}
		seen[s.Asset] = struct{}{}
		if s.TargetBP <= 0 || s.TargetBP > model.BasisPoints {
			return fmt.Errorf("%w: asset %s has target %d bp", ErrInvalidAllocation, s.Asset, s.TargetBP)
		}
		total += s.TargetBP
	}
	if total != model.BasisPoints {
		return fmt.Errorf("%w: targets sum to %d bp, want %d", ErrInvalidAllocation, total, model.BasisPoints)
	}
	return nil
}
