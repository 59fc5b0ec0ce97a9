package minimum

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BasketMint/internal/market"
	"BasketMint/internal/model"
)

func newCalc(t *testing.T, liquidity int64, vol, demand int64) (*Calculator, *market.Store) {
	t.Helper()
	store := market.NewStore(nil)
	_, err := store.Update(decimal.NewFromInt(liquidity), vol, demand)
	require.NoError(t, err)
	calc, err := NewCalculator(store, DefaultPolicy())
	require.NoError(t, err)
	return calc, store
}

func TestCalculate_UltraHighScenario(t *testing.T) {
	calc, _ := newCalc(t, 100_000_000, 1000, 7000)
	res := calc.Calculate()

	assert.Equal(t, "Ultra High", res.TierLabel)
	assert.True(t, res.Base.Equal(decimal.NewFromInt(50)))
	assert.True(t, res.VolatilityAdj.Equal(decimal.RequireFromString("2.5")), res.VolatilityAdj.String())
	assert.True(t, res.DemandAdj.Equal(decimal.RequireFromString("8.75")), res.DemandAdj.String())
	assert.True(t, res.Minimum.Equal(decimal.RequireFromString("43.75")), res.Minimum.String())
}

func TestCalculate_ClampedToFloor(t *testing.T) {
	store := market.NewStore(nil)
	_, err := store.Update(decimal.NewFromInt(100_000_000), 1000, 7000)
	require.NoError(t, err)
	p := DefaultPolicy()
	p.Floor = decimal.NewFromInt(45)
	calc, err := NewCalculator(store, p)
	require.NoError(t, err)

	assert.True(t, calc.Calculate().Minimum.Equal(decimal.NewFromInt(45)))
}

func TestCalculate_DemandNeverExceedsBase(t *testing.T) {
	// demand far above range: adjustment caps at base, so the minimum is the
	// volatility adjustment alone before clamping.
	calc, _ := newCalc(t, 0, 0, 1_000_000)
	res := calc.Calculate()
	assert.True(t, res.DemandAdj.Equal(res.Base))
	assert.True(t, res.Minimum.Equal(DefaultPolicy().Floor))
}

func TestSelect_AllBoundaries(t *testing.T) {
	tests := []struct {
		liquidity int64
		label     string
	}{
		{500_000_000, "Ultra High"},
		{100_000_000, "Ultra High"},
		{99_999_999, "High"},
		{10_000_000, "High"},
		{9_999_999, "Medium"},
		{1_000_000, "Medium"},
		{999_999, "Low"},
		{100_000, "Low"},
		{99_999, "Minimal"},
		{0, "Minimal"},
	}
	table := DefaultPolicy().Tiers
	for _, tt := range tests {
		tier := table.Select(decimal.NewFromInt(tt.liquidity))
		if tier.Label != tt.label {
			t.Errorf("liquidity %d: expected %q, got %q", tt.liquidity, tt.label, tier.Label)
		}
	}
}

func TestCalculate_Bounded(t *testing.T) {
	p := DefaultPolicy()
	liquidities := []int64{0, 1, 99_999, 100_000, 5_000_000, 100_000_000, 1 << 62}
	bps := []int64{0, 1, 5000, 10000, 20000, 1 << 40}
	for _, l := range liquidities {
		for _, v := range bps {
			for _, d := range bps {
				calc, _ := newCalc(t, l, v, d)
				m := calc.Calculate().Minimum
				if m.LessThan(p.Floor) || m.GreaterThan(p.Ceiling) {
					t.Fatalf("liquidity=%d vol=%d demand=%d: minimum %s outside [%s,%s]", l, v, d, m, p.Floor, p.Ceiling)
				}
			}
		}
	}
}

func TestSelect_MonotonicInLiquidity(t *testing.T) {
	table := DefaultPolicy().Tiers
	prev := table.Select(decimal.Zero).BaseMinimum
	for l := int64(0); l <= 200_000_000; l += 250_000 {
		base := table.Select(decimal.NewFromInt(l)).BaseMinimum
		require.Truef(t, base.LessThanOrEqual(prev), "liquidity %d raised base from %s to %s", l, prev, base)
		prev = base
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	calc, store := newCalc(t, 3_000_000, 4200, 1300)
	first := calc.Calculate()
	second := calc.Calculate()
	assert.Equal(t, first, second)

	_, err := store.Update(decimal.NewFromInt(3_000_000), 9000, 1300)
	require.NoError(t, err)
	third := calc.Calculate()
	assert.True(t, third.Minimum.GreaterThan(first.Minimum))
}

func TestNewTierTable_Validation(t *testing.T) {
	tests := []struct {
		name  string
		tiers []model.LiquidityTier
	}{
		{"empty", nil},
		{"ascending", []model.LiquidityTier{
			{Threshold: decimal.NewFromInt(10), BaseMinimum: decimal.NewFromInt(1), Label: "a"},
			{Threshold: decimal.NewFromInt(20), BaseMinimum: decimal.NewFromInt(1), Label: "b"},
		}},
		{"duplicate threshold", []model.LiquidityTier{
			{Threshold: decimal.NewFromInt(10), BaseMinimum: decimal.NewFromInt(1), Label: "a"},
			{Threshold: decimal.NewFromInt(10), BaseMinimum: decimal.NewFromInt(1), Label: "b"},
		}},
		{"no zero floor", []model.LiquidityTier{
			{Threshold: decimal.NewFromInt(10), BaseMinimum: decimal.NewFromInt(1), Label: "a"},
		}},
		{"negative base", []model.LiquidityTier{
			{Threshold: decimal.Zero, BaseMinimum: decimal.NewFromInt(-1), Label: "a"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTierTable(tt.tiers)
			require.ErrorIs(t, err, ErrInvalidTiers)
		})
	}
}

func TestPolicy_Validate(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())

	bad := p
	bad.Ceiling = decimal.NewFromInt(1)
	require.Error(t, bad.Validate())

	bad = p
	bad.DemandDivisor = decimal.Zero
	require.Error(t, bad.Validate())
}
