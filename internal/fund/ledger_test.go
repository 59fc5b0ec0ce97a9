package fund

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"BasketMint/internal/model"
)

func TestRecomputeRatios_LargestRemainder(t *testing.T) {
	comps := make([]model.Component, 3)
	values := []decimal.Decimal{decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.NewFromInt(1)}
	recomputeRatios(comps, values, decimal.NewFromInt(3))

	// 3333.33 each: one component absorbs the missing basis point
	assert.Equal(t, int64(3334), comps[0].CurrentBP)
	assert.Equal(t, int64(3333), comps[1].CurrentBP)
	assert.Equal(t, int64(3333), comps[2].CurrentBP)
}

func TestRecomputeRatios_ZeroAggregate(t *testing.T) {
	comps := []model.Component{{CurrentBP: 5000}, {CurrentBP: 5000}}
	recomputeRatios(comps, []decimal.Decimal{decimal.Zero, decimal.Zero}, decimal.Zero)
	assert.Equal(t, int64(0), comps[0].CurrentBP)
	assert.Equal(t, int64(0), comps[1].CurrentBP)
}

func TestRecomputeRatios_EmptyComponentStaysZero(t *testing.T) {
	comps := make([]model.Component, 3)
	values := []decimal.Decimal{decimal.NewFromInt(2), decimal.Zero, decimal.NewFromInt(1)}
	recomputeRatios(comps, values, decimal.NewFromInt(3))
	assert.Equal(t, int64(6667), comps[0].CurrentBP)
	assert.Equal(t, int64(0), comps[1].CurrentBP)
	assert.Equal(t, int64(3333), comps[2].CurrentBP)
}

func TestBackfill_ProRataWithDustOnNewest(t *testing.T) {
	deposits := []model.Deposit{
		{Contributor: "a", Value: decimal.NewFromInt(1)},
		{Contributor: "b", Value: decimal.NewFromInt(5)},
		{Contributor: "a", Value: decimal.NewFromInt(1)},
		{Contributor: "a", Value: decimal.NewFromInt(1)},
	}
	backfill(deposits, "a", decimal.NewFromInt(10))

	assert.True(t, deposits[0].SharesReceived.Equal(decimal.NewFromInt(3)))
	assert.True(t, deposits[2].SharesReceived.Equal(decimal.NewFromInt(3)))
	assert.True(t, deposits[3].SharesReceived.Equal(decimal.NewFromInt(4)))
	assert.True(t, deposits[0].Fulfilled && deposits[2].Fulfilled && deposits[3].Fulfilled)
	assert.False(t, deposits[1].Fulfilled)
	assert.True(t, deposits[1].SharesReceived.IsZero())

	// fulfilled records are never touched again
	backfill(deposits, "a", decimal.NewFromInt(99))
	assert.True(t, deposits[3].SharesReceived.Equal(decimal.NewFromInt(4)))
}

func TestExceedsThreshold(t *testing.T) {
	th := decimal.RequireFromString("0.2")
	tests := []struct {
		stored, fresh string
		want          bool
	}{
		{"100", "100", false},
		{"100", "120", false},
		{"100", "120.01", true},
		{"100", "80", false},
		{"100", "79.99", true},
		{"0", "10", true},
		{"0", "0", false},
	}
	for _, tt := range tests {
		got := exceedsThreshold(decimal.RequireFromString(tt.stored), decimal.RequireFromString(tt.fresh), th)
		if got != tt.want {
			t.Errorf("stored=%s fresh=%s: expected %v, got %v", tt.stored, tt.fresh, tt.want, got)
		}
	}
}

func TestProportionalShares(t *testing.T) {
	scale := decimal.New(1, 18)
	got := proportionalShares(decimal.NewFromInt(600).Mul(scale), decimal.NewFromInt(300), decimal.NewFromInt(900))
	assert.True(t, got.Equal(decimal.NewFromInt(200).Mul(scale)), got.String())

	got = proportionalShares(decimal.NewFromInt(10), decimal.NewFromInt(1), decimal.NewFromInt(3))
	assert.True(t, got.Equal(decimal.NewFromInt(3)), got.String())
}
