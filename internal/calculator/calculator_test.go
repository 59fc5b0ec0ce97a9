package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BasketMint/internal/model"
)

func barsFromCloses(closes []float64, volume float64) []model.OHLCV {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: volume}
	}
	return bars
}

func TestCalculateSMA(t *testing.T) {
	v, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 2)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, v, 1e-9)

	_, err = CalculateSMA([]float64{1}, 2)
	assert.Error(t, err)
	_, err = CalculateSMA([]float64{1}, 0)
	assert.Error(t, err)
}

func TestAverageDollarVolume(t *testing.T) {
	bars := barsFromCloses([]float64{10, 20, 30}, 100)
	v, err := AverageDollarVolume(bars, 2)
	require.NoError(t, err)
	assert.InDelta(t, 2500, v, 1e-9)

	// period longer than history uses everything
	v, err = AverageDollarVolume(bars, 30)
	require.NoError(t, err)
	assert.InDelta(t, 2000, v, 1e-9)

	_, err = AverageDollarVolume(nil, 5)
	assert.Error(t, err)
}

func TestDemandBP(t *testing.T) {
	rising := make([]float64, 20)
	falling := make([]float64, 20)
	flat := make([]float64, 20)
	for i := range rising {
		rising[i] = float64(100 + i)
		falling[i] = float64(200 - i)
		flat[i] = 100
	}

	tests := []struct {
		name   string
		closes []float64
		want   int64
	}{
		{"rising", rising, 10000},
		{"falling", falling, 0},
		{"flat", flat, NeutralDemandBP},
		{"too short", []float64{1, 2}, NeutralDemandBP},
		{"non-positive closes skipped", []float64{0, 100, -1, 110, 121}, NeutralDemandBP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DemandBP(barsFromCloses(tt.closes, 1), 14)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DemandBP(barsFromCloses(rising, 1), 0)
	assert.Error(t, err)
}

func TestDemandBP_BalancedAndBounded(t *testing.T) {
	// equal up and down log moves cancel out
	zigzag := []float64{100, 110, 100, 110, 100}
	d, err := DemandBP(barsFromCloses(zigzag, 1), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(NeutralDemandBP), d)

	// doubling then halving is symmetric in log space, regardless of level
	low, err := DemandBP(barsFromCloses([]float64{1, 2, 1}, 1), 2)
	require.NoError(t, err)
	high, err := DemandBP(barsFromCloses([]float64{1000, 2000, 1000}, 1), 2)
	require.NoError(t, err)
	assert.Equal(t, low, high)
	assert.Equal(t, int64(NeutralDemandBP), low)

	// mostly up with a dip lands strictly inside the range
	d, err = DemandBP(barsFromCloses([]float64{100, 110, 121, 115, 127, 140}, 1), 3)
	require.NoError(t, err)
	assert.Greater(t, d, int64(NeutralDemandBP))
	assert.Less(t, d, int64(model.BasisPoints))
}

func TestEWMAVariance(t *testing.T) {
	flat := barsFromCloses([]float64{100, 100, 100, 100}, 1)
	v, err := EWMAVariance(flat, 0.1)
	require.NoError(t, err)
	assert.Zero(t, v)

	// one move of ln(1.1): v = 0.1 * r^2
	v, err = EWMAVariance(barsFromCloses([]float64{100, 110}, 1), 0.1)
	require.NoError(t, err)
	r := math.Log(1.1)
	assert.InDelta(t, 0.1*r*r, v, 1e-12)

	_, err = EWMAVariance(flat, 0)
	assert.Error(t, err)
	_, err = EWMAVariance(flat[:1], 0.1)
	assert.Error(t, err)
}

func TestAnnualisedVolatilityBP(t *testing.T) {
	bp, err := AnnualisedVolatilityBP(barsFromCloses([]float64{100, 100, 100}, 1), 0.1)
	require.NoError(t, err)
	assert.Zero(t, bp)

	// wild swings saturate at 100%
	bp, err = AnnualisedVolatilityBP(barsFromCloses([]float64{100, 300, 50, 400, 20}, 1), 0.5)
	require.NoError(t, err)
	assert.Equal(t, int64(model.BasisPoints), bp)
}
