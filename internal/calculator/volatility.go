package calculator

import (
	"errors"
	"math"

	"BasketMint/internal/model"
)

// TradingDaysPerYear annualises daily variance.
const TradingDaysPerYear = 252

// EWMAVariance returns the exponentially weighted variance of log close-to-close
// returns: v = (1-alpha)*v + alpha*r^2, seeded at zero. Non-positive closes are skipped.
func EWMAVariance(bars []model.OHLCV, alpha float64) (float64, error) {
	if alpha <= 0 || alpha > 1 {
		return 0, errors.New("alpha must be in (0, 1]")
	}
	if len(bars) < 2 {
		return 0, errors.New("not enough data for volatility calculation")
	}
	closes := extractCloses(bars)
	var variance, last float64
	for _, c := range closes {
		if c <= 0 {
			continue
		}
		if last > 0 {
			r := math.Log(c / last)
			variance = (1-alpha)*variance + alpha*r*r
		}
		last = c
	}
	return variance, nil
}

// AnnualisedVolatilityBP converts daily EWMA variance into annualised
// volatility expressed in basis points, capped at 10000.
func AnnualisedVolatilityBP(bars []model.OHLCV, alpha float64) (int64, error) {
	v, err := EWMAVariance(bars, alpha)
	if err != nil {
		return 0, err
	}
	bp := math.Round(math.Sqrt(v*TradingDaysPerYear) * model.BasisPoints)
	if bp > model.BasisPoints {
		bp = model.BasisPoints
	}
	return int64(bp), nil
}
