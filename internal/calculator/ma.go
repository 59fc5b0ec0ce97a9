package calculator

import (
	"errors"

	"BasketMint/internal/model"
)

// CalculateSMA computes the simple moving average of the given values over the specified period.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// AverageDollarVolume is the SMA of close*volume over the most recent period bars,
// shortened to the available history.
func AverageDollarVolume(bars []model.OHLCV, period int) (float64, error) {
	if len(bars) == 0 {
		return 0, errors.New("no bars provided")
	}
	if period > len(bars) {
		period = len(bars)
	}
	dv := make([]float64, len(bars))
	for i, b := range bars {
		dv[i] = b.Close * b.Volume
	}
	return CalculateSMA(dv, period)
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
