package calculator

import (
	"errors"
	"math"

	"BasketMint/internal/model"
)

// NeutralDemandBP is reported when the bars carry no directional signal:
// too little history or a window with no price movement at all.
const NeutralDemandBP = model.BasisPoints / 2

// DemandBP measures buying pressure as the share of Wilder-smoothed upward
// movement in total movement, in basis points. Moves are log close-to-close
// returns so the reading does not depend on the price level; non-positive
// closes are skipped. The result is always within [0, 10000].
func DemandBP(bars []model.OHLCV, period int) (int64, error) {
	if period <= 0 {
		return 0, errors.New("demand period must be positive")
	}
	moves := logReturns(extractCloses(bars))
	if len(moves) < period {
		return NeutralDemandBP, nil
	}

	var up, down float64
	for _, m := range moves[:period] {
		up += math.Max(m, 0)
		down += math.Max(-m, 0)
	}
	up /= float64(period)
	down /= float64(period)

	k := float64(period - 1)
	for _, m := range moves[period:] {
		up = (up*k + math.Max(m, 0)) / float64(period)
		down = (down*k + math.Max(-m, 0)) / float64(period)
	}

	total := up + down
	if total == 0 {
		return NeutralDemandBP, nil
	}
	bp := int64(math.Round(up / total * model.BasisPoints))
	switch {
	case bp < 0:
		return 0, nil
	case bp > model.BasisPoints:
		return model.BasisPoints, nil
	}
	return bp, nil
}

func logReturns(closes []float64) []float64 {
	out := make([]float64, 0, len(closes))
	var last float64
	for _, c := range closes {
		if c <= 0 {
			continue
		}
		if last > 0 {
			out = append(out, math.Log(c/last))
		}
		last = c
	}
	return out
}
