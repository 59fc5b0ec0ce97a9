package fund

import (
	"sort"

	"github.com/shopspring/decimal"

	"BasketMint/internal/model"
)

// Issuance describes the result of a successful Issue call.
type Issuance struct {
	FundID         string                     `json:"fund_id"`
	Contributor    string                     `json:"contributor"`
	Shares         decimal.Decimal            `json:"shares"` // minted to the caller
	Minted         decimal.Decimal            `json:"minted"` // minted in total
	First          bool                       `json:"first"`
	AggregateValue decimal.Decimal            `json:"aggregate_value"`
	Minimum        decimal.Decimal            `json:"minimum"`
	TierLabel      string                     `json:"tier"`
	Allocations    map[string]decimal.Decimal `json:"allocations"`
}

// proportionalShares is floor(totalShares * pending / aggregate).
func proportionalShares(totalShares, pending, aggregate decimal.Decimal) decimal.Decimal {
	q, _ := totalShares.Mul(pending).QuoRem(aggregate, 0)
	return q
}

// firstIssuance mints aggregate scaled into share units and splits it across
// every contributor with pending value, pro-rata. Flooring dust goes to the
// caller.
func firstIssuance(f *model.Fund, caller string, aggregate, scale decimal.Decimal) (decimal.Decimal, map[string]decimal.Decimal) {
	minted := aggregate.Mul(scale).Floor()

	names := make([]string, 0, len(f.Trackers))
	sumPending := decimal.Zero
	for name, t := range f.Trackers {
		if p := t.Pending(); p.IsPositive() {
			names = append(names, name)
			sumPending = sumPending.Add(p)
		}
	}
	sort.Strings(names)

	alloc := make(map[string]decimal.Decimal, len(names))
	given := decimal.Zero
	for _, name := range names {
		if name == caller {
			continue
		}
		q, _ := minted.Mul(f.Trackers[name].Pending()).QuoRem(sumPending, 0)
		alloc[name] = q
		given = given.Add(q)
	}
	alloc[caller] = minted.Sub(given)
	return minted, alloc
}

// backfill spreads shares over the contributor's unfulfilled deposits in
// proportion to their value; the newest record absorbs rounding dust.
func backfill(deposits []model.Deposit, contributor string, shares decimal.Decimal) {
	var open []int
	total := decimal.Zero
	for i := range deposits {
		d := &deposits[i]
		if d.Contributor == contributor && !d.Fulfilled {
			open = append(open, i)
			total = total.Add(d.Value)
		}
	}
	if len(open) == 0 {
		return
	}

	given := decimal.Zero
	for k, i := range open {
		d := &deposits[i]
		var s decimal.Decimal
		switch {
		case k == len(open)-1:
			s = shares.Sub(given)
		case total.IsPositive():
			s, _ = shares.Mul(d.Value).QuoRem(total, 0)
		default:
			s = decimal.Zero
		}
		d.SharesReceived = d.SharesReceived.Add(s)
		d.Fulfilled = true
		given = given.Add(s)
	}
}

// exceedsThreshold reports whether fresh deviates from stored by more than
// threshold, relative to stored. A zero stored value always recalculates.
func exceedsThreshold(stored, fresh, threshold decimal.Decimal) bool {
	if stored.IsZero() {
		return !fresh.IsZero()
	}
	return fresh.Sub(stored).Abs().Div(stored.Abs()).GreaterThan(threshold)
}
