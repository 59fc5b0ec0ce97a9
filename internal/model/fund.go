package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Component is one asset of a fund's declared basket.
type Component struct {
	Asset     string          `json:"asset"`
	TargetBP  int64           `json:"target_bp"`
	Deposited decimal.Decimal `json:"deposited"`
	CurrentBP int64           `json:"current_bp"` // derived, see fund.recomputeRatios
}

// Deposit is an append-only audit record of one contribution.
type Deposit struct {
	ID             string          `json:"id"`
	Contributor    string          `json:"contributor"`
	Asset          string          `json:"asset"`
	Amount         decimal.Decimal `json:"amount"`
	Value          decimal.Decimal `json:"value"`
	Timestamp      time.Time       `json:"timestamp"`
	SharesReceived decimal.Decimal `json:"shares_received"`
	Fulfilled      bool            `json:"fulfilled"`
}

// Tracker accumulates what one contributor has put into a fund.
type Tracker struct {
	Contributor     string          `json:"contributor"`
	CumulativeValue decimal.Decimal `json:"cumulative_value"`
	IssuedValue     decimal.Decimal `json:"issued_value"`
	Shares          decimal.Decimal `json:"shares"`
}

// Pending is the tracked value that has not been issued against yet.
func (t Tracker) Pending() decimal.Decimal {
	return t.CumulativeValue.Sub(t.IssuedValue)
}

// Fund is a pooled basket with its ledger and issuance state.
type Fund struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Symbol         string              `json:"symbol"`
	Creator        string              `json:"creator"`
	Components     []Component         `json:"components"`
	Active         bool                `json:"active"`
	Issued         bool                `json:"issued"`
	CreatedAt      time.Time           `json:"created_at"`
	StoredMinimum  decimal.Decimal     `json:"stored_minimum"`
	AggregateValue decimal.Decimal     `json:"aggregate_value"`
	TotalShares    decimal.Decimal     `json:"total_shares"`
	Deposits       []Deposit           `json:"deposits"`
	Trackers       map[string]*Tracker `json:"trackers"`
}

// Clone returns a deep copy so callers never alias ledger state.
func (f *Fund) Clone() *Fund {
	c := *f
	c.Components = append([]Component(nil), f.Components...)
	c.Deposits = append([]Deposit(nil), f.Deposits...)
	c.Trackers = make(map[string]*Tracker, len(f.Trackers))
	for k, t := range f.Trackers {
		tc := *t
		c.Trackers[k] = &tc
	}
	return &c
}

// Component returns the index of asset in the basket, or -1.
func (f *Fund) Component(asset string) int {
	for i := range f.Components {
		if f.Components[i].Asset == asset {
			return i
		}
	}
	return -1
}
