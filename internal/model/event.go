package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventKind names a notification emitted by the engine.
type EventKind string

const (
	EventFundCreated         EventKind = "fund_created"
	EventDepositRecorded     EventKind = "deposit_recorded"
	EventMinimumRecalculated EventKind = "minimum_recalculated"
	EventSharesIssued        EventKind = "shares_issued"
	EventFundDeactivated     EventKind = "fund_deactivated"
)

// Event is the payload delivered to notification sinks.
type Event struct {
	Kind         EventKind
	FundID       string
	Contributor  string
	Asset        string
	Amount       decimal.Decimal
	Contribution decimal.Decimal // valued amount of a single deposit
	Value        decimal.Decimal // aggregate value after the operation
	Shares       decimal.Decimal
	Minimum      decimal.Decimal
	TierLabel    string
	Note         string
	At           time.Time
}
