package market

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"BasketMint/internal/model"
)

// ErrNegativeInput is returned when an update carries a negative figure.
var ErrNegativeInput = errors.New("market: negative input")

// Store holds the current market condition snapshot. It is safe for
// concurrent use; readers always get a copy.
type Store struct {
	mu   sync.RWMutex
	cond model.MarketCondition
	now  func() time.Time
}

// NewStore creates an empty store. A nil clock defaults to time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{now: now}
}

// Update overwrites the snapshot and stamps it. The stamp strictly advances
// even if the clock does not.
func (s *Store) Update(liquidity decimal.Decimal, volatilityBP, demandBP int64) (model.MarketCondition, error) {
	if liquidity.IsNegative() || volatilityBP < 0 || demandBP < 0 {
		return model.MarketCondition{}, ErrNegativeInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now()
	if !ts.After(s.cond.UpdatedAt) {
		ts = s.cond.UpdatedAt.Add(time.Nanosecond)
	}
	s.cond = model.MarketCondition{
		Liquidity:    liquidity,
		VolatilityBP: volatilityBP,
		DemandBP:     demandBP,
		UpdatedAt:    ts,
	}
	return s.cond, nil
}

// Current returns the latest snapshot.
func (s *Store) Current() model.MarketCondition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cond
}
