package oracle

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// ErrNoPrice indicates the oracle has no usable price for an asset.
var ErrNoPrice = errors.New("oracle: no price for asset")

// Oracle values an amount of an asset in the fund's value unit.
type Oracle interface {
	Value(asset string, amount decimal.Decimal) (decimal.Decimal, error)
}

// PriceTable is an in-memory oracle with settable unit prices.
type PriceTable struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

// NewPriceTable creates a table seeded with the given prices.
func NewPriceTable(prices map[string]decimal.Decimal) *PriceTable {
	pt := &PriceTable{prices: make(map[string]decimal.Decimal, len(prices))}
	for asset, px := range prices {
		pt.prices[normalize(asset)] = px
	}
	return pt
}

// Set replaces the unit price of an asset.
func (p *PriceTable) Set(asset string, price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("oracle: negative price %s for %s", price, asset)
	}
	p.mu.Lock()
	p.prices[normalize(asset)] = price
	p.mu.Unlock()
	return nil
}

// Remove drops an asset so further valuations fail.
func (p *PriceTable) Remove(asset string) {
	p.mu.Lock()
	delete(p.prices, normalize(asset))
	p.mu.Unlock()
}

// Value implements Oracle.
func (p *PriceTable) Value(asset string, amount decimal.Decimal) (decimal.Decimal, error) {
	p.mu.RLock()
	px, ok := p.prices[normalize(asset)]
	p.mu.RUnlock()
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNoPrice, asset)
	}
	return px.Mul(amount), nil
}

func normalize(asset string) string {
	return strings.ToUpper(strings.TrimSpace(asset))
}
