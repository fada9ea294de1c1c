package oracle

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vitwit/payflow/types"
)

// StaticSource is a Source backed by a fixed in-memory rate table. It serves
// as the default collaborator for deployments that push rates in from the
// outside, and as a test double.
type StaticSource struct {
	mu    sync.RWMutex
	rates map[string]decimal.Decimal
}

// NewStaticSource creates a source seeded with the given "SYMBOL/FIAT" rates.
func NewStaticSource(rates map[string]decimal.Decimal) *StaticSource {
	s := &StaticSource{rates: make(map[string]decimal.Decimal, len(rates))}
	for pair, price := range rates {
		s.rates[strings.ToUpper(pair)] = price
	}
	return s
}

// Set replaces the rate for a pair.
func (s *StaticSource) Set(symbol, fiat string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[strings.ToUpper(symbol+"/"+fiat)] = price
}

// Spot implements Source.
func (s *StaticSource) Spot(_ context.Context, symbol, fiat string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	price, ok := s.rates[strings.ToUpper(symbol+"/"+fiat)]
	if !ok {
		return decimal.Zero, types.NewError(types.ErrPriceUnavailable,
			"no static rate for %s/%s", symbol, fiat)
	}
	return price, nil
}
