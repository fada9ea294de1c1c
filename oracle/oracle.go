// Package oracle supplies crypto/fiat exchange rates with bounded-freshness
// caching and stale-on-error fallback.
package oracle

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"

	"github.com/vitwit/payflow/logger"
	"github.com/vitwit/payflow/types"
)

// Source is the external spot-price collaborator.
type Source interface {
	// Spot returns the current fiat price of one unit of symbol.
	Spot(ctx context.Context, symbol, fiat string) (decimal.Decimal, error)
}

type cacheKey struct {
	symbol string
	fiat   string
}

type cacheEntry struct {
	price     decimal.Decimal
	fetchedAt time.Time
}

const cacheSize = 256

// Oracle caches quotes from a Source. A quote older than the TTL triggers a
// refresh; if the refresh fails the stale value is served, and if nothing was
// ever cached a fixed default is served. Price therefore only errors when no
// value of any kind exists for the pair.
type Oracle struct {
	source   Source
	ttl      time.Duration
	cache    *lru.Cache[cacheKey, cacheEntry]
	defaults map[cacheKey]decimal.Decimal
	log      logger.Logger
	now      func() time.Time
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithLogger sets the logger used to report degraded quotes.
func WithLogger(l logger.Logger) Option {
	return func(o *Oracle) { o.log = l }
}

// WithTTL overrides the cache freshness bound.
func WithTTL(ttl time.Duration) Option {
	return func(o *Oracle) { o.ttl = ttl }
}

// WithDefaults overrides the last-resort rate table. Keys are
// "SYMBOL/FIAT", e.g. "ETH/EUR".
func WithDefaults(rates map[string]decimal.Decimal) Option {
	return func(o *Oracle) {
		o.defaults = make(map[cacheKey]decimal.Decimal, len(rates))
		for pair, price := range rates {
			sym, fiat, ok := strings.Cut(pair, "/")
			if !ok {
				continue
			}
			o.defaults[newKey(sym, fiat)] = price
		}
	}
}

// New creates an Oracle backed by the given source.
func New(source Source, opts ...Option) *Oracle {
	cache, _ := lru.New[cacheKey, cacheEntry](cacheSize)

	o := &Oracle{
		source:   source,
		ttl:      types.DefaultOracleTTL,
		cache:    cache,
		defaults: builtinDefaults(),
		log:      logger.NoopLogger{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Price returns the fiat price of one unit of symbol.
//
// Concurrent callers may race a refresh for the same pair; last writer wins,
// which is acceptable because spot prices are idempotent reads.
func (o *Oracle) Price(ctx context.Context, symbol, fiat string) (decimal.Decimal, error) {
	key := newKey(symbol, fiat)

	entry, cached := o.cache.Get(key)
	if cached && o.now().Sub(entry.fetchedAt) < o.ttl {
		return entry.price, nil
	}

	price, err := o.source.Spot(ctx, key.symbol, key.fiat)
	if err == nil && price.GreaterThan(decimal.Zero) {
		o.cache.Add(key, cacheEntry{price: price, fetchedAt: o.now()})
		return price, nil
	}

	if cached {
		o.log.Warn("serving stale price after source failure", map[string]any{
			"symbol": key.symbol,
			"fiat":   key.fiat,
			"age":    o.now().Sub(entry.fetchedAt).String(),
			"error":  errString(err),
		})
		return entry.price, nil
	}

	if fallback, ok := o.defaults[key]; ok {
		o.log.Warn("serving default price, source unavailable and cache empty", map[string]any{
			"symbol": key.symbol,
			"fiat":   key.fiat,
			"error":  errString(err),
		})
		return fallback, nil
	}

	return decimal.Zero, types.NewError(types.ErrPriceUnavailable,
		"no price available for %s/%s", key.symbol, key.fiat)
}

func newKey(symbol, fiat string) cacheKey {
	return cacheKey{
		symbol: strings.ToUpper(symbol),
		fiat:   strings.ToUpper(fiat),
	}
}

func errString(err error) string {
	if err == nil {
		return "non-positive price from source"
	}
	return err.Error()
}

// builtinDefaults is the last line of defense when the source has never
// answered. Values are deliberately conservative snapshots, not live rates.
func builtinDefaults() map[cacheKey]decimal.Decimal {
	return map[cacheKey]decimal.Decimal{
		newKey("USD", "EUR"):   decimal.NewFromFloat(0.92),
		newKey("ETH", "EUR"):   decimal.NewFromFloat(2800),
		newKey("BNB", "EUR"):   decimal.NewFromFloat(520),
		newKey("MATIC", "EUR"): decimal.NewFromFloat(0.85),
		newKey("AVAX", "EUR"):  decimal.NewFromFloat(30),
		newKey("SOL", "EUR"):   decimal.NewFromFloat(150),
	}
}
