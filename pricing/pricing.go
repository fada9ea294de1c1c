// Package pricing resolves the fiat price of every purchasable product and
// the discounts that apply to it. All prices are EUR.
package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitwit/payflow/types"
)

// Tier is a user's subscription level.
type Tier string

const (
	TierFree       Tier = "free"
	TierBasic      Tier = "basic"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

// Product type identifiers accepted by ProductPrice.
const (
	ProductSubscription = "subscription"
	ProductService      = "service"
	ProductMarketplace  = "marketplace"
)

// TierSource resolves a user's subscription tier. It is an external
// collaborator; the default treats every unknown user as free tier.
type TierSource interface {
	TierFor(userID string) Tier
}

// StaticTiers is a TierSource backed by a fixed map.
type StaticTiers map[string]Tier

func (s StaticTiers) TierFor(userID string) Tier {
	if t, ok := s[userID]; ok {
		return t
	}
	return TierFree
}

// PromoCode is a time-limited multiplicative discount.
type PromoCode struct {
	Code      string
	Rate      decimal.Decimal // in [0,1]
	ExpiresAt time.Time
}

// Catalog holds the static price tables.
type Catalog struct {
	// TokenCreation maps a network to its token-creation fee.
	TokenCreation map[types.Network]decimal.Decimal

	// Subscriptions maps plan id -> period ("monthly"/"annual") -> price.
	Subscriptions map[string]map[string]decimal.Decimal

	// Services maps premium service id -> price.
	Services map[string]decimal.Decimal

	// Marketplace maps item id -> price.
	Marketplace map[string]decimal.Decimal

	// Promos maps upper-cased code -> promo.
	Promos map[string]PromoCode
}

// Engine answers price questions against a catalog.
type Engine struct {
	catalog Catalog
	tiers   TierSource
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithTierSource sets the subscription-tier collaborator.
func WithTierSource(src TierSource) Option {
	return func(e *Engine) { e.tiers = src }
}

// WithCatalog replaces the default catalog.
func WithCatalog(c Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// New creates a pricing engine over the default catalog.
func New(opts ...Option) *Engine {
	e := &Engine{
		catalog: DefaultCatalog(),
		tiers:   StaticTiers{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TokenCreationPrice returns the fixed token-creation fee for a network.
func (e *Engine) TokenCreationPrice(network types.Network) (decimal.Decimal, error) {
	price, ok := e.catalog.TokenCreation[network]
	if !ok {
		return decimal.Zero, types.NewError(types.ErrUnsupportedNetwork,
			"no token creation price for network %s", network)
	}
	return price, nil
}

// DiscountedTokenCreationPrice applies the user's subscription-tier discount
// to the base token-creation fee.
func (e *Engine) DiscountedTokenCreationPrice(network types.Network, userID string) (decimal.Decimal, error) {
	base, err := e.TokenCreationPrice(network)
	if err != nil {
		return decimal.Zero, err
	}

	discount := TierDiscount(e.tiers.TierFor(userID))
	return roundCents(base.Mul(decimal.NewFromInt(1).Sub(discount))), nil
}

// ProductPrice resolves a product price from the static catalogs.
// For subscriptions, extra["period"] selects "monthly" or "annual".
func (e *Engine) ProductPrice(productType, productID string, extra map[string]string) (decimal.Decimal, error) {
	switch productType {
	case ProductSubscription:
		periods, ok := e.catalog.Subscriptions[productID]
		if !ok {
			return decimal.Zero, types.NewError(types.ErrProductNotFound,
				"unknown subscription plan %q", productID)
		}
		period := extra["period"]
		if period == "" {
			period = "monthly"
		}
		price, ok := periods[period]
		if !ok {
			return decimal.Zero, types.NewError(types.ErrProductNotFound,
				"subscription plan %q has no %q period", productID, period)
		}
		return price, nil

	case ProductService:
		price, ok := e.catalog.Services[productID]
		if !ok {
			return decimal.Zero, types.NewError(types.ErrProductNotFound,
				"unknown premium service %q", productID)
		}
		return price, nil

	case ProductMarketplace:
		price, ok := e.catalog.Marketplace[productID]
		if !ok {
			return decimal.Zero, types.NewError(types.ErrProductNotFound,
				"unknown marketplace item %q", productID)
		}
		return price, nil
	}

	return decimal.Zero, types.NewError(types.ErrProductNotFound,
		"unknown product type %q", productType)
}

// PromoDiscount returns the discount rate for a promo code, or zero for
// unknown and expired codes. A zero return does not distinguish "not found"
// from "found with zero rate"; callers must not rely on that.
func (e *Engine) PromoDiscount(code string) decimal.Decimal {
	promo, ok := e.catalog.Promos[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return decimal.Zero
	}
	if e.now().After(promo.ExpiresAt) {
		return decimal.Zero
	}
	return promo.Rate
}

// FinalPrice composes the total: base x (1 - tier discount) x (1 - promo
// discount). The factors are multiplicative, never summed, so stacked
// discounts cannot exceed 100%. Result is rounded half away from zero to
// cents; that rounding rule applies to every fiat price this package emits.
func (e *Engine) FinalPrice(base decimal.Decimal, userID, promoCode string) decimal.Decimal {
	one := decimal.NewFromInt(1)
	total := base.
		Mul(one.Sub(TierDiscount(e.tiers.TierFor(userID)))).
		Mul(one.Sub(e.PromoDiscount(promoCode)))
	return roundCents(total)
}

// TierDiscount maps a subscription tier to its multiplicative discount rate.
func TierDiscount(t Tier) decimal.Decimal {
	switch t {
	case TierBasic:
		return decimal.NewFromFloat(0.10)
	case TierPremium:
		return decimal.NewFromFloat(0.20)
	case TierEnterprise:
		return decimal.NewFromFloat(0.30)
	default:
		return decimal.Zero
	}
}

func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
