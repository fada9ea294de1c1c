package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitwit/payflow/types"
)

func TestTokenCreationPrice(t *testing.T) {
	e := New()

	price, err := e.TokenCreationPrice(types.NetworkEthereum)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromFloat(299.99)))

	price, err = e.TokenCreationPrice(types.NetworkPolygon)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromFloat(99.99)))
}

func TestTokenCreationPriceUnsupportedNetwork(t *testing.T) {
	e := New()

	_, err := e.TokenCreationPrice(types.Network("dogechain"))
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrUnsupportedNetwork))
}

func TestDiscountedTokenCreationPrice(t *testing.T) {
	e := New(WithTierSource(StaticTiers{
		"basic-user":      TierBasic,
		"premium-user":    TierPremium,
		"enterprise-user": TierEnterprise,
	}))

	cases := []struct {
		userID   string
		expected float64
	}{
		{"unknown-user", 299.99},    // free tier, no discount
		{"basic-user", 269.99},      // 10% off, rounded to cents
		{"premium-user", 239.99},    // 20% off
		{"enterprise-user", 209.99}, // 30% off
	}

	for _, tc := range cases {
		price, err := e.DiscountedTokenCreationPrice(types.NetworkEthereum, tc.userID)
		require.NoError(t, err, tc.userID)
		assert.True(t, price.Equal(decimal.NewFromFloat(tc.expected)),
			"%s: got %s", tc.userID, price)
	}
}

func TestProductPriceSubscription(t *testing.T) {
	e := New()

	price, err := e.ProductPrice(ProductSubscription, "premium", map[string]string{"period": "annual"})
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromFloat(499.99)))

	// Period defaults to monthly.
	price, err = e.ProductPrice(ProductSubscription, "basic", nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromFloat(9.99)))
}

func TestProductPriceNotFound(t *testing.T) {
	e := New()

	_, err := e.ProductPrice(ProductSubscription, "platinum", nil)
	assert.True(t, types.IsCode(err, types.ErrProductNotFound))

	_, err = e.ProductPrice(ProductSubscription, "premium", map[string]string{"period": "weekly"})
	assert.True(t, types.IsCode(err, types.ErrProductNotFound))

	_, err = e.ProductPrice(ProductService, "no-such-service", nil)
	assert.True(t, types.IsCode(err, types.ErrProductNotFound))

	_, err = e.ProductPrice(ProductMarketplace, "no-such-item", nil)
	assert.True(t, types.IsCode(err, types.ErrProductNotFound))

	_, err = e.ProductPrice("raffle", "premium", nil)
	assert.True(t, types.IsCode(err, types.ErrProductNotFound))
}

func TestProductPriceServiceAndMarketplace(t *testing.T) {
	e := New()

	price, err := e.ProductPrice(ProductService, "contract-audit", nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromFloat(799.99)))

	price, err = e.ProductPrice(ProductMarketplace, "template-dao", nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromFloat(79.99)))
}

func TestPromoDiscount(t *testing.T) {
	e := New()

	// Active code returns its configured rate; lookups are case-insensitive.
	assert.True(t, e.PromoDiscount("LAUNCH2025").Equal(decimal.NewFromFloat(0.15)))
	assert.True(t, e.PromoDiscount("launch2025").Equal(decimal.NewFromFloat(0.15)))

	// Unknown and expired codes both return zero.
	assert.True(t, e.PromoDiscount("NOPE").IsZero())
	assert.True(t, e.PromoDiscount("EARLYBIRD").IsZero())
	assert.True(t, e.PromoDiscount("").IsZero())
}

func TestPromoDiscountExpiryIsWallClock(t *testing.T) {
	e := New()
	e.now = func() time.Time { return time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC) }

	// EARLYBIRD was still valid on that date.
	assert.True(t, e.PromoDiscount("EARLYBIRD").Equal(decimal.NewFromFloat(0.25)))
}

func TestFinalPriceComposesMultiplicatively(t *testing.T) {
	e := New(WithTierSource(StaticTiers{"premium-user": TierPremium}))

	// 499.99 with a 15% promo only: 424.9915 -> 424.99.
	total := e.FinalPrice(decimal.NewFromFloat(499.99), "unknown-user", "LAUNCH2025")
	assert.True(t, total.Equal(decimal.NewFromFloat(424.99)), "got %s", total)

	// Tier and promo stack as factors, not sums:
	// 100 x 0.80 x 0.85 = 68, never 100 x (1 - 0.35).
	total = e.FinalPrice(decimal.NewFromInt(100), "premium-user", "LAUNCH2025")
	assert.True(t, total.Equal(decimal.NewFromInt(68)), "got %s", total)
}

func TestTierDiscountRates(t *testing.T) {
	assert.True(t, TierDiscount(TierFree).IsZero())
	assert.True(t, TierDiscount(Tier("unknown")).IsZero())
	assert.True(t, TierDiscount(TierBasic).Equal(decimal.NewFromFloat(0.10)))
	assert.True(t, TierDiscount(TierPremium).Equal(decimal.NewFromFloat(0.20)))
	assert.True(t, TierDiscount(TierEnterprise).Equal(decimal.NewFromFloat(0.30)))
}
