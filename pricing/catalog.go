package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitwit/payflow/types"
)

func eur(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// DefaultCatalog is the shipped price list. Deployments override it through
// WithCatalog, typically from configuration.
func DefaultCatalog() Catalog {
	return Catalog{
		TokenCreation: map[types.Network]decimal.Decimal{
			types.NetworkEthereum:  eur(299.99),
			types.NetworkBSC:       eur(149.99),
			types.NetworkPolygon:   eur(99.99),
			types.NetworkAvalanche: eur(129.99),
			types.NetworkArbitrum:  eur(119.99),
			types.NetworkSolana:    eur(199.99),
		},

		Subscriptions: map[string]map[string]decimal.Decimal{
			"basic": {
				"monthly": eur(9.99),
				"annual":  eur(99.99),
			},
			"premium": {
				"monthly": eur(49.99),
				"annual":  eur(499.99),
			},
			"enterprise": {
				"monthly": eur(199.99),
				"annual":  eur(1999.99),
			},
		},

		Services: map[string]decimal.Decimal{
			"contract-audit":   eur(799.99),
			"priority-listing": eur(299.99),
			"launch-marketing": eur(149.99),
		},

		Marketplace: map[string]decimal.Decimal{
			"template-defi":  eur(59.99),
			"template-dao":   eur(79.99),
			"template-nft":   eur(49.99),
			"logo-pack":      eur(19.99),
			"audit-addendum": eur(39.99),
		},

		Promos: map[string]PromoCode{
			"LAUNCH2025": {
				Code:      "LAUNCH2025",
				Rate:      decimal.NewFromFloat(0.15),
				ExpiresAt: time.Date(2026, time.December, 31, 23, 59, 59, 0, time.UTC),
			},
			"EARLYBIRD": {
				Code:      "EARLYBIRD",
				Rate:      decimal.NewFromFloat(0.25),
				ExpiresAt: time.Date(2025, time.June, 30, 23, 59, 59, 0, time.UTC),
			},
		},
	}
}
