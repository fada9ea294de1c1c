package payflow

import (
	"github.com/vitwit/payflow/chains"
	"github.com/vitwit/payflow/logger"
	"github.com/vitwit/payflow/metrics"
	"github.com/vitwit/payflow/oracle"
	"github.com/vitwit/payflow/pricing"
	"github.com/vitwit/payflow/session"
	"github.com/vitwit/payflow/types"
)

type options struct {
	log         logger.Logger
	rec         metrics.Recorder
	priceSource oracle.Source
	tiers       pricing.TierSource
	catalog     *pricing.Catalog
	adapters    map[types.Network]chains.Adapter
	store       session.Store
	observer    session.Observer
}

// Option customizes engine construction.
type Option func(*options)

// WithLogger overrides the logger derived from config.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics overrides the metrics recorder derived from config.
func WithMetrics(r metrics.Recorder) Option {
	return func(o *options) { o.rec = r }
}

// WithPriceSource wires the external spot-price collaborator.
func WithPriceSource(s oracle.Source) Option {
	return func(o *options) { o.priceSource = s }
}

// WithTierSource wires the subscription-tier collaborator.
func WithTierSource(t pricing.TierSource) Option {
	return func(o *options) { o.tiers = t }
}

// WithCatalog replaces the default product price catalog.
func WithCatalog(c pricing.Catalog) Option {
	return func(o *options) { o.catalog = &c }
}

// WithAdapters replaces the default chain adapters, e.g. to support a
// subset of chains or custom currency tables.
func WithAdapters(a map[types.Network]chains.Adapter) Option {
	return func(o *options) { o.adapters = a }
}

// WithStore wires a durable session store. The default is in-memory.
func WithStore(s session.Store) Option {
	return func(o *options) { o.store = s }
}

// WithObserver wires the blockchain-observation collaborator the monitor
// polls. The default observer sees nothing.
func WithObserver(obs session.Observer) Option {
	return func(o *options) { o.observer = obs }
}
