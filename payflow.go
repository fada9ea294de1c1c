// Package payflow implements a multi-chain payment session engine: it quotes
// product prices in cryptocurrency against a volatile EUR rate, opens
// time-bounded payment sessions, and drives each session through a strict
// lifecycle to a terminal state by watching six independent blockchains.
package payflow

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitwit/payflow/chains"
	"github.com/vitwit/payflow/logger"
	"github.com/vitwit/payflow/metrics"
	"github.com/vitwit/payflow/oracle"
	"github.com/vitwit/payflow/pricing"
	"github.com/vitwit/payflow/session"
	"github.com/vitwit/payflow/types"
)

// PayFlow is the engine facade. It wires the price oracle, the pricing
// engine, one adapter per chain, the session orchestrator, and the
// confirmation monitor. All methods are safe for concurrent use.
type PayFlow struct {
	cfg      types.Config
	log      logger.Logger
	rec      metrics.Recorder
	oracle   *oracle.Oracle
	pricing  *pricing.Engine
	adapters map[types.Network]chains.Adapter
	store    session.Store
	observer session.Observer
	orch     *session.Orchestrator
	monitor  *session.Monitor
}

// New creates an engine from config and options. The receiving address is
// the only mandatory config field; every other knob has a default.
func New(cfg types.Config, opts ...Option) (*PayFlow, error) {
	if cfg.ReceivingAddress == "" {
		return nil, types.NewError(types.ErrConfig, "receiving address is required")
	}
	cfg.Normalize()

	p := &PayFlow{
		cfg: cfg,
		log: logger.NoopLogger{},
		rec: metrics.NoopRecorder{},
	}
	if cfg.LogLevel != "" {
		p.log = logger.NewZapLogger(cfg.LogLevel)
	}
	if cfg.EnableMetrics {
		p.rec = metrics.NewPrometheusRecorder()
	}

	var settings options
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.log != nil {
		p.log = settings.log
	}
	if settings.rec != nil {
		p.rec = settings.rec
	}

	source := settings.priceSource
	if source == nil {
		source = oracle.NewStaticSource(nil)
	}
	p.oracle = oracle.New(source,
		oracle.WithTTL(cfg.OracleTTL),
		oracle.WithLogger(p.log),
	)

	var pricingOpts []pricing.Option
	if settings.tiers != nil {
		pricingOpts = append(pricingOpts, pricing.WithTierSource(settings.tiers))
	}
	if settings.catalog != nil {
		pricingOpts = append(pricingOpts, pricing.WithCatalog(*settings.catalog))
	}
	p.pricing = pricing.New(pricingOpts...)

	adapters := settings.adapters
	if adapters == nil {
		var err error
		adapters, err = chains.DefaultAdapters(p.oracle)
		if err != nil {
			return nil, err
		}
	}
	p.adapters = adapters

	p.store = settings.store
	if p.store == nil {
		p.store = session.NewMemoryStore()
	}
	p.observer = settings.observer
	if p.observer == nil {
		p.observer = session.NoopObserver{}
	}

	obs := session.NewObservations()
	p.orch = session.NewOrchestrator(p.adapters, p.store, obs, cfg, p.log, p.rec)
	p.monitor = session.NewMonitor(p.adapters, p.store, p.observer, obs, cfg, p.log, p.rec)

	return p, nil
}

// Start launches the per-chain confirmation monitor loops.
func (p *PayFlow) Start(ctx context.Context) {
	p.monitor.Start(ctx)
}

// Close stops the monitor, letting in-flight ticks complete.
func (p *PayFlow) Close() {
	p.monitor.Stop()
}

// ListNetworks returns every supported network, sorted by id.
func (p *PayFlow) ListNetworks() []types.NetworkInfo {
	out := make([]types.NetworkInfo, 0, len(p.adapters))
	for network, a := range p.adapters {
		out = append(out, types.NetworkInfo{ID: network.String(), ChainID: a.ChainID()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListCurrencies returns the currencies payable on a network.
func (p *PayFlow) ListCurrencies(network types.Network) ([]types.CurrencyInfo, error) {
	a, ok := p.adapters[network]
	if !ok {
		return nil, types.NewError(types.ErrUnsupportedNetwork,
			"network %s is not supported", network)
	}
	return a.Currencies(), nil
}

// Convert quotes a EUR amount in the given currency on the given network.
func (p *PayFlow) Convert(
	ctx context.Context,
	network types.Network,
	fiatAmount decimal.Decimal,
	symbol string,
) (types.CryptoAmount, error) {
	a, ok := p.adapters[network]
	if !ok {
		return types.CryptoAmount{}, types.NewError(types.ErrUnsupportedNetwork,
			"network %s is not supported", network)
	}

	started := time.Now()
	quote, err := a.ConvertFiatToCrypto(ctx, fiatAmount, symbol)
	if err != nil {
		return types.CryptoAmount{}, err
	}

	p.rec.IncCounter(metrics.EventConversion, map[string]string{"chain": network.String()})
	p.rec.ObserveLatency(metrics.OpConvert, time.Since(started), map[string]string{"chain": network.String()})
	return quote.Amount, nil
}

// EstimateFees estimates the network fee for a payment on the given network.
// currencyAddress is empty for the native asset.
func (p *PayFlow) EstimateFees(
	ctx context.Context,
	network types.Network,
	fiatAmount decimal.Decimal,
	currencyAddress string,
) (types.FeeEstimate, error) {
	a, ok := p.adapters[network]
	if !ok {
		return types.FeeEstimate{}, types.NewError(types.ErrUnsupportedNetwork,
			"network %s is not supported", network)
	}
	return a.EstimateFees(ctx, fiatAmount, currencyAddress)
}

// InitPaymentSession opens a PENDING payment session for the given network.
func (p *PayFlow) InitPaymentSession(
	ctx context.Context,
	network types.Network,
	params types.InitParams,
) (*types.PaymentSession, error) {
	return p.orch.InitPaymentSession(ctx, network, params)
}

// CheckPaymentStatus returns the session's current lifecycle state,
// performing the lazy expiry and completion checks.
func (p *PayFlow) CheckPaymentStatus(ctx context.Context, sessionID string) (types.Status, error) {
	return p.orch.CheckPaymentStatus(ctx, sessionID)
}

// ConfirmPayment attaches a client-submitted transaction hash. The boolean
// reports whether the confirmation was accepted.
func (p *PayFlow) ConfirmPayment(ctx context.Context, sessionID, txHash string) (bool, error) {
	return p.orch.ConfirmPayment(ctx, sessionID, txHash)
}

// ListUserTransactions returns the user's session history, newest first.
func (p *PayFlow) ListUserTransactions(ctx context.Context, userID string) ([]*types.PaymentSession, error) {
	return p.orch.ListUserTransactions(ctx, userID)
}

// Pricing exposes the product pricing engine.
func (p *PayFlow) Pricing() *pricing.Engine {
	return p.pricing
}

// Oracle exposes the price oracle, mainly for warm-up and diagnostics.
func (p *PayFlow) Oracle() *oracle.Oracle {
	return p.oracle
}

// Version information.
const Version = "1.0.0"
