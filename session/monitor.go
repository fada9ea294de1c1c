package session

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitwit/payflow/chains"
	"github.com/vitwit/payflow/logger"
	"github.com/vitwit/payflow/metrics"
	"github.com/vitwit/payflow/types"
)

// matchTolerance is how far below the quoted amount an unsolicited transfer
// may fall and still be matched to a session. The safety margin added at
// quote time absorbs the difference.
var matchTolerance = decimal.NewFromFloat(0.99)

// Monitor runs one polling loop per chain. Each tick it advances CONFIRMING
// sessions whose transactions reached the chain's confirmation depth, fails
// the ones stuck past the ceiling, and reconciles unsolicited inbound
// transfers against PENDING sessions.
type Monitor struct {
	adapters map[types.Network]chains.Adapter
	store    Store
	observer Observer
	obs      *Observations
	cfg      types.Config
	log      logger.Logger
	rec      metrics.Recorder
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitor wires the monitor. obs is the confirmation-depth view shared
// with the orchestrator.
func NewMonitor(
	adapters map[types.Network]chains.Adapter,
	store Store,
	observer Observer,
	obs *Observations,
	cfg types.Config,
	log logger.Logger,
	rec metrics.Recorder,
) *Monitor {
	cfg.Normalize()
	return &Monitor{
		adapters: adapters,
		store:    store,
		observer: observer,
		obs:      obs,
		cfg:      cfg,
		log:      log,
		rec:      rec,
		now:      time.Now,
	}
}

// Start launches one polling goroutine per chain. Calling Start twice is a
// no-op until Stop is called.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	for network := range m.adapters {
		m.wg.Add(1)
		go m.loop(loopCtx, network)
	}

	m.log.Info("confirmation monitor started", map[string]any{
		"chains":   len(m.adapters),
		"interval": m.cfg.MonitorInterval.String(),
	})
}

// Stop signals every loop and waits for each to finish its current tick.
// No transition is left half-applied.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	m.wg.Wait()
	m.log.Info("confirmation monitor stopped", nil)
}

func (m *Monitor) loop(ctx context.Context, network types.Network) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// The tick runs on its own deadline, detached from the loop
			// context, so shutdown waits for it instead of aborting it midway.
			tickCtx, cancel := context.WithTimeout(context.Background(), m.cfg.MonitorInterval)
			m.tick(tickCtx, network)
			cancel()
		}
	}
}

// Tick runs one scan for the chain. Exported for deterministic testing; the
// polling loops call it on their own cadence.
func (m *Monitor) Tick(ctx context.Context, network types.Network) {
	if _, ok := m.adapters[network]; !ok {
		return
	}
	m.tick(ctx, network)
}

func (m *Monitor) tick(ctx context.Context, network types.Network) {
	started := m.now()

	m.scanConfirming(ctx, network)
	m.reconcilePending(ctx, network)

	m.rec.ObserveLatency(metrics.OpMonitorTick, m.now().Sub(started), map[string]string{
		"chain": network.String(),
	})
}

func (m *Monitor) scanConfirming(ctx context.Context, network types.Network) {
	sessions, err := m.store.ListByChainStatus(ctx, network.String(), types.StatusConfirming)
	if err != nil {
		m.log.Error("monitor could not list confirming sessions", map[string]any{
			"chain": network.String(),
			"error": err.Error(),
		})
		return
	}

	for _, s := range sessions {
		depth, err := m.observer.Confirmations(ctx, network, s.TxHash)
		if err != nil {
			// Transient observation failures are absorbed; the next tick retries.
			m.log.Warn("confirmation lookup failed", map[string]any{
				"chain":   network.String(),
				"session": s.ID,
				"tx":      s.TxHash,
				"error":   err.Error(),
			})
			continue
		}

		m.obs.Set(s.ID, depth)

		if depth >= s.MinConfirmations {
			m.complete(ctx, s, depth)
			continue
		}

		// CONFIRMING sessions are exempt from ordinary expiry, so a very long
		// ceiling backstops transactions that never confirm.
		if m.now().Sub(s.CreatedAt) > m.cfg.ConfirmingCeiling {
			m.failTimedOut(ctx, s)
		}
	}
}

func (m *Monitor) complete(ctx context.Context, s *types.PaymentSession, depth int) {
	_, err := m.store.UpdateIf(ctx, s.ID, types.StatusConfirming, func(p *types.PaymentSession) {
		p.Status = types.StatusCompleted
	})
	if err != nil {
		if !types.IsCode(err, types.ErrConflict) {
			m.log.Error("monitor could not complete session", map[string]any{
				"session": s.ID,
				"error":   err.Error(),
			})
		}
		return
	}

	m.obs.Forget(s.ID)
	m.rec.IncCounter(metrics.EventSessionCompleted, map[string]string{"chain": s.Network})
	m.log.Info("payment session completed", map[string]any{
		"session":       s.ID,
		"tx":            s.TxHash,
		"confirmations": depth,
	})
}

func (m *Monitor) failTimedOut(ctx context.Context, s *types.PaymentSession) {
	timeoutErr := types.NewError(types.ErrConfirmationTimeout,
		"transaction %s did not reach %d confirmations within %s",
		s.TxHash, s.MinConfirmations, m.cfg.ConfirmingCeiling)

	_, err := m.store.UpdateIf(ctx, s.ID, types.StatusConfirming, func(p *types.PaymentSession) {
		p.Status = types.StatusFailed
		p.LastError = timeoutErr.Message
	})
	if err != nil {
		if !types.IsCode(err, types.ErrConflict) {
			m.log.Error("monitor could not fail session", map[string]any{
				"session": s.ID,
				"error":   err.Error(),
			})
		}
		return
	}

	m.obs.Forget(s.ID)
	m.rec.IncCounter(metrics.EventSessionFailed, map[string]string{"chain": s.Network})
	m.log.Warn("payment session timed out waiting for confirmations", map[string]any{
		"session": s.ID,
		"tx":      s.TxHash,
	})
}

// reconcilePending is the best-effort path for payers who never call
// ConfirmPayment: unsolicited transfers to the receiving address are matched
// to PENDING sessions by currency, announced payer (when known), and amount
// tolerance. An explicit confirmation that races this scan wins; the
// conditional update simply loses and the transfer is reconsidered next tick.
func (m *Monitor) reconcilePending(ctx context.Context, network types.Network) {
	pending, err := m.store.ListByChainStatus(ctx, network.String(), types.StatusPending)
	if err != nil || len(pending) == 0 {
		return
	}

	since := m.now().Add(-2 * m.cfg.MonitorInterval)
	transfers, err := m.observer.IncomingTransfers(ctx, network, m.cfg.ReceivingAddress, since)
	if err != nil {
		m.log.Warn("inbound transfer lookup failed", map[string]any{
			"chain": network.String(),
			"error": err.Error(),
		})
		return
	}

	// The observation window overlaps ticks, so the same transfer comes back
	// more than once. A hash already attached to any session must never pay a
	// second one.
	claimed := m.claimedHashes(ctx, network)

	for _, tr := range transfers {
		if claimed[tr.TxHash] {
			continue
		}

		s := matchTransfer(pending, tr)
		if s == nil {
			continue
		}

		if _, err := m.store.UpdateIf(ctx, s.ID, types.StatusPending, func(p *types.PaymentSession) {
			p.TxHash = tr.TxHash
			p.Payer = tr.From
			p.Status = types.StatusConfirming
		}); err != nil {
			continue
		}

		claimed[tr.TxHash] = true
		s.Status = types.StatusConfirming
		m.rec.IncCounter(metrics.EventSessionConfirming, map[string]string{"chain": s.Network})
		m.log.Info("matched unsolicited transfer to session", map[string]any{
			"session": s.ID,
			"tx":      tr.TxHash,
			"from":    tr.From,
		})
	}
}

// claimedHashes collects every transaction hash already attached to a session
// on the chain. CONFIRMING covers in-flight attachments; the terminal states
// cover sessions that resolved between ticks while their transfer is still
// inside the observation window.
func (m *Monitor) claimedHashes(ctx context.Context, network types.Network) map[string]bool {
	claimed := make(map[string]bool)
	for _, status := range []types.Status{
		types.StatusConfirming,
		types.StatusCompleted,
		types.StatusFailed,
	} {
		sessions, err := m.store.ListByChainStatus(ctx, network.String(), status)
		if err != nil {
			m.log.Warn("claimed-hash lookup failed", map[string]any{
				"chain":  network.String(),
				"status": status.String(),
				"error":  err.Error(),
			})
			continue
		}
		for _, s := range sessions {
			if s.TxHash != "" {
				claimed[s.TxHash] = true
			}
		}
	}
	return claimed
}

// matchTransfer picks the first pending session the transfer plausibly pays:
// same currency, same announced payer when the session has one, and at least
// the due amount minus tolerance.
func matchTransfer(pending []*types.PaymentSession, tr types.Transfer) *types.PaymentSession {
	for _, s := range pending {
		if s.Status != types.StatusPending {
			continue
		}
		if s.Currency.Symbol != tr.Symbol {
			continue
		}
		if s.Payer != "" && s.Payer != tr.From {
			continue
		}

		due, ok := new(big.Int).SetString(s.AmountDue.Amount, 10)
		if !ok {
			continue
		}
		dueDec := decimal.NewFromBigInt(due, -int32(s.Currency.Decimals))
		if tr.Amount.GreaterThanOrEqual(dueDec.Mul(matchTolerance)) {
			return s
		}
	}
	return nil
}
