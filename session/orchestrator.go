package session

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vitwit/payflow/chains"
	"github.com/vitwit/payflow/logger"
	"github.com/vitwit/payflow/metrics"
	"github.com/vitwit/payflow/types"
	"github.com/vitwit/payflow/utils"
)

// Orchestrator owns every explicit state transition of a payment session:
// creation, client-submitted confirmation, and lazy expiry at query time.
//
// The lifecycle is PENDING -> CONFIRMING -> COMPLETED|FAILED, with
// PENDING -> EXPIRED as the only other exit. A session with an attached
// transaction never expires; it must resolve to success or failure.
type Orchestrator struct {
	adapters map[types.Network]chains.Adapter
	store    Store
	obs      *Observations
	cfg      types.Config
	log      logger.Logger
	rec      metrics.Recorder
	validate *validator.Validate
	now      func() time.Time
}

// NewOrchestrator wires the orchestrator to its collaborators. obs is the
// confirmation-depth view shared with the monitor.
func NewOrchestrator(
	adapters map[types.Network]chains.Adapter,
	store Store,
	obs *Observations,
	cfg types.Config,
	log logger.Logger,
	rec metrics.Recorder,
) *Orchestrator {
	cfg.Normalize()
	return &Orchestrator{
		adapters: adapters,
		store:    store,
		obs:      obs,
		cfg:      cfg,
		log:      log,
		rec:      rec,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (o *Orchestrator) adapter(network types.Network) (chains.Adapter, error) {
	a, ok := o.adapters[network]
	if !ok {
		return nil, types.NewError(types.ErrUnsupportedNetwork,
			"network %s is not supported", network)
	}
	return a, nil
}

// InitPaymentSession quotes the fiat amount in the requested currency and
// persists a new PENDING session. This is the sole creation path.
func (o *Orchestrator) InitPaymentSession(
	ctx context.Context,
	network types.Network,
	params types.InitParams,
) (*types.PaymentSession, error) {
	started := o.now()

	adapter, err := o.adapter(network)
	if err != nil {
		return nil, err
	}

	if err := o.validate.Struct(&params); err != nil {
		return nil, types.NewError(types.ErrInvalidParams, "invalid session params: %v", err)
	}
	if params.Payer != "" {
		if err := utils.ValidateAddress(network, params.Payer); err != nil {
			return nil, err
		}
	}

	quote, err := adapter.ConvertFiatToCrypto(ctx, params.FiatAmount, params.Symbol)
	if err != nil {
		return nil, err
	}
	currency, _ := adapter.Currency(params.Symbol)

	now := o.now()
	s := &types.PaymentSession{
		ID:               uuid.NewString(),
		UserID:           params.UserID,
		Network:          network.String(),
		ChainID:          adapter.ChainID(),
		Address:          o.cfg.ReceivingAddress,
		AmountDue:        quote.Amount,
		Currency:         currency,
		Rate:             quote.Rate,
		CreatedAt:        now,
		ExpiresAt:        now.Add(o.cfg.SessionTTL),
		MinConfirmations: adapter.MinConfirmations(),
		Status:           types.StatusPending,
		Payer:            params.Payer,
	}

	if err := o.store.Put(ctx, s); err != nil {
		return nil, err
	}

	o.rec.IncCounter(metrics.EventSessionCreated, map[string]string{"chain": s.Network})
	o.rec.ObserveLatency(metrics.OpInitSession, o.now().Sub(started), map[string]string{"chain": s.Network})
	o.log.Info("payment session created", map[string]any{
		"session":  s.ID,
		"chain":    s.Network,
		"currency": currency.Symbol,
		"fiat":     params.FiatAmount.String(),
		"due":      s.AmountDue.Amount,
	})

	return s, nil
}

// CheckPaymentStatus is the authoritative status query. Terminal sessions
// return immediately with no side effects. A PENDING session past its
// deadline is expired on this very call; a CONFIRMING session whose observed
// depth reached the chain minimum is completed.
func (o *Orchestrator) CheckPaymentStatus(ctx context.Context, sessionID string) (types.Status, error) {
	s, err := o.store.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}

	if s.Status.Terminal() {
		return s.Status, nil
	}

	if s.Expired(o.now()) {
		updated, err := o.store.UpdateIf(ctx, sessionID, types.StatusPending, func(p *types.PaymentSession) {
			p.Status = types.StatusExpired
		})
		if err != nil {
			// Lost the race to another transition; report whatever won.
			if types.IsCode(err, types.ErrConflict) {
				return o.currentStatus(ctx, sessionID)
			}
			return "", err
		}

		o.rec.IncCounter(metrics.EventSessionExpired, map[string]string{"chain": s.Network})
		o.log.Info("payment session expired", map[string]any{"session": sessionID})
		return updated.Status, nil
	}

	if s.Status == types.StatusConfirming {
		if depth, ok := o.obs.Get(sessionID); ok && depth >= s.MinConfirmations {
			updated, err := o.store.UpdateIf(ctx, sessionID, types.StatusConfirming, func(p *types.PaymentSession) {
				p.Status = types.StatusCompleted
			})
			if err != nil {
				if types.IsCode(err, types.ErrConflict) {
					return o.currentStatus(ctx, sessionID)
				}
				return "", err
			}

			o.obs.Forget(sessionID)
			o.rec.IncCounter(metrics.EventSessionCompleted, map[string]string{"chain": s.Network})
			o.log.Info("payment session completed", map[string]any{
				"session":       sessionID,
				"confirmations": depth,
			})
			return updated.Status, nil
		}
	}

	return s.Status, nil
}

// ConfirmPayment attaches a client-submitted transaction hash and moves the
// session from PENDING to CONFIRMING.
//
// The return value is a business outcome, not an exception: false means the
// confirmation was not accepted. A malformed hash leaves the session PENDING
// so the client may retry with a corrected hash; a storage failure during
// attachment fails the session. Only an unknown session id returns an error.
func (o *Orchestrator) ConfirmPayment(ctx context.Context, sessionID, txHash string) (bool, error) {
	s, err := o.store.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}

	if s.Status.Terminal() {
		return false, nil
	}
	if s.Status != types.StatusPending {
		// Re-confirmation is not idempotent: once a hash is accepted, a fresh
		// session is required. This prevents hash substitution after acceptance.
		return false, nil
	}

	if s.Expired(o.now()) {
		if _, err := o.store.UpdateIf(ctx, sessionID, types.StatusPending, func(p *types.PaymentSession) {
			p.Status = types.StatusExpired
		}); err == nil {
			o.rec.IncCounter(metrics.EventSessionExpired, map[string]string{"chain": s.Network})
		}
		return false, nil
	}

	if err := utils.ValidateTxHash(types.Network(s.Network), txHash); err != nil {
		// Expected client mistake: record it but keep the session payable.
		if _, uerr := o.store.UpdateIf(ctx, sessionID, types.StatusPending, func(p *types.PaymentSession) {
			p.LastError = err.Error()
		}); uerr != nil {
			o.log.Warn("could not record confirmation error", map[string]any{
				"session": sessionID,
				"error":   uerr.Error(),
			})
		}
		return false, nil
	}

	_, err = o.store.UpdateIf(ctx, sessionID, types.StatusPending, func(p *types.PaymentSession) {
		p.TxHash = txHash
		p.Status = types.StatusConfirming
		p.LastError = ""
	})
	if err != nil {
		if types.IsCode(err, types.ErrConflict) {
			// Another transition won; the caller may re-query and decide.
			return false, nil
		}

		// Attachment itself failed: the session is failed with the error
		// recorded, and the caller gets a negative outcome rather than a panic.
		o.failSession(ctx, sessionID, s.Network, err.Error())
		return false, nil
	}

	o.rec.IncCounter(metrics.EventSessionConfirming, map[string]string{"chain": s.Network})
	o.log.Info("payment confirmation accepted", map[string]any{
		"session": sessionID,
		"tx":      txHash,
	})
	return true, nil
}

// ListUserTransactions returns the user's full session history, newest first.
// Terminal sessions are never deleted, so this is the audit trail.
func (o *Orchestrator) ListUserTransactions(ctx context.Context, userID string) ([]*types.PaymentSession, error) {
	return o.store.ListByUser(ctx, userID)
}

func (o *Orchestrator) currentStatus(ctx context.Context, sessionID string) (types.Status, error) {
	s, err := o.store.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return s.Status, nil
}

func (o *Orchestrator) failSession(ctx context.Context, sessionID, network, reason string) {
	if _, err := o.store.UpdateIf(ctx, sessionID, types.StatusPending, func(p *types.PaymentSession) {
		p.Status = types.StatusFailed
		p.LastError = reason
	}); err != nil {
		o.log.Error("could not fail session", map[string]any{
			"session": sessionID,
			"error":   err.Error(),
		})
		return
	}

	o.rec.IncCounter(metrics.EventSessionFailed, map[string]string{"chain": network})
	o.log.Warn("payment session failed", map[string]any{
		"session": sessionID,
		"reason":  reason,
	})
}
