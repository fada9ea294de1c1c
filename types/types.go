package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a payment session.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirming Status = "CONFIRMING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusExpired    Status = "EXPIRED"
)

// Terminal reports whether no further transition may leave this state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusExpired
}

func (s Status) String() string {
	return string(s)
}

// CurrencyInfo describes a payable currency on a specific chain.
// Instances are immutable and defined per chain at adapter construction.
type CurrencyInfo struct {
	// Symbol of the currency, unique within its chain (e.g. "ETH", "USDT").
	Symbol string `json:"symbol"`

	// Address of the token contract or mint. Empty for the chain's native asset.
	Address string `json:"address,omitempty"`

	// Name is the human display name.
	Name string `json:"name"`

	// Decimals is the precision of the smallest on-chain unit.
	Decimals int `json:"decimals"`

	// Native marks the chain's base asset.
	Native bool `json:"native"`

	// Stablecoin marks USD-pegged tokens, which take the smaller safety margin.
	Stablecoin bool `json:"stablecoin"`

	// MinFiatAmount is the smallest fiat amount payable in this currency.
	MinFiatAmount decimal.Decimal `json:"minFiatAmount"`
}

// CryptoAmount is an amount of a specific currency at a specific quote.
//
// Amount is an integer count of the currency's smallest unit, represented as
// a string because several chains exceed the range of int64 and float math
// loses precision.
type CryptoAmount struct {
	// Amount in smallest units (wei, lamports, token base units).
	Amount string `json:"amount"`

	// Formatted human-readable representation, e.g. "0.052310 ETH".
	Formatted string `json:"formatted"`

	// ValueEUR is the fiat value this amount represented at quote time.
	ValueEUR decimal.Decimal `json:"valueEUR"`
}

// FeeEstimate carries an indicative network fee for a transfer.
// Estimates are recomputed on every request and never persisted.
type FeeEstimate struct {
	BaseFee CryptoAmount `json:"baseFee"`
	MaxFee  CryptoAmount `json:"maxFee"`

	// EstimatedSeconds until the transfer is expected to reach finality.
	EstimatedSeconds int `json:"estimatedSeconds"`
}

// PaymentSession is a single quoted, time-bounded payment request.
//
// Status only ever moves forward through the lifecycle, ExpiresAt is fixed at
// creation, and AmountDue.ValueEUR stays at the fiat price agreed at creation
// regardless of later oracle drift. Terminal sessions are kept for history.
type PaymentSession struct {
	ID      string `json:"id"`
	UserID  string `json:"userId,omitempty"`
	Network string `json:"network"`
	ChainID int64  `json:"chainId"`

	// Address funds must be sent to. One canonical address is shared across
	// all chains; see the reconciliation caveat in DESIGN.md.
	Address string `json:"address"`

	AmountDue CryptoAmount    `json:"amountDue"`
	Currency  CurrencyInfo    `json:"currency"`
	Rate      decimal.Decimal `json:"rate"`

	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`

	MinConfirmations int    `json:"minConfirmations"`
	Status           Status `json:"status"`

	// TxHash is attached once the payer submits or the monitor matches a
	// transaction. Empty until then.
	TxHash string `json:"txHash,omitempty"`

	// Payer is the sending address the client announced, when it did.
	// The monitor uses it to match unsolicited inbound transfers.
	Payer string `json:"payer,omitempty"`

	// LastError records why the session failed, if it did.
	LastError string `json:"lastError,omitempty"`
}

// Expired reports whether the session has passed its deadline at the given
// instant. Only PENDING sessions expire; a session with an attached
// transaction must resolve to COMPLETED or FAILED instead.
func (s *PaymentSession) Expired(now time.Time) bool {
	return s.Status == StatusPending && now.After(s.ExpiresAt)
}

// InitParams are the client-supplied inputs to session creation.
type InitParams struct {
	// UserID owning the session, used for transaction history queries.
	UserID string `json:"userId" validate:"required"`

	// FiatAmount to collect, in EUR.
	FiatAmount decimal.Decimal `json:"fiatAmount" validate:"required"`

	// Symbol of the currency the payer chose, e.g. "USDT".
	Symbol string `json:"symbol" validate:"required"`

	// Payer optionally announces the address funds will come from, enabling
	// the monitor to reconcile the payment without an explicit confirmation.
	Payer string `json:"payer,omitempty"`
}

// Transfer is an observed inbound transfer to the receiving address, as
// reported by a chain observer.
type Transfer struct {
	TxHash string          `json:"txHash"`
	From   string          `json:"from"`
	Symbol string          `json:"symbol"`
	Amount decimal.Decimal `json:"amount"`
	SeenAt time.Time       `json:"seenAt"`
}

// NetworkInfo identifies a supported network to API consumers.
type NetworkInfo struct {
	ID      string `json:"id"`
	ChainID int64  `json:"chainId"`
}

// Config contains engine-wide configuration.
type Config struct {
	// ReceivingAddress is the canonical address sessions direct payment to.
	ReceivingAddress string `json:"receivingAddress" yaml:"receiving_address" validate:"required"`

	// SessionTTL bounds how long a PENDING session stays payable.
	SessionTTL time.Duration `json:"sessionTTL" yaml:"session_ttl"`

	// OracleTTL bounds spot price cache freshness.
	OracleTTL time.Duration `json:"oracleTTL" yaml:"oracle_ttl"`

	// MonitorInterval is the per-chain polling cadence.
	MonitorInterval time.Duration `json:"monitorInterval" yaml:"monitor_interval"`

	// ConfirmingCeiling is the reliability backstop after which a CONFIRMING
	// session that never reached its confirmation depth is failed.
	ConfirmingCeiling time.Duration `json:"confirmingCeiling" yaml:"confirming_ceiling"`

	LogLevel      string `json:"logLevel,omitempty" yaml:"log_level"`
	EnableMetrics bool   `json:"enableMetrics,omitempty" yaml:"enable_metrics"`
}

// Defaults used when a Config field is zero.
const (
	DefaultSessionTTL        = time.Hour
	DefaultOracleTTL         = 5 * time.Minute
	DefaultMonitorInterval   = 30 * time.Second
	DefaultConfirmingCeiling = 24 * time.Hour
)

// Normalize fills zero fields with defaults.
func (c *Config) Normalize() {
	if c.SessionTTL <= 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if c.OracleTTL <= 0 {
		c.OracleTTL = DefaultOracleTTL
	}
	if c.MonitorInterval <= 0 {
		c.MonitorInterval = DefaultMonitorInterval
	}
	if c.ConfirmingCeiling <= 0 {
		c.ConfirmingCeiling = DefaultConfirmingCeiling
	}
}
