// Package chains implements the per-chain adapter the payment engine is built
// against. All six supported chains share one conversion and fee-estimation
// algorithm; they differ only in the data record they are constructed from.
package chains

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vitwit/payflow/types"
)

// Safety margins applied on top of a quote to absorb price movement between
// quoting and payment. Stablecoins are USD-pegged and move little; native
// assets are volatile and need the larger buffer.
var (
	stablecoinMargin = decimal.NewFromFloat(0.02)
	nativeMargin     = decimal.NewFromFloat(0.05)
)

// Token transfers invoke contract code and cost roughly three times a plain
// native transfer.
var tokenFeeMultiplier = decimal.NewFromInt(3)

// RateSource supplies a spot price for one unit of symbol expressed in fiat.
type RateSource interface {
	Price(ctx context.Context, symbol, fiat string) (decimal.Decimal, error)
}

// Quote is the result of a fiat-to-crypto conversion.
type Quote struct {
	Amount types.CryptoAmount

	// Rate is the fiat price of one unit of the quoted currency at quote time.
	Rate decimal.Decimal
}

// Adapter encapsulates everything the engine needs to know about one chain.
type Adapter interface {
	Network() types.Network
	ChainID() int64
	NativeSymbol() string
	MinConfirmations() int
	EstimatedConfirmationSeconds() int

	// Currencies lists every currency payable on this chain.
	Currencies() []types.CurrencyInfo

	// Currency looks a currency up by symbol (case-insensitive).
	Currency(symbol string) (types.CurrencyInfo, bool)

	// ConvertFiatToCrypto converts a EUR amount into the given currency,
	// applying the currency-class safety margin and flooring to the smallest
	// on-chain unit.
	ConvertFiatToCrypto(ctx context.Context, fiatAmount decimal.Decimal, symbol string) (Quote, error)

	// EstimateFees estimates the network fee for paying fiatAmount in the
	// currency at currencyAddress (empty for the native asset).
	EstimateFees(ctx context.Context, fiatAmount decimal.Decimal, currencyAddress string) (types.FeeEstimate, error)
}

// Config is the per-chain data record an adapter is built from.
type Config struct {
	Network      types.Network
	ChainID      int64
	NativeSymbol string

	// MinConfirmations is the depth at which a transaction is final on this
	// chain. Solana's probabilistic-then-final model needs far more than the
	// EVM chains.
	MinConfirmations int

	// BlockSeconds is the average time between blocks.
	BlockSeconds float64

	// BaseNetworkFee is the indicative cost of a plain native transfer,
	// expressed in native units.
	BaseNetworkFee decimal.Decimal

	Currencies []types.CurrencyInfo
}

type adapter struct {
	cfg    Config
	rates  RateSource
	bySym  map[string]types.CurrencyInfo
	native types.CurrencyInfo
}

// New builds an adapter from a chain data record. It fails if the record has
// no native currency or duplicates a symbol.
func New(cfg Config, rates RateSource) (Adapter, error) {
	a := &adapter{
		cfg:   cfg,
		rates: rates,
		bySym: make(map[string]types.CurrencyInfo, len(cfg.Currencies)),
	}

	for _, cur := range cfg.Currencies {
		key := strings.ToUpper(cur.Symbol)
		if _, dup := a.bySym[key]; dup {
			return nil, types.NewError(types.ErrConfig,
				"duplicate currency %s on %s", cur.Symbol, cfg.Network)
		}
		a.bySym[key] = cur
		if cur.Native {
			a.native = cur
		}
	}

	if a.native.Symbol == "" {
		return nil, types.NewError(types.ErrConfig,
			"chain %s has no native currency", cfg.Network)
	}

	return a, nil
}

func (a *adapter) Network() types.Network { return a.cfg.Network }
func (a *adapter) ChainID() int64         { return a.cfg.ChainID }
func (a *adapter) NativeSymbol() string   { return a.cfg.NativeSymbol }
func (a *adapter) MinConfirmations() int  { return a.cfg.MinConfirmations }

func (a *adapter) EstimatedConfirmationSeconds() int {
	return int(math.Ceil(a.cfg.BlockSeconds * float64(a.cfg.MinConfirmations)))
}

func (a *adapter) Currencies() []types.CurrencyInfo {
	out := make([]types.CurrencyInfo, len(a.cfg.Currencies))
	copy(out, a.cfg.Currencies)
	return out
}

func (a *adapter) Currency(symbol string) (types.CurrencyInfo, bool) {
	cur, ok := a.bySym[strings.ToUpper(symbol)]
	return cur, ok
}

// ConvertFiatToCrypto converts via the USD rate for stablecoins (assumed
// pegged 1:1) and via the asset's own spot rate otherwise. The resulting
// smallest-unit amount is floored, never rounded up.
func (a *adapter) ConvertFiatToCrypto(
	ctx context.Context,
	fiatAmount decimal.Decimal,
	symbol string,
) (Quote, error) {
	cur, ok := a.Currency(symbol)
	if !ok {
		return Quote{}, types.NewError(types.ErrUnsupportedCurrency,
			"currency %s is not supported on %s", symbol, a.cfg.Network)
	}

	if fiatAmount.LessThanOrEqual(decimal.Zero) {
		return Quote{}, types.NewError(types.ErrInvalidAmount,
			"fiat amount must be positive, got %s", fiatAmount)
	}
	if fiatAmount.LessThan(cur.MinFiatAmount) {
		return Quote{}, types.NewError(types.ErrInvalidAmount,
			"fiat amount %s is below the %s minimum of %s",
			fiatAmount, cur.Symbol, cur.MinFiatAmount)
	}

	rate, margin, err := a.rateFor(ctx, cur)
	if err != nil {
		return Quote{}, err
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return Quote{}, types.NewError(types.ErrPriceUnavailable,
			"no usable %s rate for %s", "EUR", cur.Symbol)
	}

	cryptoAmount := fiatAmount.Div(rate).Mul(decimal.NewFromInt(1).Add(margin))
	units := toSmallestUnit(cryptoAmount, cur.Decimals)

	return Quote{
		Amount: types.CryptoAmount{
			Amount:    units.String(),
			Formatted: FormatUnits(units, cur),
			ValueEUR:  fiatAmount,
		},
		Rate: rate,
	}, nil
}

// rateFor resolves the EUR rate and margin class for a currency. Stablecoins
// quote against the USD/EUR rate; everything else against its own symbol.
func (a *adapter) rateFor(ctx context.Context, cur types.CurrencyInfo) (decimal.Decimal, decimal.Decimal, error) {
	if cur.Stablecoin {
		rate, err := a.rates.Price(ctx, "USD", "EUR")
		if err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("quoting %s on %s: %w", cur.Symbol, a.cfg.Network, err)
		}
		return rate, stablecoinMargin, nil
	}

	rate, err := a.rates.Price(ctx, cur.Symbol, "EUR")
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("quoting %s on %s: %w", cur.Symbol, a.cfg.Network, err)
	}
	return rate, nativeMargin, nil
}

// EstimateFees prices a transfer in native units and in fiat at the current
// oracle rate. currencyAddress selects the fee class: empty means a native
// transfer, anything else a token contract call.
func (a *adapter) EstimateFees(
	ctx context.Context,
	fiatAmount decimal.Decimal,
	currencyAddress string,
) (types.FeeEstimate, error) {
	if fiatAmount.LessThanOrEqual(decimal.Zero) {
		return types.FeeEstimate{}, types.NewError(types.ErrInvalidAmount,
			"fiat amount must be positive, got %s", fiatAmount)
	}

	baseFee := a.cfg.BaseNetworkFee
	if currencyAddress != "" {
		baseFee = baseFee.Mul(tokenFeeMultiplier)
	}
	maxFee := baseFee.Mul(decimal.NewFromInt(2))

	nativeRate, err := a.rates.Price(ctx, a.cfg.NativeSymbol, "EUR")
	if err != nil {
		return types.FeeEstimate{}, fmt.Errorf("pricing fees on %s: %w", a.cfg.Network, err)
	}

	return types.FeeEstimate{
		BaseFee:          a.nativeAmount(baseFee, nativeRate),
		MaxFee:           a.nativeAmount(maxFee, nativeRate),
		EstimatedSeconds: a.EstimatedConfirmationSeconds(),
	}, nil
}

func (a *adapter) nativeAmount(amount, rate decimal.Decimal) types.CryptoAmount {
	units := toSmallestUnit(amount, a.native.Decimals)
	return types.CryptoAmount{
		Amount:    units.String(),
		Formatted: FormatUnits(units, a.native),
		ValueEUR:  amount.Mul(rate).Round(2),
	}
}

// toSmallestUnit scales a decimal amount to the currency's base unit and
// floors it. Rounding up would promise more than the payer sends.
func toSmallestUnit(amount decimal.Decimal, decimals int) *big.Int {
	scaled := amount.Shift(int32(decimals)).Floor()
	return scaled.BigInt()
}

// FormatUnits renders a smallest-unit amount as a human string, e.g.
// "0.05231 ETH".
func FormatUnits(units *big.Int, cur types.CurrencyInfo) string {
	dec := decimal.NewFromBigInt(units, -int32(cur.Decimals))
	return dec.String() + " " + cur.Symbol
}
