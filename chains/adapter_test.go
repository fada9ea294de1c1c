package chains

import (
	"context"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitwit/payflow/types"
)

type tableRates map[string]decimal.Decimal

func (t tableRates) Price(_ context.Context, symbol, fiat string) (decimal.Decimal, error) {
	price, ok := t[symbol+"/"+fiat]
	if !ok {
		return decimal.Zero, types.NewError(types.ErrPriceUnavailable, "no rate for %s/%s", symbol, fiat)
	}
	return price, nil
}

func fullRates() tableRates {
	return tableRates{
		"USD/EUR":   decimal.NewFromInt(1),
		"ETH/EUR":   decimal.NewFromInt(2000),
		"BNB/EUR":   decimal.NewFromInt(500),
		"MATIC/EUR": decimal.NewFromFloat(0.8),
		"AVAX/EUR":  decimal.NewFromInt(25),
		"SOL/EUR":   decimal.NewFromInt(125),
	}
}

func TestConvertStablecoinAppliesTwoPercentMargin(t *testing.T) {
	a, err := New(EthereumConfig(), tableRates{"USD/EUR": decimal.NewFromInt(1)})
	require.NoError(t, err)

	quote, err := a.ConvertFiatToCrypto(context.Background(), decimal.NewFromInt(100), "USDT")
	require.NoError(t, err)

	// 100 EUR at a 1.00 USD/EUR rate is 100 USDT, plus exactly 2%.
	assert.Equal(t, "102000000", quote.Amount.Amount)
	assert.Equal(t, "102 USDT", quote.Amount.Formatted)
	assert.True(t, quote.Amount.ValueEUR.Equal(decimal.NewFromInt(100)))
	assert.True(t, quote.Rate.Equal(decimal.NewFromInt(1)))
}

func TestConvertNativeAppliesFivePercentMargin(t *testing.T) {
	a, err := New(EthereumConfig(), tableRates{"ETH/EUR": decimal.NewFromInt(2000)})
	require.NoError(t, err)

	quote, err := a.ConvertFiatToCrypto(context.Background(), decimal.NewFromInt(100), "ETH")
	require.NoError(t, err)

	// 100 EUR / 2000 = 0.05 ETH, plus exactly 5% = 0.0525 ETH.
	assert.Equal(t, "52500000000000000", quote.Amount.Amount)
	assert.Equal(t, "0.0525 ETH", quote.Amount.Formatted)
	assert.True(t, quote.Rate.Equal(decimal.NewFromInt(2000)))
}

func TestConvertFloorsSmallestUnit(t *testing.T) {
	a, err := New(EthereumConfig(), tableRates{"USD/EUR": decimal.NewFromInt(7)})
	require.NoError(t, err)

	quote, err := a.ConvertFiatToCrypto(context.Background(), decimal.NewFromInt(100), "USDC")
	require.NoError(t, err)

	// 100/7*1.02 = 14.571428... USDC; floored at 6 decimals, never rounded up.
	assert.Equal(t, "14571428", quote.Amount.Amount)
}

func TestConvertUnsupportedCurrency(t *testing.T) {
	a, err := New(SolanaConfig(), fullRates())
	require.NoError(t, err)

	_, err = a.ConvertFiatToCrypto(context.Background(), decimal.NewFromInt(100), "DOGE")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrUnsupportedCurrency))
}

func TestConvertRejectsNonPositiveAmount(t *testing.T) {
	a, err := New(EthereumConfig(), fullRates())
	require.NoError(t, err)

	_, err = a.ConvertFiatToCrypto(context.Background(), decimal.Zero, "ETH")
	assert.True(t, types.IsCode(err, types.ErrInvalidAmount))

	_, err = a.ConvertFiatToCrypto(context.Background(), decimal.NewFromInt(-5), "ETH")
	assert.True(t, types.IsCode(err, types.ErrInvalidAmount))
}

func TestConvertRejectsBelowCurrencyMinimum(t *testing.T) {
	a, err := New(EthereumConfig(), fullRates())
	require.NoError(t, err)

	_, err = a.ConvertFiatToCrypto(context.Background(), decimal.NewFromFloat(0.5), "USDT")
	assert.True(t, types.IsCode(err, types.ErrInvalidAmount))
}

func TestConvertAllSupportedPairs(t *testing.T) {
	rates := fullRates()
	fiat := decimal.NewFromInt(50)
	one := decimal.NewFromInt(1)

	for _, cfg := range DefaultConfigs() {
		a, err := New(cfg, rates)
		require.NoError(t, err)

		for _, cur := range a.Currencies() {
			quote, err := a.ConvertFiatToCrypto(context.Background(), fiat, cur.Symbol)
			require.NoError(t, err, "%s on %s", cur.Symbol, cfg.Network)

			units, ok := new(big.Int).SetString(quote.Amount.Amount, 10)
			require.True(t, ok, "amount must be an integer string")
			assert.True(t, units.Sign() > 0)

			margin := nativeMargin
			if cur.Stablecoin {
				margin = stablecoinMargin
			}

			// Removing the margin must land back on the requested fiat amount
			// within flooring tolerance.
			implied := decimal.NewFromBigInt(units, -int32(cur.Decimals)).
				Mul(quote.Rate).
				Div(one.Add(margin))
			diff := implied.Sub(fiat).Abs()
			assert.True(t, diff.LessThan(decimal.NewFromFloat(0.01)),
				"%s on %s: implied %s vs %s", cur.Symbol, cfg.Network, implied, fiat)
		}
	}
}

func TestEstimateFeesTokenCostsTriple(t *testing.T) {
	a, err := New(EthereumConfig(), tableRates{"ETH/EUR": decimal.NewFromInt(2000)})
	require.NoError(t, err)

	nativeFees, err := a.EstimateFees(context.Background(), decimal.NewFromInt(100), "")
	require.NoError(t, err)

	usdt, _ := a.Currency("USDT")
	tokenFees, err := a.EstimateFees(context.Background(), decimal.NewFromInt(100), usdt.Address)
	require.NoError(t, err)

	nativeBase, _ := new(big.Int).SetString(nativeFees.BaseFee.Amount, 10)
	tokenBase, _ := new(big.Int).SetString(tokenFees.BaseFee.Amount, 10)
	assert.Equal(t, new(big.Int).Mul(nativeBase, big.NewInt(3)), tokenBase)

	// Max fee is double the base fee in both classes.
	nativeMax, _ := new(big.Int).SetString(nativeFees.MaxFee.Amount, 10)
	assert.Equal(t, new(big.Int).Mul(nativeBase, big.NewInt(2)), nativeMax)

	// Fees are priced in fiat too.
	assert.True(t, nativeFees.BaseFee.ValueEUR.GreaterThan(decimal.Zero))
}

func TestEstimatedConfirmationSeconds(t *testing.T) {
	rates := fullRates()

	eth, err := New(EthereumConfig(), rates)
	require.NoError(t, err)
	assert.Equal(t, 36, eth.EstimatedConfirmationSeconds()) // 3 x 12s blocks

	sol, err := New(SolanaConfig(), rates)
	require.NoError(t, err)
	assert.Equal(t, 32, sol.EstimatedConfirmationSeconds()) // 32 x 1s slots
}

func TestChainConstants(t *testing.T) {
	rates := fullRates()

	cases := []struct {
		cfg      Config
		chainID  int64
		native   string
		minConf  int
	}{
		{EthereumConfig(), 1, "ETH", 3},
		{BSCConfig(), 56, "BNB", 3},
		{PolygonConfig(), 137, "MATIC", 5},
		{AvalancheConfig(), 43114, "AVAX", 3},
		{ArbitrumConfig(), 42161, "ETH", 3},
		{SolanaConfig(), 101, "SOL", 32},
	}

	for _, tc := range cases {
		a, err := New(tc.cfg, rates)
		require.NoError(t, err)
		assert.Equal(t, tc.chainID, a.ChainID(), tc.cfg.Network)
		assert.Equal(t, tc.native, a.NativeSymbol(), tc.cfg.Network)
		assert.Equal(t, tc.minConf, a.MinConfirmations(), tc.cfg.Network)
	}
}

func TestNewRejectsConfigWithoutNative(t *testing.T) {
	cfg := EthereumConfig()
	cfg.Currencies = cfg.Currencies[1:] // drop ETH

	_, err := New(cfg, fullRates())
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrConfig))
}

func TestCurrencyLookupIsCaseInsensitive(t *testing.T) {
	a, err := New(EthereumConfig(), fullRates())
	require.NoError(t, err)

	cur, ok := a.Currency("usdt")
	require.True(t, ok)
	assert.Equal(t, "USDT", cur.Symbol)
}
