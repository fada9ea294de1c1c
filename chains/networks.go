package chains

import (
	"github.com/shopspring/decimal"

	"github.com/vitwit/payflow/types"
)

// Per-chain data records. The algorithmic behavior lives entirely in
// adapter.go; everything here is constants.

func stable(symbol, name, address string, decimals int) types.CurrencyInfo {
	return types.CurrencyInfo{
		Symbol:        symbol,
		Address:       address,
		Name:          name,
		Decimals:      decimals,
		Stablecoin:    true,
		MinFiatAmount: decimal.NewFromInt(1),
	}
}

func native(symbol, name string, decimals int) types.CurrencyInfo {
	return types.CurrencyInfo{
		Symbol:        symbol,
		Name:          name,
		Decimals:      decimals,
		Native:        true,
		MinFiatAmount: decimal.NewFromInt(1),
	}
}

// EthereumConfig is the mainnet Ethereum data record.
func EthereumConfig() Config {
	return Config{
		Network:          types.NetworkEthereum,
		ChainID:          1,
		NativeSymbol:     "ETH",
		MinConfirmations: 3,
		BlockSeconds:     12,
		BaseNetworkFee:   decimal.NewFromFloat(0.00042),
		Currencies: []types.CurrencyInfo{
			native("ETH", "Ether", 18),
			stable("USDT", "Tether USD", "0xdAC17F958D2ee523a2206206994597C13D831ec7", 6),
			stable("USDC", "USD Coin", "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", 6),
			stable("DAI", "Dai Stablecoin", "0x6B175474E89094C44Da98b954EedeAC495271d0F", 18),
		},
	}
}

// BSCConfig is the BNB Smart Chain data record.
func BSCConfig() Config {
	return Config{
		Network:          types.NetworkBSC,
		ChainID:          56,
		NativeSymbol:     "BNB",
		MinConfirmations: 3,
		BlockSeconds:     3,
		BaseNetworkFee:   decimal.NewFromFloat(0.0003),
		Currencies: []types.CurrencyInfo{
			native("BNB", "BNB", 18),
			stable("USDT", "Tether USD", "0x55d398326f99059fF775485246999027B3197955", 18),
			stable("USDC", "USD Coin", "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", 18),
			stable("BUSD", "Binance USD", "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56", 18),
		},
	}
}

// PolygonConfig is the Polygon PoS data record. Polygon reorgs more often
// than the other EVM chains, hence the deeper confirmation requirement.
func PolygonConfig() Config {
	return Config{
		Network:          types.NetworkPolygon,
		ChainID:          137,
		NativeSymbol:     "MATIC",
		MinConfirmations: 5,
		BlockSeconds:     2,
		BaseNetworkFee:   decimal.NewFromFloat(0.01),
		Currencies: []types.CurrencyInfo{
			native("MATIC", "Polygon", 18),
			stable("USDT", "Tether USD", "0xc2132D05D31c914a87C6611C10748AEb04B58e8F", 6),
			stable("USDC", "USD Coin", "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174", 6),
		},
	}
}

// AvalancheConfig is the Avalanche C-Chain data record.
func AvalancheConfig() Config {
	return Config{
		Network:          types.NetworkAvalanche,
		ChainID:          43114,
		NativeSymbol:     "AVAX",
		MinConfirmations: 3,
		BlockSeconds:     2,
		BaseNetworkFee:   decimal.NewFromFloat(0.001),
		Currencies: []types.CurrencyInfo{
			native("AVAX", "Avalanche", 18),
			stable("USDT", "TetherToken", "0x9702230A8Ea53601f5cD2dc00fDBc13d4dF4A8c7", 6),
			stable("USDC", "USD Coin", "0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E", 6),
		},
	}
}

// ArbitrumConfig is the Arbitrum One data record.
func ArbitrumConfig() Config {
	return Config{
		Network:          types.NetworkArbitrum,
		ChainID:          42161,
		NativeSymbol:     "ETH",
		MinConfirmations: 3,
		BlockSeconds:     1,
		BaseNetworkFee:   decimal.NewFromFloat(0.0001),
		Currencies: []types.CurrencyInfo{
			native("ETH", "Ether", 18),
			stable("USDT", "Tether USD", "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9", 6),
			stable("USDC", "USD Coin", "0xaf88d065e77c8cC2239327C5EDb3A432268e5831", 6),
		},
	}
}

// SolanaConfig is the Solana mainnet-beta data record. Confirmation depth 32
// matches the rooted-slot distance at which Solana treats a block as final.
func SolanaConfig() Config {
	return Config{
		Network:          types.NetworkSolana,
		ChainID:          101,
		NativeSymbol:     "SOL",
		MinConfirmations: 32,
		BlockSeconds:     1,
		BaseNetworkFee:   decimal.NewFromFloat(0.000005),
		Currencies: []types.CurrencyInfo{
			native("SOL", "Solana", 9),
			stable("USDT", "Tether USD", "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", 6),
			stable("USDC", "USD Coin", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", 6),
		},
	}
}

// DefaultConfigs lists the data records for every shipped chain.
func DefaultConfigs() []Config {
	return []Config{
		EthereumConfig(),
		BSCConfig(),
		PolygonConfig(),
		AvalancheConfig(),
		ArbitrumConfig(),
		SolanaConfig(),
	}
}

// DefaultAdapters builds adapters for every shipped chain, keyed by network.
func DefaultAdapters(rates RateSource) (map[types.Network]Adapter, error) {
	out := make(map[types.Network]Adapter)
	for _, cfg := range DefaultConfigs() {
		a, err := New(cfg, rates)
		if err != nil {
			return nil, err
		}
		out[cfg.Network] = a
	}
	return out, nil
}
