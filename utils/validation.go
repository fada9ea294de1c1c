// Package utils provides chain-aware validation helpers shared by the
// orchestrator and the monitor.
package utils

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	solana "github.com/gagliardetto/solana-go"

	"github.com/vitwit/payflow/types"
)

const evmHashLength = 66 // 0x + 32 bytes of hex

// ValidateTxHash checks that a transaction hash is well-formed for the given
// network. EVM chains use 0x-prefixed 32-byte hex hashes; Solana uses base58
// transaction signatures.
func ValidateTxHash(network types.Network, hash string) error {
	if hash == "" {
		return types.NewError(types.ErrInvalidParams, "transaction hash is empty")
	}

	switch {
	case network.IsEVM():
		if len(hash) != evmHashLength {
			return types.NewError(types.ErrInvalidParams,
				"EVM transaction hash must be %d characters, got %d", evmHashLength, len(hash))
		}
		if _, err := hexutil.Decode(hash); err != nil {
			return types.NewError(types.ErrInvalidParams,
				"EVM transaction hash is not valid hex: %v", err)
		}

	case network.IsSolana():
		if _, err := solana.SignatureFromBase58(hash); err != nil {
			return types.NewError(types.ErrInvalidParams,
				"Solana transaction signature is not valid base58: %v", err)
		}

	default:
		return types.NewError(types.ErrUnsupportedNetwork,
			"no hash validation for network %s", network)
	}

	return nil
}

// ValidateAddress checks that an address is well-formed for the given
// network. Empty addresses are rejected; token addresses and wallet
// addresses share the same format per chain.
func ValidateAddress(network types.Network, address string) error {
	if address == "" {
		return types.NewError(types.ErrInvalidParams, "address is empty")
	}

	switch {
	case network.IsEVM():
		if !common.IsHexAddress(address) {
			return types.NewError(types.ErrInvalidParams,
				"%s is not a valid EVM address", address)
		}

	case network.IsSolana():
		if _, err := solana.PublicKeyFromBase58(address); err != nil {
			return types.NewError(types.ErrInvalidParams,
				"%s is not a valid Solana address: %v", address, err)
		}

	default:
		return types.NewError(types.ErrUnsupportedNetwork,
			"no address validation for network %s", network)
	}

	return nil
}
