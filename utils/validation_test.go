package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitwit/payflow/types"
)

func TestValidateTxHashEVM(t *testing.T) {
	valid := "0x2e8818a233e2e802c953aed477858957ff85a4b91e047181e17ef4b096108e66"
	assert.NoError(t, ValidateTxHash(types.NetworkEthereum, valid))
	assert.NoError(t, ValidateTxHash(types.NetworkArbitrum, valid))

	assert.Error(t, ValidateTxHash(types.NetworkEthereum, ""))
	assert.Error(t, ValidateTxHash(types.NetworkEthereum, "0xdeadbeef"), "too short")
	assert.Error(t, ValidateTxHash(types.NetworkEthereum,
		"0xZZ8818a233e2e802c953aed477858957ff85a4b91e047181e17ef4b096108e66"), "not hex")
	assert.Error(t, ValidateTxHash(types.NetworkEthereum,
		"2e8818a233e2e802c953aed477858957ff85a4b91e047181e17ef4b096108e6600"), "missing 0x prefix")
}

func TestValidateTxHashSolana(t *testing.T) {
	// 64-byte base58 signature.
	valid := "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW"
	assert.NoError(t, ValidateTxHash(types.NetworkSolana, valid))

	assert.Error(t, ValidateTxHash(types.NetworkSolana, "not-base58-0OIl"))
	assert.Error(t, ValidateTxHash(types.NetworkSolana, ""))
}

func TestValidateTxHashUnknownNetwork(t *testing.T) {
	err := ValidateTxHash(types.Network("tron"),
		"0x2e8818a233e2e802c953aed477858957ff85a4b91e047181e17ef4b096108e66")
	assert.True(t, types.IsCode(err, types.ErrUnsupportedNetwork))
}

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, ValidateAddress(types.NetworkEthereum, "0x384Aa214be0B279cbf211e9b2C992d8633F77848"))
	assert.NoError(t, ValidateAddress(types.NetworkSolana, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"))

	assert.Error(t, ValidateAddress(types.NetworkEthereum, ""))
	assert.Error(t, ValidateAddress(types.NetworkEthereum, "not-an-address"))
	assert.Error(t, ValidateAddress(types.NetworkSolana, "0x384Aa214be0B279cbf211e9b2C992d8633F77848"))
	assert.True(t, types.IsCode(
		ValidateAddress(types.Network("tron"), "anything"), types.ErrUnsupportedNetwork))
}
