package session

import (
	"context"
	"time"

	"github.com/vitwit/payflow/types"
)

// Observer is the external blockchain-observation collaborator. Real
// deployments back it with per-chain RPC access; the engine only needs these
// two lookups.
type Observer interface {
	// Confirmations returns the confirmation depth of a transaction, or zero
	// if the transaction is not yet visible on the chain.
	Confirmations(ctx context.Context, network types.Network, txHash string) (int, error)

	// IncomingTransfers returns transfers received by the address since the
	// given instant.
	IncomingTransfers(ctx context.Context, network types.Network, address string, since time.Time) ([]types.Transfer, error)
}

// NoopObserver sees nothing. It is the default when no observer is wired,
// which keeps the monitor harmless in setups that only use explicit
// confirmation flows driven from the outside.
type NoopObserver struct{}

func (NoopObserver) Confirmations(context.Context, types.Network, string) (int, error) {
	return 0, nil
}

func (NoopObserver) IncomingTransfers(context.Context, types.Network, string, time.Time) ([]types.Transfer, error) {
	return nil, nil
}
