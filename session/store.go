// Package session contains the payment-session state machine: the durable
// store port, the orchestrator that drives explicit transitions, and the
// per-chain confirmation monitor.
package session

import (
	"context"

	"github.com/vitwit/payflow/types"
)

// Store is the durable keyed storage collaborator for payment sessions.
// Implementations must be safe for concurrent use and must never return
// internal pointers that callers could mutate.
//
// UpdateIf is the serialization point for the state machine: it applies the
// mutation only while the session's status still equals expect, and reports a
// CONFLICT error when another writer got there first. A lost race is
// retryable, never silently overwritten.
type Store interface {
	// Put persists a new session record.
	Put(ctx context.Context, s *types.PaymentSession) error

	// Get returns the session by id, or a SESSION_NOT_FOUND error.
	Get(ctx context.Context, id string) (*types.PaymentSession, error)

	// UpdateIf atomically mutates the session identified by id if its status
	// equals expect, returning the updated record. Returns CONFLICT when the
	// status moved underneath the caller and SESSION_NOT_FOUND for unknown ids.
	UpdateIf(ctx context.Context, id string, expect types.Status, mutate func(*types.PaymentSession)) (*types.PaymentSession, error)

	// ListByChainStatus returns every session on a network in a given state.
	ListByChainStatus(ctx context.Context, network string, status types.Status) ([]*types.PaymentSession, error)

	// ListByUser returns every session owned by a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]*types.PaymentSession, error)
}
