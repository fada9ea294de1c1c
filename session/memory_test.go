package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitwit/payflow/types"
)

func seedSession(id, userID, network string, status types.Status, createdAt time.Time) *types.PaymentSession {
	return &types.PaymentSession{
		ID:        id,
		UserID:    userID,
		Network:   network,
		Status:    status,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(time.Hour),
	}
}

func TestMemoryStorePutGetReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s := seedSession("s1", "u1", "ethereum", types.StatusPending, time.Now())
	require.NoError(t, store.Put(ctx, s))

	// Mutating the original after Put must not leak into the store.
	s.Status = types.StatusFailed

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, got.Status)

	// Nor does mutating what Get handed back.
	got.Status = types.StatusCompleted
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, again.Status)
}

func TestMemoryStorePutRejectsDuplicateID(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, seedSession("s1", "u1", "ethereum", types.StatusPending, time.Now())))

	err := store.Put(ctx, seedSession("s1", "u2", "bsc", types.StatusPending, time.Now()))
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrConflict))
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrSessionNotFound))
}

func TestMemoryStoreUpdateIf(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, seedSession("s1", "u1", "ethereum", types.StatusPending, time.Now())))

	updated, err := store.UpdateIf(ctx, "s1", types.StatusPending, func(p *types.PaymentSession) {
		p.Status = types.StatusConfirming
		p.TxHash = "0xabc"
	})
	require.NoError(t, err)
	assert.Equal(t, types.StatusConfirming, updated.Status)
	assert.Equal(t, "0xabc", updated.TxHash)

	// The expectation no longer holds; a second identical update loses.
	_, err = store.UpdateIf(ctx, "s1", types.StatusPending, func(p *types.PaymentSession) {
		p.Status = types.StatusExpired
	})
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrConflict))

	// The losing update left no trace.
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusConfirming, got.Status)

	_, err = store.UpdateIf(ctx, "missing", types.StatusPending, func(*types.PaymentSession) {})
	assert.True(t, types.IsCode(err, types.ErrSessionNotFound))
}

func TestMemoryStoreListByChainStatusOldestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, store.Put(ctx, seedSession("newer", "u1", "ethereum", types.StatusPending, base.Add(time.Minute))))
	require.NoError(t, store.Put(ctx, seedSession("older", "u1", "ethereum", types.StatusPending, base)))
	require.NoError(t, store.Put(ctx, seedSession("other-chain", "u1", "bsc", types.StatusPending, base)))
	require.NoError(t, store.Put(ctx, seedSession("other-status", "u1", "ethereum", types.StatusConfirming, base)))

	out, err := store.ListByChainStatus(ctx, "ethereum", types.StatusPending)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "older", out[0].ID)
	assert.Equal(t, "newer", out[1].ID)
}

func TestMemoryStoreListByUserNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, store.Put(ctx, seedSession("first", "u1", "ethereum", types.StatusCompleted, base)))
	require.NoError(t, store.Put(ctx, seedSession("second", "u1", "solana", types.StatusPending, base.Add(time.Minute))))
	require.NoError(t, store.Put(ctx, seedSession("stranger", "u2", "ethereum", types.StatusPending, base)))

	out, err := store.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "second", out[0].ID)
	assert.Equal(t, "first", out[1].ID)

	out, err = store.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, out)
}
