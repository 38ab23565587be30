package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngineFixture(t *testing.T, strict bool) (*TransferEngine, *IdempotencyRegistry, *AccountStore) {
	t.Helper()
	locks := NewLockManager()
	store := NewAccountStore(locks, customerSet{1: true}, nil)
	registry := NewIdempotencyRegistry()
	fixed := time.Date(2026, 10, 14, 9, 0, 0, 0, time.FixedZone("WAT", 3600))
	engine := NewTransferEngine(store, locks, registry, EngineOptions{
		Clock:         func() time.Time { return fixed },
		NewTransferID: func() string { return "transfer-1" },
		Strict:        strict,
	})
	return engine, registry, store
}

func TestEngineRecordUsesInjectedClockAndID(t *testing.T) {
	engine, registry, store := newEngineFixture(t, false)
	ctx := context.Background()
	a, err := store.CreateAccount(ctx, 1, dec(t, "50"))
	require.NoError(t, err)
	b, err := store.CreateAccount(ctx, 1, dec(t, "0"))
	require.NoError(t, err)

	rec, err := engine.Transfer(ctx, a, b, dec(t, "20"), " key-1 ")
	require.NoError(t, err)
	assert.Equal(t, "transfer-1", rec.TransferID)
	assert.Equal(t, "key-1", rec.IdempotencyKey)
	assert.Equal(t, time.UTC, rec.Timestamp.Location())
	assert.True(t, rec.Timestamp.Equal(time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)))

	stored, ok := registry.Lookup("key-1")
	require.True(t, ok)
	assert.True(t, rec.Equal(stored))
}

func TestEngineDuplicateKeyPanicsInStrictMode(t *testing.T) {
	engine, registry, _ := newEngineFixture(t, true)
	require.NoError(t, registry.Record("k", sampleRecord("t-1")))

	assert.Panics(t, func() {
		engine.record("k", sampleRecord("t-2"))
	})
}

func TestEngineDuplicateKeyKeepsExistingRecord(t *testing.T) {
	engine, registry, _ := newEngineFixture(t, false)
	require.NoError(t, registry.Record("k", sampleRecord("t-1")))

	got := engine.record("k", sampleRecord("t-2"))
	assert.Equal(t, "t-1", got.TransferID)
}

func TestApplyDeltaRejectsOverdraft(t *testing.T) {
	_, _, store := newEngineFixture(t, false)
	id, err := store.CreateAccount(context.Background(), 1, dec(t, "5"))
	require.NoError(t, err)

	release := store.locks.AcquireSingle(id)
	_, err = store.applyDelta(id, dec(t, "-6"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	next, err := store.applyDelta(id, dec(t, "-5"))
	require.NoError(t, err)
	assert.True(t, next.IsZero())
	release()

	_, err = store.applyDelta(99, dec(t, "1"))
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestRecordedTimesKeepMicrosecondPrecision(t *testing.T) {
	locks := NewLockManager()
	now := time.Date(2026, 10, 14, 9, 0, 0, 123456789, time.FixedZone("WAT", 3600))
	clock := func() time.Time { return now }
	store := NewAccountStore(locks, customerSet{1: true}, clock)
	engine := NewTransferEngine(store, locks, NewIdempotencyRegistry(), EngineOptions{Clock: clock})
	want := time.Date(2026, 10, 14, 8, 0, 0, 123456000, time.UTC)

	ctx := context.Background()
	a, err := store.CreateAccount(ctx, 1, dec(t, "10"))
	require.NoError(t, err)
	b, err := store.CreateAccount(ctx, 1, dec(t, "0"))
	require.NoError(t, err)

	acct, err := store.Account(a)
	require.NoError(t, err)
	assert.True(t, acct.CreatedAt.Equal(want), "created_at=%s", acct.CreatedAt)
	assert.Equal(t, time.UTC, acct.CreatedAt.Location())

	rec, err := engine.Transfer(ctx, a, b, dec(t, "1"), "key-us")
	require.NoError(t, err)
	assert.True(t, rec.Timestamp.Equal(want), "timestamp=%s", rec.Timestamp)
	assert.Zero(t, rec.Timestamp.Nanosecond()%int(time.Microsecond))
}

func TestWaiterLeavesWhenItsContextEnds(t *testing.T) {
	engine, _, store := newEngineFixture(t, false)
	ctx := context.Background()
	a, err := store.CreateAccount(ctx, 1, dec(t, "10"))
	require.NoError(t, err)
	b, err := store.CreateAccount(ctx, 1, dec(t, "0"))
	require.NoError(t, err)

	release := engine.locks.AcquireOrdered(a, b)

	type result struct {
		replayed bool
		err      error
	}
	leader := make(chan result, 1)
	go func() {
		_, replayed, err := engine.Execute(ctx, a, b, dec(t, "4"), "held")
		leader <- result{replayed, err}
	}()
	// let the leader start the flight and block on the account locks
	time.Sleep(50 * time.Millisecond)

	waitCtx, cancel := context.WithCancel(ctx)
	waiter := make(chan error, 1)
	go func() {
		_, _, err := engine.Execute(waitCtx, a, b, dec(t, "4"), "held")
		waiter <- err
	}()
	cancel()

	select {
	case err := <-waiter:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("waiter did not return after its context was cancelled")
	}

	release()
	select {
	case res := <-leader:
		require.NoError(t, res.err)
		assert.False(t, res.replayed)
	case <-time.After(time.Second):
		t.Fatal("leader did not finish")
	}
	bal, err := store.GetBalance(b)
	require.NoError(t, err)
	assert.True(t, bal.Equal(dec(t, "4")))
}
