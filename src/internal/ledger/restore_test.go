package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func journaled(t *testing.T) ([]domain.Account, []domain.TransferRecord) {
	t.Helper()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	accounts := []domain.Account{
		{ID: 3, CustomerID: 1, OpeningBalance: dec(t, "100"), CreatedAt: created},
		{ID: 7, CustomerID: 2, OpeningBalance: dec(t, "0"), CreatedAt: created},
	}
	transfers := []domain.TransferRecord{
		// journal order differs from apply order: the credit back arrives first
		{TransferID: "t2", IdempotencyKey: "k2", FromAccountID: 7, ToAccountID: 3, Amount: dec(t, "10"), Status: domain.TransferStatusApplied, Timestamp: created},
		{TransferID: "t1", IdempotencyKey: "k1", FromAccountID: 3, ToAccountID: 7, Amount: dec(t, "40"), Status: domain.TransferStatusApplied, Timestamp: created},
	}
	return accounts, transfers
}

func TestRestoreRebuildsBalancesAndKeys(t *testing.T) {
	l := newTestLedger(t)
	accounts, transfers := journaled(t)

	require.NoError(t, l.Restore(accounts, transfers))
	requireBalance(t, l, 3, "70")
	requireBalance(t, l, 7, "30")

	rec, replayed, err := l.Execute(context.Background(), 3, 7, dec(t, "40"), "k1")
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, "t1", rec.TransferID)
	requireBalance(t, l, 3, "70")

	next := openAccount(t, l, "1")
	assert.Equal(t, int64(8), next)
}

func TestRestoreRejectsInconsistentHistory(t *testing.T) {
	accounts, transfers := journaled(t)

	t.Run("unknown account", func(t *testing.T) {
		l := newTestLedger(t)
		bad := append([]domain.TransferRecord{}, transfers...)
		bad[0].ToAccountID = 99
		assert.ErrorIs(t, l.Restore(accounts, bad), domain.ErrAccountNotFound)
		assert.Empty(t, l.Accounts())
	})

	t.Run("negative result", func(t *testing.T) {
		l := newTestLedger(t)
		bad := append([]domain.TransferRecord{}, transfers...)
		bad[1].Amount = dec(t, "500")
		assert.ErrorIs(t, l.Restore(accounts, bad), domain.ErrInsufficientFunds)
		assert.Empty(t, l.Accounts())
	})

	t.Run("conflicting key", func(t *testing.T) {
		l := newTestLedger(t)
		bad := append([]domain.TransferRecord{}, transfers...)
		bad[1].IdempotencyKey = "k2"
		assert.ErrorIs(t, l.Restore(accounts, bad), domain.ErrDuplicateKey)
	})

	t.Run("not empty", func(t *testing.T) {
		l := newTestLedger(t)
		openAccount(t, l, "1")
		assert.ErrorIs(t, l.Restore(accounts, transfers), ErrNotEmpty)
	})
}

func TestRestoreSkipsRepeatedIdenticalRecords(t *testing.T) {
	l := newTestLedger(t)
	accounts, transfers := journaled(t)
	transfers = append(transfers, transfers[1])

	require.NoError(t, l.Restore(accounts, transfers))
	requireBalance(t, l, 3, "70")
}
