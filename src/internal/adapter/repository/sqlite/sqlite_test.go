package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "ledger.db")
}

func TestJournalSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := openTestDB(t)

	db, err := Open(ctx, path)
	require.NoError(t, err)
	journal := NewJournal(db)

	created := time.Date(2026, 10, 14, 8, 30, 0, 123456789, time.UTC)
	require.NoError(t, journal.AppendAccount(ctx, domain.Account{ID: 1, CustomerID: 1, OpeningBalance: decimal.RequireFromString("100.50"), CreatedAt: created}))
	require.NoError(t, journal.AppendAccount(ctx, domain.Account{ID: 2, CustomerID: 1, OpeningBalance: decimal.Zero, CreatedAt: created}))

	rec := domain.TransferRecord{
		TransferID:     "t-1",
		IdempotencyKey: "k1",
		FromAccountID:  1,
		ToAccountID:    2,
		Amount:         decimal.RequireFromString("40.25"),
		Status:         domain.TransferStatusApplied,
		Timestamp:      created,
	}
	require.NoError(t, journal.AppendTransfer(ctx, rec))
	// same key, different transfer id: ignored
	dup := rec
	dup.TransferID = "t-2"
	require.NoError(t, journal.AppendTransfer(ctx, dup))
	require.NoError(t, journal.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	journal = NewJournal(db)
	defer journal.Close()

	accounts, transfers, err := journal.Load(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.True(t, accounts[0].OpeningBalance.Equal(decimal.RequireFromString("100.5")))
	assert.True(t, accounts[0].CreatedAt.Equal(created))
	require.Len(t, transfers, 1)
	assert.True(t, rec.Equal(transfers[0]))
}

func TestCustomerRepository(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, openTestDB(t))
	require.NoError(t, err)
	defer db.Close()

	repo := NewCustomerRepository(db)
	c, err := repo.Create(ctx, domain.Customer{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)

	_, err = repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)

	ok, err := repo.CustomerExists(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.CustomerExists(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)
}
