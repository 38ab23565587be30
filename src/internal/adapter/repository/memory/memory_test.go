package memory

import (
	"context"
	"testing"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerRepository(t *testing.T) {
	repo := NewCustomerRepository()
	ctx := context.Background()

	first, err := repo.Create(ctx, domain.Customer{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, domain.Customer{Name: "Grace", Email: "grace@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	got, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.Name)

	_, err = repo.GetByID(ctx, 3)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)

	ok, err := repo.CustomerExists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.CustomerExists(ctx, 9)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJournalAppendsAreIdempotent(t *testing.T) {
	j := NewJournal()
	ctx := context.Background()

	acct := domain.Account{ID: 1, CustomerID: 1, OpeningBalance: decimal.NewFromInt(10)}
	require.NoError(t, j.AppendAccount(ctx, acct))
	require.NoError(t, j.AppendAccount(ctx, acct))

	rec := domain.TransferRecord{TransferID: "t1", IdempotencyKey: "k1", FromAccountID: 1, ToAccountID: 2, Amount: decimal.NewFromInt(3)}
	require.NoError(t, j.AppendTransfer(ctx, rec))
	require.NoError(t, j.AppendTransfer(ctx, rec))

	accounts, transfers, err := j.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
	assert.Len(t, transfers, 1)

	accounts[0].ID = 99
	again, _, _ := j.Load(ctx)
	assert.Equal(t, int64(1), again[0].ID)
	assert.NoError(t, j.Close())
}
