package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/config"
	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestOpenBackendRejectsUnknownDriver(t *testing.T) {
	_, err := openBackend(context.Background(), config.Config{JournalDriver: "kafka"}, false)
	assert.Error(t, err)
}

func TestRestoreLedgerFromSQLiteJournal(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{
		JournalDriver: config.JournalSQLite,
		SQLitePath:    filepath.Join(t.TempDir(), "ledger.db"),
	}

	be, err := openBackend(ctx, cfg, false)
	require.NoError(t, err)
	customer, err := be.customers.Create(ctx, domain.Customer{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, be.journal.AppendAccount(ctx, domain.Account{ID: 1, CustomerID: customer.ID, OpeningBalance: decimal.NewFromInt(100), CreatedAt: now}))
	require.NoError(t, be.journal.AppendAccount(ctx, domain.Account{ID: 2, CustomerID: customer.ID, OpeningBalance: decimal.NewFromInt(50), CreatedAt: now}))
	require.NoError(t, be.journal.AppendTransfer(ctx, domain.TransferRecord{
		TransferID:     "t-1",
		IdempotencyKey: "k1",
		FromAccountID:  1,
		ToAccountID:    2,
		Amount:         decimal.NewFromInt(40),
		Status:         domain.TransferStatusApplied,
		Timestamp:      now,
	}))
	require.NoError(t, be.journal.Close())

	be, err = openBackend(ctx, cfg, false)
	require.NoError(t, err)
	defer be.journal.Close()

	core, err := restoreLedger(ctx, cfg, be)
	require.NoError(t, err)

	balance, err := core.GetBalance(1)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(60)))

	rec, _, err := core.Execute(ctx, 1, 2, decimal.NewFromInt(40), "k1")
	require.NoError(t, err)
	assert.Equal(t, "t-1", rec.TransferID)

	id, err := core.CreateAccount(ctx, customer.ID, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
}
