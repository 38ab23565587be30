package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type customerSet map[int64]bool

func (c customerSet) CustomerExists(_ context.Context, id int64) (bool, error) {
	return c[id], nil
}

func dec(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(raw)
	require.NoError(t, err)
	return d
}

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := New(Options{Customers: customerSet{1: true, 2: true}})
	require.NoError(t, err)
	return l
}

func openAccount(t *testing.T, l *Ledger, balance string) int64 {
	t.Helper()
	id, err := l.CreateAccount(context.Background(), 1, dec(t, balance))
	require.NoError(t, err)
	return id
}

func requireBalance(t *testing.T, l *Ledger, id int64, want string) {
	t.Helper()
	got, err := l.GetBalance(id)
	require.NoError(t, err)
	require.Truef(t, got.Equal(dec(t, want)), "account %d balance=%s want=%s", id, got, want)
}
