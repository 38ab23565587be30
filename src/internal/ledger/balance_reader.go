package ledger

import "github.com/shopspring/decimal"

// BalanceReader serves single-account reads. It never takes part in the
// two-account lock ordering used by transfers.
type BalanceReader struct {
	store *AccountStore
}

func NewBalanceReader(store *AccountStore) BalanceReader {
	return BalanceReader{store: store}
}

func (r BalanceReader) GetBalance(accountID int64) (decimal.Decimal, error) {
	return r.store.GetBalance(accountID)
}
