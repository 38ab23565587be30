package ledger

import "github.com/shopspring/decimal"

// minorUnitPlaces is the number of fractional digits a balance may carry.
const minorUnitPlaces = 2

func hasMinorUnitPrecision(value decimal.Decimal) bool {
	return value.Equal(value.Truncate(minorUnitPlaces))
}

func validTransferAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && hasMinorUnitPrecision(amount)
}

func validOpeningBalance(balance decimal.Decimal) bool {
	return !balance.IsNegative() && hasMinorUnitPrecision(balance)
}
