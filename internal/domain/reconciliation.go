package domain

import "github.com/shopspring/decimal"

// BalanceDiscrepancy describes an account whose stored balance drifted
// from the balance derived from the transfer ledger.
type BalanceDiscrepancy struct {
	AccountID         int64
	StoredBalance     decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
}
