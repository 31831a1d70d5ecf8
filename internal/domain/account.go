package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a wallet account holding a mutable balance.
type Account struct {
	ID        int64
	Name      string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanCover checks whether the account balance covers the given total.
func (a *Account) CanCover(total decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(total)
}

// ApplyDebit returns the balance after debiting total.
func (a *Account) ApplyDebit(total decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(total)
}

// ApplyCredit returns the balance after crediting amount.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}

// LockOrder returns the two account IDs in ascending order. Every caller
// locking a pair of account rows must acquire them in this order, which
// makes circular waits between concurrent transfers impossible.
func LockOrder(a, b int64) []int64 {
	if a <= b {
		return []int64{a, b}
	}

	return []int64{b, a}
}
