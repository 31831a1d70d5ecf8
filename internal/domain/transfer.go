package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionRate is the fixed fee rate charged on every transfer.
// The fee is debited from the sender on top of the transfer amount.
var CommissionRate = decimal.NewFromFloat(0.015)

// Transfer statuses.
const (
	TransferStatusCompleted = "completed"
)

// Accepted amount bounds for a single transfer.
var (
	MinTransferAmount = decimal.NewFromFloat(0.01)
	MaxTransferAmount = decimal.NewFromInt(1_000_000)
)

// Transfer is a ledger record of a completed money movement.
// Records are immutable once created, except for the archival transition.
type Transfer struct {
	ID            int64
	SenderID      int64
	ReceiverID    int64
	Amount        decimal.Decimal
	CommissionFee decimal.Decimal
	TotalAmount   decimal.Decimal
	Status        string
	Description   string
	CreatedAt     time.Time
	ArchivedAt    *time.Time
}

// ArchivedTransfer is a transfer relocated to the archive store.
type ArchivedTransfer struct {
	Transfer
	ArchivedAt time.Time
}

// CommissionFor computes the commission fee for a transfer amount,
// rounded to cents.
func CommissionFor(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(CommissionRate).Round(2)
}

// TotalFor computes the full amount debited from the sender.
func TotalFor(amount decimal.Decimal) decimal.Decimal {
	return amount.Add(CommissionFor(amount))
}

// ValidateTransfer checks the request invariants that do not require
// looking at account state.
func ValidateTransfer(senderID, receiverID int64, amount decimal.Decimal) error {
	if amount.LessThan(MinTransferAmount) || amount.GreaterThan(MaxTransferAmount) {
		return ErrInvalidAmount
	}

	if senderID == receiverID {
		return ErrSelfTransfer
	}

	return nil
}
