package domain

// Perspectives for a completed-transfer event. Each committed transfer
// produces one event per involved account.
const (
	PerspectiveSent     = "sent"
	PerspectiveReceived = "received"
)

// EventTypeTransferCompleted identifies the only outbound event the
// transfer engine emits. It is published after commit; delivery
// mechanics are external.
const EventTypeTransferCompleted = "transfer.completed"

// TransferCompletedEvent carries a fully-populated transfer record to
// the notification sink.
type TransferCompletedEvent struct {
	EventID     string          `json:"event_id"`
	Type        string          `json:"type"`
	AccountID   int64           `json:"account_id"`
	Perspective string          `json:"perspective"`
	Transfer    TransferPayload `json:"transfer"`
}

// TransferPayload is the wire form of a transfer record. Amounts are
// serialized as strings to avoid float precision loss in consumers.
type TransferPayload struct {
	ID            int64  `json:"id"`
	SenderID      int64  `json:"sender_id"`
	ReceiverID    int64  `json:"receiver_id"`
	Amount        string `json:"amount"`
	CommissionFee string `json:"commission_fee"`
	TotalAmount   string `json:"total_amount"`
	Status        string `json:"status"`
	Description   string `json:"description"`
	CreatedAt     string `json:"created_at"`
}

// NewTransferPayload converts a transfer record into its wire form.
func NewTransferPayload(t *Transfer) TransferPayload {
	return TransferPayload{
		ID:            t.ID,
		SenderID:      t.SenderID,
		ReceiverID:    t.ReceiverID,
		Amount:        t.Amount.StringFixed(2),
		CommissionFee: t.CommissionFee.StringFixed(2),
		TotalAmount:   t.TotalAmount.StringFixed(2),
		Status:        t.Status,
		Description:   t.Description,
		CreatedAt:     t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
