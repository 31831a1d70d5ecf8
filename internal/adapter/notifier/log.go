package notifier

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/finwire/walletd/internal/domain"
)

// LogNotifier writes completed-transfer events to the application log.
// Useful for local development and as a fallback when no broker is
// configured.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Publish logs the event.
func (n *LogNotifier) Publish(ctx context.Context, event *domain.TransferCompletedEvent) error {
	n.logger.Info().
		Str("event_id", event.EventID).
		Str("type", event.Type).
		Int64("account_id", event.AccountID).
		Str("perspective", event.Perspective).
		Int64("transfer_id", event.Transfer.ID).
		Str("amount", event.Transfer.Amount).
		Msg("transfer completed")

	return nil
}
