package repo

import (
	"context"
)

// MessageRepo is the outbound messaging interface
// Implemented by each chat platform gateway
type MessageRepo interface {
	// SendText sends a text message
	SendText(ctx context.Context, channelID, text string) error

	// SendConfirmation sends a card with accept and reject buttons.
	// Both buttons carry correlationID so the callback can find the account.
	SendConfirmation(ctx context.Context, channelID, title, correlationID string) error
}
