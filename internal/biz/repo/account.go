package repo

import (
	"context"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
)

// AccountRepo is the account repository interface
// Responsible for account, pending action and scheduled item persistence (SQLite)
type AccountRepo interface {
	// Get gets an account by ID, nil if it does not exist
	Get(ctx context.Context, accountID string) (*domain.Account, error)

	// Create inserts a new account, returning the stored one if it already exists
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)

	// SetDMChannel updates the direct message channel
	SetDMChannel(ctx context.Context, accountID, channelID string) error

	// SetPending stores the pending action, nil clears it
	SetPending(ctx context.Context, accountID string, pending domain.PendingAction) error

	// UpdateCredentials replaces credentials only if the stored version still
	// equals expectedVersion. The stored version becomes expectedVersion+1.
	// Returns domain.ErrStaleCredentials when the version moved on.
	UpdateCredentials(ctx context.Context, accountID string, expectedVersion int64, creds *domain.Credentials) error

	// AddItem stores a confirmed scheduled item
	AddItem(ctx context.Context, item *domain.ScheduledItem) error

	// ListItems lists the scheduled items of an account, oldest first
	ListItems(ctx context.Context, accountID string) ([]*domain.ScheduledItem, error)

	// ListAll lists all accounts (for admin tooling)
	ListAll(ctx context.Context) ([]*domain.Account, error)

	// Close closes the underlying store
	Close() error
}
