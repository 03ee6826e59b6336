package repo

import (
	"context"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
)

// CalendarRepo writes events to the user's calendar
type CalendarRepo interface {
	InsertEvent(ctx context.Context, creds *domain.Credentials, event domain.CalendarEvent) (*domain.CreatedEvent, error)
}

// AuthRepo talks to the OAuth provider
type AuthRepo interface {
	// AuthCodeURL builds the provider consent URL for an opaque state
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for credentials, profile included
	Exchange(ctx context.Context, code string) (*domain.Credentials, error)

	// Refresh obtains a new access token. The refresh token is carried over
	// when the provider does not issue a new one.
	Refresh(ctx context.Context, creds *domain.Credentials) (*domain.Credentials, error)
}

// StateRepo seals and opens the OAuth state parameter
type StateRepo interface {
	Seal(accountID string) (string, error)
	Open(state string) (string, error)
}
