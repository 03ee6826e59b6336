package domain

import "time"

// AccountState is the conversation state of an account
type AccountState string

const (
	StateUnlinked             AccountState = "unlinked"
	StateIdle                 AccountState = "idle"
	StateAwaitingConfirmation AccountState = "awaiting_confirmation"
)

// Account represents a chat user known to the bot
type Account struct {
	ID          string // Platform user id
	DMChannel   string // Direct message channel with the bot
	Credentials *Credentials
	Pending     PendingAction
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Credentials holds the calendar authorization attached to an account
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry"`
	ProfileID    string    `json:"profile_id,omitempty"`
	ProfileName  string    `json:"profile_name,omitempty"`

	// Version increases on every link or refresh. Writers compare it to
	// detect that someone else replaced the credentials first.
	Version int64 `json:"-"`
}

// NewAccount creates an unlinked account for a first contact
func NewAccount(id, dmChannel string) *Account {
	now := time.Now()
	return &Account{
		ID:        id,
		DMChannel: dmChannel,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsLinked checks if calendar credentials are attached
func (a *Account) IsLinked() bool {
	return a.Credentials != nil && (a.Credentials.AccessToken != "" || a.Credentials.RefreshToken != "")
}

// HasPending checks if a confirmation is outstanding
func (a *Account) HasPending() bool {
	return a.Pending != nil
}

// State reports where the account is in the conversation lifecycle
func (a *Account) State() AccountState {
	switch {
	case !a.IsLinked():
		return StateUnlinked
	case a.HasPending():
		return StateAwaitingConfirmation
	default:
		return StateIdle
	}
}

// Expired checks if the access token can no longer be used at now
func (c *Credentials) Expired(now time.Time) bool {
	if c.AccessToken == "" {
		return true
	}
	if c.Expiry.IsZero() {
		return false
	}
	return c.Expiry.Before(now)
}
