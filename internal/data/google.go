package data

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
	"github.com/carokun/sachathescheduler/internal/biz/repo"
	"github.com/carokun/sachathescheduler/internal/infra/google"
)

// googleRepo implements the calendar and auth repositories
type googleRepo struct {
	client *google.Client
}

// NewGoogleRepo creates a Google repository
func NewGoogleRepo(client *google.Client) *googleRepo {
	return &googleRepo{client: client}
}

var (
	_ repo.CalendarRepo = (*googleRepo)(nil)
	_ repo.AuthRepo     = (*googleRepo)(nil)
)

// AuthCodeURL builds the consent URL
func (r *googleRepo) AuthCodeURL(state string) string {
	return r.client.AuthCodeURL(state)
}

// Exchange trades the code for credentials and looks up the profile
func (r *googleRepo) Exchange(ctx context.Context, code string) (*domain.Credentials, error) {
	tok, err := r.client.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	creds := credentialsFromToken(tok)

	// Profile is informational, linking works without it
	profile, err := r.client.Profile(ctx, tok)
	if err != nil {
		fmt.Printf("[Google] Failed to fetch profile: %v\n", err)
	} else {
		creds.ProfileID = profile.ID
		creds.ProfileName = profile.Name
	}
	return creds, nil
}

// Refresh obtains a new access token
func (r *googleRepo) Refresh(ctx context.Context, creds *domain.Credentials) (*domain.Credentials, error) {
	tok, err := r.client.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		return nil, err
	}
	return credentialsFromToken(tok), nil
}

// InsertEvent writes an all-day event
func (r *googleRepo) InsertEvent(ctx context.Context, creds *domain.Credentials, event domain.CalendarEvent) (*domain.CreatedEvent, error) {
	created, err := r.client.InsertAllDayEvent(ctx, tokenFromCredentials(creds), google.AllDayEvent{
		CalendarID:  event.CalendarID,
		Summary:     event.Summary,
		Description: event.Description,
		StartDate:   event.Start.String(),
		EndDate:     event.End.String(),
	})
	if err != nil {
		return nil, err
	}
	return &domain.CreatedEvent{ID: created.Id, HTMLLink: created.HtmlLink}, nil
}

func credentialsFromToken(tok *oauth2.Token) *domain.Credentials {
	return &domain.Credentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
}

func tokenFromCredentials(creds *domain.Credentials) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    creds.TokenType,
		Expiry:       creds.Expiry,
	}
}
