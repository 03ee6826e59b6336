package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
	"github.com/carokun/sachathescheduler/internal/biz/repo"
)

// LinkUsecase attaches calendar authorization to accounts
type LinkUsecase struct {
	accountRepo repo.AccountRepo
	authRepo    repo.AuthRepo
	stateRepo   repo.StateRepo
	baseURL     string
}

// NewLinkUsecase creates a new link usecase.
// baseURL is the public address the bot's HTTP server is reachable at.
func NewLinkUsecase(accountRepo repo.AccountRepo, authRepo repo.AuthRepo, stateRepo repo.StateRepo, baseURL string) *LinkUsecase {
	return &LinkUsecase{
		accountRepo: accountRepo,
		authRepo:    authRepo,
		stateRepo:   stateRepo,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// LinkURL is the personalized address sent to unlinked users
func (uc *LinkUsecase) LinkURL(accountID string) string {
	return uc.baseURL + "/connect?user=" + url.QueryEscape(accountID)
}

// BeginLink returns the provider authorization URL for an account
func (uc *LinkUsecase) BeginLink(ctx context.Context, accountID string) (string, error) {
	if accountID == "" {
		return "", domain.ErrAccountNotFound
	}
	acc, err := uc.accountRepo.Get(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("get account: %w", err)
	}
	if acc == nil {
		return "", domain.ErrAccountNotFound
	}

	state, err := uc.stateRepo.Seal(accountID)
	if err != nil {
		return "", fmt.Errorf("seal state: %w", err)
	}
	return uc.authRepo.AuthCodeURL(state), nil
}

// CompleteLink exchanges the authorization code and attaches the resulting
// credentials to the account named by state. On error the account is left
// as it was.
func (uc *LinkUsecase) CompleteLink(ctx context.Context, code, state string) (*domain.Account, error) {
	accountID, err := uc.stateRepo.Open(state)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidState, err)
	}
	if code == "" {
		return nil, fmt.Errorf("%w: missing code", domain.ErrExchangeFailed)
	}

	acc, err := uc.accountRepo.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if acc == nil {
		return nil, domain.ErrAccountNotFound
	}

	creds, err := uc.authRepo.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExchangeFailed, err)
	}

	// Relinking keeps the version chain so in-flight refreshes become stale
	for attempt := 0; attempt < 2; attempt++ {
		var expected int64
		if acc.Credentials != nil {
			expected = acc.Credentials.Version
			if creds.RefreshToken == "" {
				creds.RefreshToken = acc.Credentials.RefreshToken
			}
		}

		err = uc.accountRepo.UpdateCredentials(ctx, accountID, expected, creds)
		if err == nil {
			creds.Version = expected + 1
			acc.Credentials = creds
			fmt.Printf("[Link] Account %s linked to %s (%s)\n", accountID, creds.ProfileID, creds.ProfileName)
			return acc, nil
		}
		if !errors.Is(err, domain.ErrStaleCredentials) {
			return nil, fmt.Errorf("save credentials: %w", err)
		}

		acc, err = uc.accountRepo.Get(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("reload account: %w", err)
		}
		if acc == nil {
			return nil, domain.ErrAccountNotFound
		}
	}
	return nil, fmt.Errorf("save credentials: %w", domain.ErrStaleCredentials)
}
