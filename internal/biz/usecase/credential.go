package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
	"github.com/carokun/sachathescheduler/internal/biz/repo"
)

// CredentialUsecase hands out usable calendar credentials, refreshing them
// when they have expired.
type CredentialUsecase struct {
	accountRepo repo.AccountRepo
	authRepo    repo.AuthRepo
	group       singleflight.Group
	now         func() time.Time
}

// NewCredentialUsecase creates a new credential usecase
func NewCredentialUsecase(accountRepo repo.AccountRepo, authRepo repo.AuthRepo) *CredentialUsecase {
	return &CredentialUsecase{
		accountRepo: accountRepo,
		authRepo:    authRepo,
		now:         time.Now,
	}
}

// Valid returns credentials that are not expired.
// Concurrent calls for one account share a single refresh.
func (uc *CredentialUsecase) Valid(ctx context.Context, accountID string) (*domain.Credentials, error) {
	v, err, _ := uc.group.Do(accountID, func() (any, error) {
		return uc.refreshIfExpired(ctx, accountID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Credentials), nil
}

func (uc *CredentialUsecase) refreshIfExpired(ctx context.Context, accountID string) (*domain.Credentials, error) {
	acc, err := uc.accountRepo.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if acc == nil {
		return nil, domain.ErrAccountNotFound
	}
	if !acc.IsLinked() {
		return nil, domain.ErrNotLinked
	}

	current := acc.Credentials
	if !current.Expired(uc.now()) {
		return current, nil
	}

	fmt.Printf("[Credentials] Refreshing token for %s (expired %s)\n", accountID, current.Expiry.Format(time.RFC3339))
	fresh, err := uc.authRepo.Refresh(ctx, current)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRefreshFailed, err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = current.RefreshToken
	}
	if fresh.ProfileID == "" {
		fresh.ProfileID = current.ProfileID
		fresh.ProfileName = current.ProfileName
	}

	err = uc.accountRepo.UpdateCredentials(ctx, accountID, current.Version, fresh)
	if errors.Is(err, domain.ErrStaleCredentials) {
		// A newer refresh or relink landed first; keep it and drop ours
		fmt.Printf("[Credentials] Discarding stale refresh for %s (version %d)\n", accountID, current.Version)
		acc, err = uc.accountRepo.Get(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("reload account: %w", err)
		}
		if acc == nil || !acc.IsLinked() {
			return nil, domain.ErrNotLinked
		}
		return acc.Credentials, nil
	}
	if err != nil {
		return nil, fmt.Errorf("save refreshed credentials: %w", err)
	}

	fresh.Version = current.Version + 1
	return fresh, nil
}
