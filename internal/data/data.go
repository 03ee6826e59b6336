package data

import (
	"time"

	"github.com/carokun/sachathescheduler/internal/biz/repo"
	"github.com/carokun/sachathescheduler/internal/infra/google"
)

// Repositories contains all repositories
type Repositories struct {
	Account    repo.AccountRepo
	Classifier repo.ClassifierRepo
	Calendar   repo.CalendarRepo
	Auth       repo.AuthRepo
	State      repo.StateRepo
	Message    repo.MessageRepo
}

// Options selects the adapters behind each repository
type Options struct {
	DBPath      string
	Google      *google.Client
	Classifier  repo.ClassifierRepo
	Message     repo.MessageRepo
	StateSecret string
	StateMaxAge time.Duration
}

// NewRepositories creates all repositories
func NewRepositories(opts Options) (*Repositories, error) {
	accountRepo, err := NewAccountRepo(opts.DBPath)
	if err != nil {
		return nil, err
	}

	stateRepo, err := NewStateRepo(opts.StateSecret, opts.StateMaxAge)
	if err != nil {
		_ = accountRepo.Close()
		return nil, err
	}

	googleRepo := NewGoogleRepo(opts.Google)

	return &Repositories{
		Account:    accountRepo,
		Classifier: opts.Classifier,
		Calendar:   googleRepo,
		Auth:       googleRepo,
		State:      stateRepo,
		Message:    opts.Message,
	}, nil
}

// Close releases the storage handle
func (r *Repositories) Close() error {
	return r.Account.Close()
}
