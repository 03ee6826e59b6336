package biz

import (
	"time"

	"github.com/carokun/sachathescheduler/internal/biz/repo"
	"github.com/carokun/sachathescheduler/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Link         *usecase.LinkUsecase
	Credential   *usecase.CredentialUsecase
	Conversation *usecase.ConversationUsecase
	Confirmation *usecase.ConfirmationUsecase
}

// Repos are the repositories the usecases depend on
type Repos struct {
	Account    repo.AccountRepo
	Classifier repo.ClassifierRepo
	Calendar   repo.CalendarRepo
	Auth       repo.AuthRepo
	State      repo.StateRepo
}

// Options tunes the usecases
type Options struct {
	Messages          usecase.BotMessages
	PublicBaseURL     string
	Timezone          string
	ClassifierTimeout time.Duration
	CalendarTimeout   time.Duration
}

// NewUsecases wires all usecases
func NewUsecases(repos Repos, opts Options) *Usecases {
	linkUC := usecase.NewLinkUsecase(repos.Account, repos.Auth, repos.State, opts.PublicBaseURL)
	credUC := usecase.NewCredentialUsecase(repos.Account, repos.Auth)
	return &Usecases{
		Link:         linkUC,
		Credential:   credUC,
		Conversation: usecase.NewConversationUsecase(repos.Account, repos.Classifier, linkUC, opts.Messages, opts.Timezone, opts.ClassifierTimeout),
		Confirmation: usecase.NewConfirmationUsecase(repos.Account, repos.Calendar, credUC, linkUC, opts.Messages, opts.CalendarTimeout),
	}
}
