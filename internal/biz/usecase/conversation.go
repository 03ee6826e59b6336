package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
	"github.com/carokun/sachathescheduler/internal/biz/repo"
)

// ConversationUsecase turns inbound messages into pending actions (aggregate)
type ConversationUsecase struct {
	accountRepo    repo.AccountRepo
	classifierRepo repo.ClassifierRepo
	linkUC         *LinkUsecase
	messages       BotMessages
	timezone       string
	timeout        time.Duration
}

// NewConversationUsecase creates a new conversation usecase
func NewConversationUsecase(
	accountRepo repo.AccountRepo,
	classifierRepo repo.ClassifierRepo,
	linkUC *LinkUsecase,
	messages BotMessages,
	timezone string,
	timeout time.Duration,
) *ConversationUsecase {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ConversationUsecase{
		accountRepo:    accountRepo,
		classifierRepo: classifierRepo,
		linkUC:         linkUC,
		messages:       messages.WithDefaults(),
		timezone:       timezone,
		timeout:        timeout,
	}
}

// HandleRequest represents one inbound direct message
type HandleRequest struct {
	AccountID string
	ChannelID string
	Text      string
	Mentions  domain.Mentions // Produced while preprocessing this message only
}

// Outcome is the result of a state transition.
// Effects must be delivered even when the transition also returned an error.
type Outcome struct {
	State   domain.AccountState
	Effects []domain.Effect
	// HadPending is set by Resolve when a pending action was there to decide on
	HadPending bool
}

func (o *Outcome) add(e domain.Effect) {
	o.Effects = append(o.Effects, e)
}

// Handle processes a message from an account (core method)
func (uc *ConversationUsecase) Handle(ctx context.Context, req *HandleRequest) (*Outcome, error) {
	// 1. Resolve account, first contact creates it
	acc, err := uc.resolveAccount(ctx, req.AccountID, req.ChannelID)
	if err != nil {
		return &Outcome{Effects: []domain.Effect{domain.TextEffect(req.ChannelID, uc.messages.Failure)}}, err
	}
	channel := acc.DMChannel
	if channel == "" {
		channel = req.ChannelID
	}
	out := &Outcome{State: acc.State()}

	// 2. Unlinked accounts only ever get the link prompt
	if !acc.IsLinked() {
		out.add(domain.TextEffect(channel, uc.messages.linkPrompt(uc.linkUC.LinkURL(acc.ID))))
		return out, nil
	}

	// 3. One request at a time
	if acc.HasPending() {
		fmt.Printf("[Engine] Account %s busy with %s, dropping message\n", acc.ID, acc.Pending.Action())
		out.add(domain.TextEffect(channel, uc.messages.Busy))
		return out, nil
	}

	// 4. Classify, the account ID keys the classifier session
	cctx, cancel := context.WithTimeout(ctx, uc.timeout)
	intent, err := uc.classifierRepo.Classify(cctx, domain.ClassifyRequest{
		SessionID: acc.ID,
		Utterance: req.Text,
		Timezone:  uc.timezone,
	})
	cancel()
	if err != nil {
		fmt.Printf("[Engine] Classifier error for %s: %v\n", acc.ID, err)
		out.add(domain.TextEffect(channel, uc.messages.ClassifierDown))
		if !errors.Is(err, domain.ErrClassifierMalformed) {
			err = fmt.Errorf("%w: %v", domain.ErrClassifierUnavailable, err)
		}
		return out, err
	}

	// 5. Act on the intent
	speech := intent.Speech
	if speech == "" {
		speech = uc.messages.Fallback
	}

	if intent.ActionIncomplete {
		out.add(domain.TextEffect(channel, speech))
		return out, nil
	}

	var pending domain.PendingAction
	switch intent.Action {
	case domain.ActionRemindAdd, domain.ActionMeetingAdd:
		date, err := domain.ParseDate(intent.Param("date"))
		if err != nil {
			fmt.Printf("[Engine] %s without usable date for %s: %v\n", intent.Action, acc.ID, err)
			out.add(domain.TextEffect(channel, uc.messages.MissingDate))
			return out, nil
		}
		subject := intent.Param("any", "subject", "summary")
		if intent.Action == domain.ActionRemindAdd {
			pending = domain.RemindAdd{Subject: subject, Date: date, Summary: speech}
		} else {
			pending = domain.MeetingAdd{
				Subject:      subject,
				Date:         date,
				Participants: req.Mentions.Clone(),
				Summary:      req.Mentions.Restore(speech),
			}
		}
	default:
		out.add(domain.TextEffect(channel, speech))
		return out, nil
	}

	if err := uc.accountRepo.SetPending(ctx, acc.ID, pending); err != nil {
		out.add(domain.TextEffect(channel, uc.messages.Failure))
		return out, fmt.Errorf("save pending action: %w", err)
	}

	fmt.Printf("[Engine] Account %s awaiting confirmation of %s\n", acc.ID, pending.Action())
	out.State = domain.StateAwaitingConfirmation
	out.add(domain.ConfirmEffect(channel, pending.Title(), acc.ID))
	return out, nil
}

func (uc *ConversationUsecase) resolveAccount(ctx context.Context, accountID, channelID string) (*domain.Account, error) {
	acc, err := uc.accountRepo.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if acc == nil {
		acc, err = uc.accountRepo.Create(ctx, domain.NewAccount(accountID, channelID))
		if err != nil {
			return nil, fmt.Errorf("create account: %w", err)
		}
		fmt.Printf("[Engine] New account %s\n", accountID)
		return acc, nil
	}
	if channelID != "" && acc.DMChannel != channelID {
		if err := uc.accountRepo.SetDMChannel(ctx, accountID, channelID); err != nil {
			return nil, fmt.Errorf("update dm channel: %w", err)
		}
		acc.DMChannel = channelID
	}
	return acc, nil
}
