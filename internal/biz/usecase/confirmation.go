package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
	"github.com/carokun/sachathescheduler/internal/biz/repo"
)

// ConfirmationUsecase commits or discards pending actions
type ConfirmationUsecase struct {
	accountRepo  repo.AccountRepo
	calendarRepo repo.CalendarRepo
	credUC       *CredentialUsecase
	linkUC       *LinkUsecase
	messages     BotMessages
	timeout      time.Duration
}

// NewConfirmationUsecase creates a new confirmation usecase
func NewConfirmationUsecase(
	accountRepo repo.AccountRepo,
	calendarRepo repo.CalendarRepo,
	credUC *CredentialUsecase,
	linkUC *LinkUsecase,
	messages BotMessages,
	timeout time.Duration,
) *ConfirmationUsecase {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ConfirmationUsecase{
		accountRepo:  accountRepo,
		calendarRepo: calendarRepo,
		credUC:       credUC,
		linkUC:       linkUC,
		messages:     messages.WithDefaults(),
		timeout:      timeout,
	}
}

// ResolveRequest represents a press on a confirmation card
type ResolveRequest struct {
	AccountID string
	ChannelID string
	Decision  domain.Decision
}

// Resolve applies the user's decision to the pending action.
// Without a pending action it does nothing.
func (uc *ConfirmationUsecase) Resolve(ctx context.Context, req *ResolveRequest) (*Outcome, error) {
	acc, err := uc.accountRepo.Get(ctx, req.AccountID)
	if err != nil {
		return &Outcome{}, fmt.Errorf("get account: %w", err)
	}
	if acc == nil || !acc.HasPending() {
		fmt.Printf("[Confirm] No pending action for %s, ignoring %s\n", req.AccountID, req.Decision)
		out := &Outcome{State: domain.StateUnlinked}
		if acc != nil {
			out.State = acc.State()
		}
		return out, nil
	}

	channel := acc.DMChannel
	if channel == "" {
		channel = req.ChannelID
	}
	out := &Outcome{State: acc.State(), HadPending: true}

	if req.Decision != domain.DecisionAccept {
		if err := uc.accountRepo.SetPending(ctx, acc.ID, nil); err != nil {
			out.add(domain.TextEffect(channel, uc.messages.Failure))
			uc.reoffer(out, channel, acc)
			return out, fmt.Errorf("clear pending action: %w", err)
		}
		fmt.Printf("[Confirm] Account %s rejected %s\n", acc.ID, acc.Pending.Action())
		out.State = domain.StateIdle
		out.add(domain.TextEffect(channel, uc.messages.Canceled))
		return out, nil
	}

	created, err := uc.commit(ctx, acc)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRefreshFailed), errors.Is(err, domain.ErrNotLinked):
			out.add(domain.TextEffect(channel, uc.messages.relink(uc.linkUC.LinkURL(acc.ID))))
		case errors.Is(err, domain.ErrCalendarInsert):
			out.add(domain.TextEffect(channel, uc.messages.CalendarFailed))
		default:
			out.add(domain.TextEffect(channel, uc.messages.Failure))
		}
		fmt.Printf("[Confirm] Commit failed for %s, keeping pending action: %v\n", acc.ID, err)
		uc.reoffer(out, channel, acc)
		return out, err
	}

	if err := uc.accountRepo.SetPending(ctx, acc.ID, nil); err != nil {
		out.add(domain.TextEffect(channel, uc.messages.Failure))
		return out, fmt.Errorf("clear pending action: %w", err)
	}

	fmt.Printf("[Confirm] Account %s committed %s (event %s)\n", acc.ID, acc.Pending.Action(), created.ID)
	out.State = domain.StateIdle
	out.add(domain.TextEffect(channel, uc.messages.added(created.HTMLLink)))
	return out, nil
}

// reoffer sends a fresh confirmation card for a pending action that survived
// a failed decision. Gateways may disable the pressed card, so retrying needs
// new buttons.
func (uc *ConfirmationUsecase) reoffer(out *Outcome, channel string, acc *domain.Account) {
	out.add(domain.ConfirmEffect(channel, acc.Pending.Title(), acc.ID))
}

// commit records the scheduled item and writes the calendar event.
// The item is not removed when the calendar write fails.
func (uc *ConfirmationUsecase) commit(ctx context.Context, acc *domain.Account) (*domain.CreatedEvent, error) {
	var item *domain.ScheduledItem
	var event domain.CalendarEvent

	switch p := acc.Pending.(type) {
	case domain.RemindAdd:
		summary := p.Subject
		if summary == "" {
			summary = p.Summary
		}
		item = &domain.ScheduledItem{AccountID: acc.ID, Kind: p.Action(), Subject: summary, Day: p.Date}
		event = domain.AllDayEvent(summary, p.Date)
	case domain.MeetingAdd:
		summary := p.Title()
		subject := p.Subject
		if subject == "" {
			subject = summary
		}
		item = &domain.ScheduledItem{AccountID: acc.ID, Kind: p.Action(), Subject: subject, Day: p.Date}
		event = domain.AllDayEvent(summary, p.Date)
		event.Description = participantsLine(p.Participants)
	default:
		return nil, fmt.Errorf("%w: %T", domain.ErrUnknownAction, acc.Pending)
	}

	item.CreatedAt = time.Now()
	if err := uc.accountRepo.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add scheduled item: %w", err)
	}

	creds, err := uc.credUC.Valid(ctx, acc.ID)
	if err != nil {
		return nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	created, err := uc.calendarRepo.InsertEvent(cctx, creds, event)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCalendarInsert, err)
	}
	if created == nil {
		created = &domain.CreatedEvent{}
	}
	return created, nil
}

func participantsLine(participants domain.Mentions) string {
	if len(participants) == 0 {
		return ""
	}
	names := make([]string, 0, len(participants))
	for name := range participants {
		names = append(names, name)
	}
	sort.Strings(names)
	return "Participants: " + strings.Join(names, ", ")
}
