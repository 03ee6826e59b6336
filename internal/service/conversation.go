package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
	"github.com/carokun/sachathescheduler/internal/biz/repo"
	"github.com/carokun/sachathescheduler/internal/biz/usecase"
	"github.com/carokun/sachathescheduler/internal/metrics"
)

// ErrClosed is returned when work is submitted after Close
var ErrClosed = errors.New("conversation service closed")

// MessageHandler runs the conversation engine for one message
type MessageHandler interface {
	Handle(ctx context.Context, req *usecase.HandleRequest) (*usecase.Outcome, error)
}

// DecisionResolver applies a confirmation decision
type DecisionResolver interface {
	Resolve(ctx context.Context, req *usecase.ResolveRequest) (*usecase.Outcome, error)
}

// ConversationService serializes work per account and delivers effects.
// Every account has one mailbox; jobs for the same account run one at a time
// in arrival order, different accounts run in parallel.
type ConversationService struct {
	handler     MessageHandler
	resolver    DecisionResolver
	messageRepo repo.MessageRepo
	metrics     *metrics.Metrics

	mu        sync.Mutex
	mailboxes map[string]*mailbox
	closed    bool
	wg        sync.WaitGroup
}

// mailbox is the FIFO of pending jobs for one account
type mailbox struct {
	queue []job
}

type job struct {
	name string
	run  func(ctx context.Context)
}

// NewConversationService creates a new conversation service
func NewConversationService(
	handler MessageHandler,
	resolver DecisionResolver,
	messageRepo repo.MessageRepo,
	m *metrics.Metrics,
) *ConversationService {
	return &ConversationService{
		handler:     handler,
		resolver:    resolver,
		messageRepo: messageRepo,
		metrics:     m,
		mailboxes:   make(map[string]*mailbox),
	}
}

// MessageRequest represents an inbound direct message
type MessageRequest struct {
	AccountID string
	ChannelID string
	MsgID     string
	Text      string
	Mentions  domain.Mentions
}

// DecisionRequest represents a button press on a confirmation card
type DecisionRequest struct {
	AccountID string
	ChannelID string
	Decision  domain.Decision
}

// HandleMessage queues a message behind earlier work for the same account
func (s *ConversationService) HandleMessage(req *MessageRequest) error {
	return s.enqueue(req.AccountID, job{
		name: "message " + req.MsgID,
		run: func(ctx context.Context) {
			out, err := s.handler.Handle(ctx, &usecase.HandleRequest{
				AccountID: req.AccountID,
				ChannelID: req.ChannelID,
				Text:      req.Text,
				Mentions:  req.Mentions,
			})
			if err != nil {
				fmt.Printf("[Service] Handle message %s from %s: %v\n", req.MsgID, req.AccountID, err)
			}
			if out == nil {
				return
			}
			s.metrics.RecordMessage(out.State, err)
			s.deliver(ctx, out.Effects)
		},
	})
}

// HandleDecision queues a confirmation decision for the account
func (s *ConversationService) HandleDecision(req *DecisionRequest) error {
	return s.enqueue(req.AccountID, job{
		name: "decision " + string(req.Decision),
		run: func(ctx context.Context) {
			out, err := s.resolver.Resolve(ctx, &usecase.ResolveRequest{
				AccountID: req.AccountID,
				ChannelID: req.ChannelID,
				Decision:  req.Decision,
			})
			if err != nil {
				fmt.Printf("[Service] Resolve %s for %s: %v\n", req.Decision, req.AccountID, err)
			}
			if out == nil {
				return
			}
			s.metrics.RecordDecision(req.Decision, out.HadPending, err)
			s.deliver(ctx, out.Effects)
		},
	})
}

// Notify queues a plain message to an account behind its pending work
func (s *ConversationService) Notify(accountID, channelID, text string) error {
	return s.enqueue(accountID, job{
		name: "notify",
		run: func(ctx context.Context) {
			s.deliver(ctx, []domain.Effect{domain.TextEffect(channelID, text)})
		},
	})
}

// Close stops accepting work and waits for queued jobs to finish
func (s *ConversationService) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *ConversationService) enqueue(accountID string, j job) error {
	if accountID == "" {
		return fmt.Errorf("enqueue %s: empty account id", j.name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	mb, ok := s.mailboxes[accountID]
	if ok {
		mb.queue = append(mb.queue, j)
		return nil
	}

	// No mailbox means no drainer is running for this account
	mb = &mailbox{queue: []job{j}}
	s.mailboxes[accountID] = mb
	s.wg.Add(1)
	s.metrics.MailboxOpened()
	go s.drain(accountID, mb)
	return nil
}

// drain runs jobs until the mailbox is empty, then removes it
func (s *ConversationService) drain(accountID string, mb *mailbox) {
	defer s.wg.Done()
	defer s.metrics.MailboxClosed()

	for {
		s.mu.Lock()
		if len(mb.queue) == 0 {
			delete(s.mailboxes, accountID)
			s.mu.Unlock()
			return
		}
		j := mb.queue[0]
		mb.queue = mb.queue[1:]
		s.mu.Unlock()

		s.run(accountID, j)
	}
}

func (s *ConversationService) run(accountID string, j job) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[Service] Panic in %s for %s: %v\n%s\n", j.name, accountID, r, debug.Stack())
		}
	}()
	j.run(context.Background())
}

// deliver sends effects in order
func (s *ConversationService) deliver(ctx context.Context, effects []domain.Effect) {
	for _, e := range effects {
		var err error
		switch e.Kind {
		case domain.EffectText:
			err = s.messageRepo.SendText(ctx, e.ChannelID, e.Text)
		case domain.EffectConfirm:
			err = s.messageRepo.SendConfirmation(ctx, e.ChannelID, e.Text, e.CorrelationID)
		default:
			err = fmt.Errorf("unknown effect %q", e.Kind)
		}
		if err != nil {
			fmt.Printf("[Service] Failed to deliver %s to %s: %v\n", e.Kind, e.ChannelID, err)
		}
	}
}
