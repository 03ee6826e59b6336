package data

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
	"github.com/carokun/sachathescheduler/internal/biz/repo"
	"github.com/carokun/sachathescheduler/internal/infra/openai"
)

const (
	maxSessions    = 1024
	sessionTTL     = 30 * time.Minute
	maxSessionTurn = 12
)

// openaiRepo implements the classifier repository on a chat model.
// Slot-filling context lives in per-session histories that expire when idle.
type openaiRepo struct {
	client       *openai.Client
	systemPrompt string
	sessions     *expirable.LRU[string, []openai.Message]
	mu           sync.Mutex
	now          func() time.Time
}

// NewOpenAIRepo creates an LLM classifier repository.
// systemPrompt may contain %s placeholders for today's date and timezone.
func NewOpenAIRepo(client *openai.Client, systemPrompt string) repo.ClassifierRepo {
	if systemPrompt == "" {
		systemPrompt = openai.DefaultSystemPrompt
	}
	return &openaiRepo{
		client:       client,
		systemPrompt: systemPrompt,
		sessions:     expirable.NewLRU[string, []openai.Message](maxSessions, nil, sessionTTL),
		now:          time.Now,
	}
}

// Classify appends the utterance to the session history and asks the model
func (r *openaiRepo) Classify(ctx context.Context, req domain.ClassifyRequest) (*domain.Intent, error) {
	r.mu.Lock()
	history, _ := r.sessions.Get(req.SessionID)
	r.mu.Unlock()

	loc, err := time.LoadLocation(req.Timezone)
	if err != nil || req.Timezone == "" {
		loc = time.UTC
	}
	today := r.now().In(loc).Format("2006-01-02 (Monday)")

	messages := []openai.Message{{Role: "system", Content: fmt.Sprintf(r.systemPrompt, today, loc.String())}}
	messages = append(messages, history...)
	messages = append(messages, openai.Message{Role: "user", Content: req.Utterance})

	content, err := r.client.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}

	c, err := openai.ParseClassification(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrClassifierMalformed, err)
	}

	// A completed request starts a fresh session
	r.mu.Lock()
	if c.ActionIncomplete {
		history = append(history, openai.Message{Role: "user", Content: req.Utterance}, openai.Message{Role: "assistant", Content: content})
		if len(history) > maxSessionTurn {
			history = history[len(history)-maxSessionTurn:]
		}
		r.sessions.Add(req.SessionID, history)
	} else {
		r.sessions.Remove(req.SessionID)
	}
	r.mu.Unlock()

	return &domain.Intent{
		ActionIncomplete: c.ActionIncomplete,
		Action:           c.Action,
		Parameters:       c.Parameters,
		Speech:           c.Speech,
	}, nil
}
