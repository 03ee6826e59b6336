package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
)

// Mock implementations

type mockAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	items    []*domain.ScheduledItem
	// pendingWrites counts SetPending calls
	pendingWrites int
	// setPendingErr fails every SetPending call
	setPendingErr error
	// beforeUpdate runs inside UpdateCredentials before the version check
	beforeUpdate func()
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (m *mockAccountRepo) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[accountID]
	if !ok {
		return nil, nil
	}
	cp := *acc
	if acc.Credentials != nil {
		creds := *acc.Credentials
		cp.Credentials = &creds
	}
	return &cp, nil
}

func (m *mockAccountRepo) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	if existing, ok := m.accounts[account.ID]; ok {
		m.mu.Unlock()
		return m.Get(ctx, existing.ID)
	}
	cp := *account
	m.accounts[account.ID] = &cp
	m.mu.Unlock()
	return m.Get(ctx, account.ID)
}

func (m *mockAccountRepo) SetDMChannel(ctx context.Context, accountID, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[accountID]; ok {
		acc.DMChannel = channelID
	}
	return nil
}

func (m *mockAccountRepo) SetPending(ctx context.Context, accountID string, pending domain.PendingAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if m.setPendingErr != nil {
		return m.setPendingErr
	}
	m.pendingWrites++
	acc.Pending = pending
	return nil
}

func (m *mockAccountRepo) UpdateCredentials(ctx context.Context, accountID string, expectedVersion int64, creds *domain.Credentials) error {
	if m.beforeUpdate != nil {
		hook := m.beforeUpdate
		m.beforeUpdate = nil
		hook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	var current int64
	if acc.Credentials != nil {
		current = acc.Credentials.Version
	}
	if current != expectedVersion {
		return domain.ErrStaleCredentials
	}
	cp := *creds
	cp.Version = expectedVersion + 1
	acc.Credentials = &cp
	return nil
}

func (m *mockAccountRepo) AddItem(ctx context.Context, item *domain.ScheduledItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *item
	cp.ID = fmt.Sprintf("item-%d", len(m.items)+1)
	m.items = append(m.items, &cp)
	return nil
}

func (m *mockAccountRepo) ListItems(ctx context.Context, accountID string) ([]*domain.ScheduledItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.ScheduledItem
	for _, it := range m.items {
		if it.AccountID == accountID {
			result = append(result, it)
		}
	}
	return result, nil
}

func (m *mockAccountRepo) ListAll(ctx context.Context) ([]*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Account
	for _, a := range m.accounts {
		result = append(result, a)
	}
	return result, nil
}

func (m *mockAccountRepo) Close() error {
	return nil
}

func (m *mockAccountRepo) put(acc *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[acc.ID] = acc
}

func (m *mockAccountRepo) stored(id string) *domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[id]
}

type mockClassifierRepo struct {
	intent   *domain.Intent
	err      error
	requests []domain.ClassifyRequest
}

func (m *mockClassifierRepo) Classify(ctx context.Context, req domain.ClassifyRequest) (*domain.Intent, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.intent, nil
}

type mockCalendarRepo struct {
	mu     sync.Mutex
	events []domain.CalendarEvent
	tokens []string
	err    error
}

func (m *mockCalendarRepo) InsertEvent(ctx context.Context, creds *domain.Credentials, event domain.CalendarEvent) (*domain.CreatedEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, creds.AccessToken)
	if m.err != nil {
		return nil, m.err
	}
	m.events = append(m.events, event)
	return &domain.CreatedEvent{ID: "evt-1", HTMLLink: "https://calendar.example/evt-1"}, nil
}

type mockAuthRepo struct {
	mu          sync.Mutex
	refreshes   int
	refreshErr  error
	exchangeErr error
	delay       time.Duration
	nextToken   string
}

func (m *mockAuthRepo) AuthCodeURL(state string) string {
	return "https://accounts.example/auth?state=" + state
}

func (m *mockAuthRepo) Exchange(ctx context.Context, code string) (*domain.Credentials, error) {
	if m.exchangeErr != nil {
		return nil, m.exchangeErr
	}
	return &domain.Credentials{
		AccessToken:  "access-" + code,
		RefreshToken: "refresh-" + code,
		Expiry:       time.Now().Add(time.Hour),
		ProfileID:    "g-123",
		ProfileName:  "Test User",
	}, nil
}

func (m *mockAuthRepo) Refresh(ctx context.Context, creds *domain.Credentials) (*domain.Credentials, error) {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes++
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	token := m.nextToken
	if token == "" {
		token = fmt.Sprintf("refreshed-%d", m.refreshes)
	}
	return &domain.Credentials{AccessToken: token, Expiry: time.Now().Add(time.Hour)}, nil
}

type mockStateRepo struct{}

func (mockStateRepo) Seal(accountID string) (string, error) {
	return "sealed:" + accountID, nil
}

func (mockStateRepo) Open(state string) (string, error) {
	if !strings.HasPrefix(state, "sealed:") {
		return "", errors.New("bad state")
	}
	return strings.TrimPrefix(state, "sealed:"), nil
}

// Helpers

func linkedAccount(id string) *domain.Account {
	acc := domain.NewAccount(id, "dm-"+id)
	acc.Credentials = &domain.Credentials{
		AccessToken:  "valid-token",
		RefreshToken: "refresh-token",
		Expiry:       time.Now().Add(time.Hour),
		Version:      1,
	}
	return acc
}

type fixture struct {
	accounts   *mockAccountRepo
	classifier *mockClassifierRepo
	calendar   *mockCalendarRepo
	auth       *mockAuthRepo
	link       *LinkUsecase
	creds      *CredentialUsecase
	conv       *ConversationUsecase
	confirm    *ConfirmationUsecase
}

func newFixture() *fixture {
	f := &fixture{
		accounts:   newMockAccountRepo(),
		classifier: &mockClassifierRepo{},
		calendar:   &mockCalendarRepo{},
		auth:       &mockAuthRepo{},
	}
	f.link = NewLinkUsecase(f.accounts, f.auth, mockStateRepo{}, "https://bot.example/")
	f.creds = NewCredentialUsecase(f.accounts, f.auth)
	f.conv = NewConversationUsecase(f.accounts, f.classifier, f.link, DefaultBotMessages, "America/Los_Angeles", time.Second)
	f.confirm = NewConfirmationUsecase(f.accounts, f.calendar, f.creds, f.link, DefaultBotMessages, time.Second)
	return f
}

func remindIntent(date string) *domain.Intent {
	return &domain.Intent{
		Action:     domain.ActionRemindAdd,
		Parameters: map[string]any{"any": "pay rent", "date": date},
		Speech:     "Shall I remind you to pay rent on " + date + "?",
	}
}
