package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
	"github.com/carokun/sachathescheduler/internal/biz/repo"
)

// mockAccountRepo implements the read side of repo.AccountRepo
type mockAccountRepo struct {
	repo.AccountRepo
	accounts map[string]*domain.Account
	items    map[string][]*domain.ScheduledItem
}

func (m *mockAccountRepo) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	return m.accounts[accountID], nil
}

func (m *mockAccountRepo) ListAll(ctx context.Context) ([]*domain.Account, error) {
	var out []*domain.Account
	for _, acc := range m.accounts {
		out = append(out, acc)
	}
	return out, nil
}

func (m *mockAccountRepo) ListItems(ctx context.Context, accountID string) ([]*domain.ScheduledItem, error) {
	return m.items[accountID], nil
}

func newTestServer() *Server {
	day, _ := domain.ParseDate("2024-03-10")
	linked := domain.NewAccount("U1", "dm-U1")
	linked.Credentials = &domain.Credentials{AccessToken: "at", ProfileName: "Ada"}
	linked.Pending = domain.RemindAdd{Subject: "pay rent", Date: day, Summary: "Remind you to pay rent?"}

	return NewServer(&mockAccountRepo{
		accounts: map[string]*domain.Account{
			"U1": linked,
			"U2": domain.NewAccount("U2", "dm-U2"),
		},
		items: map[string][]*domain.ScheduledItem{
			"U1": {{ID: "i1", AccountID: "U1", Kind: domain.ActionRemindAdd, Subject: "gym", Day: day, CreatedAt: time.Now()}},
		},
	}, "127.0.0.1:0")
}

func TestHandleGetAccount(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/accounts/U1", nil)
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var acc Account
	if err := json.Unmarshal(w.Body.Bytes(), &acc); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if acc.State != string(domain.StateAwaitingConfirmation) {
		t.Errorf("Expected awaiting_confirmation, got %s", acc.State)
	}
	if acc.Pending == nil || acc.Pending.Action != domain.ActionRemindAdd {
		t.Errorf("Expected remind.add pending, got %+v", acc.Pending)
	}
	if acc.ProfileName != "Ada" {
		t.Errorf("Expected profile Ada, got %s", acc.ProfileName)
	}
}

func TestHandleGetAccount_NotFound(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/accounts/nobody", nil)
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestHandleListAccounts(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	var result map[string][]Account
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(result["accounts"]) != 2 {
		t.Errorf("Expected 2 accounts, got %d", len(result["accounts"]))
	}
}

func TestHandleListItems(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/accounts/U1/items", nil)
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	var result map[string][]Item
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	items := result["items"]
	if len(items) != 1 || items[0].Day != "2024-03-10" || items[0].Subject != "gym" {
		t.Errorf("Unexpected items: %+v", items)
	}
}
