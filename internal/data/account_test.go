package data

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
	"github.com/carokun/sachathescheduler/internal/biz/repo"
)

func newTestAccountRepo(t *testing.T) repo.AccountRepo {
	t.Helper()
	r, err := NewAccountRepo(filepath.Join(t.TempDir(), "scheduler.db"))
	if err != nil {
		t.Fatalf("Failed to open repo: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestAccountRepo_CreateAndGet(t *testing.T) {
	r := newTestAccountRepo(t)
	ctx := context.Background()

	acc, err := r.Get(ctx, "U1")
	if err != nil || acc != nil {
		t.Fatalf("Expected missing account, got %v (err=%v)", acc, err)
	}

	acc, err = r.Create(ctx, domain.NewAccount("U1", "D1"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if acc.ID != "U1" || acc.DMChannel != "D1" || acc.IsLinked() || acc.HasPending() {
		t.Errorf("Unexpected account: %+v", acc)
	}

	// Creating again keeps the stored row
	again, err := r.Create(ctx, domain.NewAccount("U1", "other"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if again.DMChannel != "D1" {
		t.Errorf("Expected existing DM channel D1, got %s", again.DMChannel)
	}
}

func TestAccountRepo_PendingRoundTrip(t *testing.T) {
	r := newTestAccountRepo(t)
	ctx := context.Background()
	if _, err := r.Create(ctx, domain.NewAccount("U1", "D1")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	pending := domain.MeetingAdd{
		Subject:      "sync",
		Date:         domain.Date{Year: 2024, Month: 3, Day: 10},
		Participants: domain.Mentions{"Alice": "<@A>"},
		Summary:      "Sync with <@A>",
	}
	if err := r.SetPending(ctx, "U1", pending); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	acc, _ := r.Get(ctx, "U1")
	got, ok := acc.Pending.(domain.MeetingAdd)
	if !ok {
		t.Fatalf("Expected MeetingAdd, got %T", acc.Pending)
	}
	if got.Summary != pending.Summary || got.Participants["Alice"] != "<@A>" || got.Date != pending.Date {
		t.Errorf("Expected %+v, got %+v", pending, got)
	}

	if err := r.SetPending(ctx, "U1", nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	acc, _ = r.Get(ctx, "U1")
	if acc.Pending != nil {
		t.Errorf("Expected pending cleared, got %v", acc.Pending)
	}

	if err := r.SetPending(ctx, "ghost", nil); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("Expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountRepo_UpdateCredentialsRejectsStaleVersion(t *testing.T) {
	r := newTestAccountRepo(t)
	ctx := context.Background()
	if _, err := r.Create(ctx, domain.NewAccount("U1", "D1")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	first := &domain.Credentials{AccessToken: "a1", RefreshToken: "r1", Expiry: time.Now().Add(time.Hour), ProfileID: "g1"}
	if err := r.UpdateCredentials(ctx, "U1", 0, first); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Two refreshes both read version 1; only the first write lands
	if err := r.UpdateCredentials(ctx, "U1", 1, &domain.Credentials{AccessToken: "a2", RefreshToken: "r1"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	err := r.UpdateCredentials(ctx, "U1", 1, &domain.Credentials{AccessToken: "stale", RefreshToken: "r1"})
	if !errors.Is(err, domain.ErrStaleCredentials) {
		t.Fatalf("Expected ErrStaleCredentials, got %v", err)
	}

	acc, _ := r.Get(ctx, "U1")
	if acc.Credentials.AccessToken != "a2" || acc.Credentials.Version != 2 {
		t.Errorf("Expected a2 at version 2, got %+v", acc.Credentials)
	}

	if err := r.UpdateCredentials(ctx, "ghost", 0, first); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("Expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountRepo_Items(t *testing.T) {
	r := newTestAccountRepo(t)
	ctx := context.Background()

	day := domain.Date{Year: 2024, Month: 3, Day: 10}
	for _, subject := range []string{"first", "second"} {
		item := &domain.ScheduledItem{AccountID: "U1", Kind: domain.ActionRemindAdd, Subject: subject, Day: day}
		if err := r.AddItem(ctx, item); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if item.ID == "" {
			t.Error("Expected generated item ID")
		}
	}
	if err := r.AddItem(ctx, &domain.ScheduledItem{AccountID: "U2", Kind: domain.ActionRemindAdd, Subject: "other", Day: day}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	items, err := r.ListItems(ctx, "U1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].Subject != "first" || items[1].Subject != "second" {
		t.Errorf("Expected items in creation order, got %s, %s", items[0].Subject, items[1].Subject)
	}
	if items[0].Day != day {
		t.Errorf("Expected day %s, got %s", day, items[0].Day)
	}
}

func TestAccountRepo_UnknownPendingTagIsError(t *testing.T) {
	r := newTestAccountRepo(t)
	ctx := context.Background()
	if _, err := r.Create(ctx, domain.NewAccount("U1", "D1")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ar := r.(*accountRepo)
	if _, err := ar.db.Exec(`UPDATE accounts SET pending = ? WHERE id = ?`, `{"action":"todo.add","date":"2024-03-10"}`, "U1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := r.Get(ctx, "U1"); !errors.Is(err, domain.ErrUnknownAction) {
		t.Errorf("Expected ErrUnknownAction, got %v", err)
	}
}
