package data

import (
	"testing"
	"time"
)

func TestStateRepo_SealOpen(t *testing.T) {
	r, err := NewStateRepo("secret", time.Hour)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	state, err := r.Seal("ou_user")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if state == "ou_user" {
		t.Error("Expected state to be opaque")
	}

	id, err := r.Open(state)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if id != "ou_user" {
		t.Errorf("Expected ou_user, got %s", id)
	}
}

func TestStateRepo_RejectsForeignAndTampered(t *testing.T) {
	r1, _ := NewStateRepo("one", time.Hour)
	r2, _ := NewStateRepo("two", time.Hour)

	state, _ := r1.Seal("U1")
	if _, err := r2.Open(state); err == nil {
		t.Error("Expected state sealed with another key to be rejected")
	}

	tampered := []byte(state)
	mid := len(tampered) / 2
	if tampered[mid] == 'A' {
		tampered[mid] = 'B'
	} else {
		tampered[mid] = 'A'
	}
	if _, err := r1.Open(string(tampered)); err == nil {
		t.Error("Expected tampered state to be rejected")
	}

	for _, bad := range []string{"", "U1", "!!!"} {
		if _, err := r1.Open(bad); err == nil {
			t.Errorf("Expected %q to be rejected", bad)
		}
	}
}

func TestStateRepo_Expiry(t *testing.T) {
	repo, _ := NewStateRepo("secret", time.Minute)
	r := repo.(*stateRepo)

	issued := time.Now()
	r.now = func() time.Time { return issued }
	state, _ := r.Seal("U1")

	r.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := r.Open(state); err == nil {
		t.Error("Expected expired state to be rejected")
	}
}
