package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
)

func TestFailureKind(t *testing.T) {
	tests := []struct {
		err  error
		kind string
	}{
		{fmt.Errorf("%w: timeout", domain.ErrClassifierUnavailable), "classifier"},
		{domain.ErrClassifierMalformed, "classifier"},
		{fmt.Errorf("refresh: %w", domain.ErrRefreshFailed), "credentials"},
		{fmt.Errorf("%w: 500", domain.ErrCalendarInsert), "calendar"},
		{domain.ErrInvalidState, "link"},
		{errors.New("disk full"), "internal"},
	}
	for _, tt := range tests {
		if got := FailureKind(tt.err); got != tt.kind {
			t.Errorf("FailureKind(%v): expected %s, got %s", tt.err, tt.kind, got)
		}
	}
}

func TestHandler(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	m.RecordMessage(domain.StateAwaitingConfirmation, nil)
	m.RecordDecision(domain.DecisionAccept, true, fmt.Errorf("%w: boom", domain.ErrCalendarInsert))
	m.RecordDecision(domain.DecisionReject, false, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		`scheduler_messages_total{state="awaiting_confirmation"} 1`,
		`scheduler_confirmations_total{decision="accept",result="error"} 1`,
		`scheduler_confirmations_total{decision="reject",result="noop"} 1`,
		`scheduler_failures_total{kind="calendar"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("Expected metrics output to contain %s", want)
		}
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.RecordMessage(domain.StateIdle, errors.New("x"))
	m.RecordDecision(domain.DecisionAccept, true, nil)
	m.MailboxOpened()
	m.MailboxClosed()
}
