package metrics

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
)

const namespace = "scheduler"

// Metrics exports conversation counters to Prometheus.
// A nil *Metrics records nothing.
type Metrics struct {
	messages  *prometheus.CounterVec
	decisions *prometheus.CounterVec
	failures  *prometheus.CounterVec
	mailboxes prometheus.Gauge
	gatherer  prometheus.Gatherer
}

// New registers the scheduler metrics on reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Inbound messages handled, by resulting account state.",
		}, []string{"state"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "confirmations_total",
			Help:      "Confirmation decisions, by decision and result.",
		}, []string{"decision", "result"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Recoverable failures, by kind.",
		}, []string{"kind"}),
		mailboxes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_mailboxes",
			Help:      "Accounts with queued or running work.",
		}),
		gatherer: reg,
	}

	collectors := []prometheus.Collector{m.messages, m.decisions, m.failures, m.mailboxes}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return m, nil
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordMessage counts a handled message
func (m *Metrics) RecordMessage(state domain.AccountState, err error) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(string(state)).Inc()
	m.recordFailure(err)
}

// RecordDecision counts a confirmation
func (m *Metrics) RecordDecision(decision domain.Decision, hadPending bool, err error) {
	if m == nil {
		return
	}
	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case !hadPending:
		result = "noop"
	}
	m.decisions.WithLabelValues(string(decision), result).Inc()
	m.recordFailure(err)
}

// MailboxOpened tracks a mailbox starting to drain
func (m *Metrics) MailboxOpened() {
	if m != nil {
		m.mailboxes.Inc()
	}
}

// MailboxClosed tracks a mailbox going idle
func (m *Metrics) MailboxClosed() {
	if m != nil {
		m.mailboxes.Dec()
	}
}

func (m *Metrics) recordFailure(err error) {
	if err == nil {
		return
	}
	m.failures.WithLabelValues(FailureKind(err)).Inc()
}

// FailureKind maps an error to a low-cardinality label
func FailureKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrClassifierUnavailable), errors.Is(err, domain.ErrClassifierMalformed):
		return "classifier"
	case errors.Is(err, domain.ErrRefreshFailed), errors.Is(err, domain.ErrNotLinked):
		return "credentials"
	case errors.Is(err, domain.ErrCalendarInsert):
		return "calendar"
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrExchangeFailed):
		return "link"
	default:
		return "internal"
	}
}
