package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
	"github.com/carokun/sachathescheduler/internal/biz/repo"
)

// Server provides a read-only admin HTTP API over the account store.
// scheduler-mcp calls it to answer questions about accounts.
type Server struct {
	accountRepo repo.AccountRepo
	server      *http.Server
	addr        string
}

// Account is the admin view of an account
type Account struct {
	ID          string   `json:"id"`
	State       string   `json:"state"`
	DMChannel   string   `json:"dm_channel"`
	ProfileName string   `json:"profile_name,omitempty"`
	Pending     *Pending `json:"pending,omitempty"`
	UpdatedAt   string   `json:"updated_at"` // RFC 3339
}

// Pending is the admin view of a pending action
type Pending struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// Item is the admin view of a scheduled item
type Item struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Subject   string `json:"subject"`
	Day       string `json:"day"`
	CreatedAt string `json:"created_at"` // RFC 3339
}

// NewServer creates a new API server
func NewServer(accountRepo repo.AccountRepo, addr string) *Server {
	return &Server{accountRepo: accountRepo, addr: addr}
}

// Routes returns the API router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/accounts", s.handleListAccounts)
	r.Get("/api/accounts/{id}", s.handleGetAccount)
	r.Get("/api/accounts/{id}/items", s.handleListItems)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return r
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("[API] Starting admin server on %s\n", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accountRepo.ListAll(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	result := make([]Account, 0, len(accounts))
	for _, acc := range accounts {
		result = append(result, ToAccount(acc))
	}
	s.writeJSON(w, map[string]any{"accounts": result})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acc, ok := s.loadAccount(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, ToAccount(acc))
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	acc, ok := s.loadAccount(w, r)
	if !ok {
		return
	}

	items, err := s.accountRepo.ListItems(r.Context(), acc.ID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	result := make([]Item, 0, len(items))
	for _, it := range items {
		result = append(result, Item{
			ID:        it.ID,
			Kind:      it.Kind,
			Subject:   it.Subject,
			Day:       it.Day.String(),
			CreatedAt: it.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	s.writeJSON(w, map[string]any{"items": result})
}

func (s *Server) loadAccount(w http.ResponseWriter, r *http.Request) (*domain.Account, bool) {
	id := chi.URLParam(r, "id")
	acc, err := s.accountRepo.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	if acc == nil {
		s.writeError(w, http.StatusNotFound, domain.ErrAccountNotFound)
		return nil, false
	}
	return acc, true
}

// ToAccount converts a domain account to its admin view
func ToAccount(acc *domain.Account) Account {
	out := Account{
		ID:        acc.ID,
		State:     string(acc.State()),
		DMChannel: acc.DMChannel,
		UpdatedAt: acc.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if acc.Credentials != nil {
		out.ProfileName = acc.Credentials.ProfileName
	}
	if acc.Pending != nil {
		out.Pending = &Pending{Action: acc.Pending.Action(), Title: acc.Pending.Title()}
	}
	return out
}

func (s *Server) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
