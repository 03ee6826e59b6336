package server

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
)

// Linker runs the authorization flow
type Linker interface {
	BeginLink(ctx context.Context, accountID string) (string, error)
	CompleteLink(ctx context.Context, code, state string) (*domain.Account, error)
}

// HTTPServer serves the link flow, card callbacks, health and metrics
type HTTPServer struct {
	linker      Linker
	convs       Conversations
	linkedText  string
	cardHandler http.Handler
	metrics     http.Handler
	addr        string
	server      *http.Server
}

// HTTPOptions configures optional endpoints
type HTTPOptions struct {
	// LinkedText is sent to the user's DM once their calendar is connected
	LinkedText string
	// CardHandler serves POST /feishu/card when set
	CardHandler http.Handler
	// Metrics serves GET /metrics when set
	Metrics http.Handler
}

// NewHTTPServer creates a new HTTP server
func NewHTTPServer(addr string, linker Linker, convs Conversations, opts HTTPOptions) *HTTPServer {
	return &HTTPServer{
		linker:      linker,
		convs:       convs,
		linkedText:  opts.LinkedText,
		cardHandler: opts.CardHandler,
		metrics:     opts.Metrics,
		addr:        addr,
	}
}

// Routes returns the router
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/connect", func(r chi.Router) {
		r.Get("/", s.handleConnect)
		r.Get("/callback", s.handleCallback)
		r.Get("/success", s.handlePage("Connect success", "Your Google Calendar is connected. You can close this page and go back to the chat."))
		r.Get("/failure", s.handlePage("Connect failed", "We could not connect your Google Calendar. Ask the bot for a new link and try again."))
	})

	if s.cardHandler != nil {
		r.Method(http.MethodPost, "/feishu/card", s.cardHandler)
	}
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return r
}

// Start serves until Stop is called
func (s *HTTPServer) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("[HTTP] Listening on %s\n", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down
func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleConnect redirects to the provider consent page
func (s *HTTPServer) handleConnect(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("user")
	authURL, err := s.linker.BeginLink(r.Context(), accountID)
	if err != nil {
		fmt.Printf("[HTTP] Begin link for %q failed: %v\n", accountID, err)
		if errors.Is(err, domain.ErrAccountNotFound) {
			http.Error(w, "unknown user, message the bot first", http.StatusNotFound)
			return
		}
		http.Error(w, "could not start authorization", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleCallback completes the authorization and tells the user in chat
func (s *HTTPServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		fmt.Printf("[HTTP] Authorization denied: %s\n", e)
		http.Redirect(w, r, "/connect/failure", http.StatusFound)
		return
	}

	acc, err := s.linker.CompleteLink(r.Context(), q.Get("code"), q.Get("state"))
	if err != nil {
		fmt.Printf("[HTTP] Complete link failed: %v\n", err)
		http.Redirect(w, r, "/connect/failure", http.StatusFound)
		return
	}

	if s.linkedText != "" && acc.DMChannel != "" {
		if err := s.convs.Notify(acc.ID, acc.DMChannel, s.linkedText); err != nil {
			fmt.Printf("[HTTP] Failed to queue link notice for %s: %v\n", acc.ID, err)
		}
	}
	http.Redirect(w, r, "/connect/success", http.StatusFound)
}

func (s *HTTPServer) handlePage(title, body string) http.HandlerFunc {
	page := fmt.Sprintf("<!doctype html><html><head><meta charset=\"utf-8\"><title>%s</title></head><body><h1>%s</h1><p>%s</p></body></html>",
		html.EscapeString(title), html.EscapeString(title), html.EscapeString(body))
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}
}
