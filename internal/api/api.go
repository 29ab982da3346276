// Package api exposes Salamatbot's HTTP surface: a liveness endpoint for
// the hosting platform and a readiness endpoint reporting the storage
// degradation state.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultAddr is the listen address used when no port is configured.
const DefaultAddr = ":8080"

// Opts holds configuration options for the HTTP server.
type Opts struct {
	Addr string
}

// Option configures server construction.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// DegradationReporter reports whether the profile store has fallen back
// to its in-memory backend.
type DegradationReporter interface {
	Degraded() bool
}

// Server is the liveness/readiness HTTP server.
type Server struct {
	srv      *http.Server
	reporter DegradationReporter
}

// NewServer creates the HTTP server. reporter may be nil when no
// fallback store is in play.
func NewServer(reporter DegradationReporter, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Server{reporter: reporter}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/ready", s.readyHandler)
	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

// Start runs the server until Shutdown is called. It returns nil on
// graceful shutdown.
func (s *Server) Start() error {
	slog.Info("api.Server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("api.Server shutting down")
	return s.srv.Shutdown(ctx)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	status := map[string]any{"status": "ok", "store_degraded": false}
	if s.reporter != nil && s.reporter.Degraded() {
		status["status"] = "degraded"
		status["store_degraded"] = true
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		slog.Error("api.readyHandler encode failed", "error", err)
	}
}
