// Package server is the webhook HTTP transport. It owns the outermost
// failure boundary: nothing that happens inside event handling may escape to
// the client as anything but a small JSON status object.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"cryptobot/internal/domain"
	"cryptobot/internal/metrics"

	"github.com/google/uuid"
)

// Dispatcher handles one parsed inbound event. Implemented by bot.Bot.
type Dispatcher interface {
	HandleEvent(ctx context.Context, ev domain.InboundEvent)
}

type Config struct {
	Port    int
	Path    string // webhook URL path (default: /webhook)
	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// Server accepts Viber webhook deliveries and hands them to the dispatcher.
type Server struct {
	port    int
	path    string
	bot     Dispatcher
	mc      *metrics.Collector
	logger  *slog.Logger
	server  *http.Server
	started time.Time
}

func New(cfg Config, bot Dispatcher) *Server {
	if cfg.Path == "" {
		cfg.Path = "/webhook"
	}
	if cfg.Port == 0 {
		cfg.Port = 5000
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewCollector()
	}
	return &Server{
		port:   cfg.Port,
		path:   cfg.Path,
		bot:    bot,
		mc:     cfg.Metrics,
		logger: cfg.Logger,
	}
}

// Handler returns the route table; exported so tests can drive it through
// httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleWebhook)
	mux.HandleFunc("/", s.handleInfo)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/metrics", s.mc.Handler())
	return mux
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.started = time.Now()
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("webhook server starting", "port", s.port, "path", s.path)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("webhook server: %w", err)
	}
}

// handleWebhook serves the single webhook path: GET is the reachability
// probe Viber performs on registration, POST carries event envelopes.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	case http.MethodPost:
		s.handleEvent(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"status": "error", "message": "method not allowed"})
	}
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	log := s.logger.With("req", reqID)

	// Recovery boundary: an internal failure becomes {"status":1} and a
	// server-side trace, never a leaked error.
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic in webhook handler", "panic", rec, "stack", string(debug.Stack()))
			writeJSON(w, http.StatusOK, map[string]any{"status": 1})
		}
	}()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		log.Warn("cannot read webhook body", "err", err)
		writeJSON(w, http.StatusOK, map[string]any{"status": 1})
		return
	}
	defer r.Body.Close()

	ev, err := domain.ParseEvent(body)
	if err != nil {
		log.Warn("malformed webhook payload", "err", err)
		writeJSON(w, http.StatusOK, map[string]any{"status": 1})
		return
	}

	log.Debug("webhook event", "kind", ev.Kind, "event", ev.RawEvent)
	s.bot.HandleEvent(r.Context(), ev)
	writeJSON(w, http.StatusOK, map[string]any{"status": 0})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]any{"status": "error", "message": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "bot": "cryptobot"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    s.mc.Uptime().String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
