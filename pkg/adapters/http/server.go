// Package http exposes a running sweep over HTTP: status, stop, replacement
// input delivery, metrics and a server-sent event stream.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/fieldsweep/internal/logging"
	"github.com/aretw0/fieldsweep/pkg/adapters/inputs"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Controller is the part of the pipeline the server drives.
type Controller interface {
	Snapshot() domain.Snapshot
	Stop()
}

// InputSink receives replacement inputs for a paused sweep.
type InputSink interface {
	Deliver(path string) error
	Decline() error
}

// Server serves the control API of one sweep.
type Server struct {
	ctrl     Controller
	sink     InputSink
	gatherer prometheus.Gatherer
	streams  *StreamManager
	origins  map[string]bool
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithInputSink enables POST /input and POST /input/decline.
func WithInputSink(sink InputSink) Option {
	return func(s *Server) {
		s.sink = sink
	}
}

// WithGatherer enables GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithStreams enables GET /events.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.streams = sm
	}
}

// WithAllowedOrigins lists the browser origins allowed to call the API.
// "*" allows reads from any origin but never cross-origin POSTs.
// Without this option only same-origin and non-browser clients are served.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		for _, o := range origins {
			s.origins[strings.TrimSuffix(o, "/")] = true
		}
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for ctrl.
func NewHandler(ctrl Controller, opts ...Option) http.Handler {
	s := &Server{ctrl: ctrl, origins: map[string]bool{}, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/status", s.Status)
	r.Post("/stop", s.StopSweep)
	if s.sink != nil {
		r.Post("/input", s.DeliverInput)
		r.Post("/input/decline", s.DeclineInput)
	}
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	if s.streams != nil {
		r.Get("/events", s.SubscribeEvents)
	}
	return s.cors(r)
}

// cors answers preflights and rejects cross-origin POSTs from origins that
// were not explicitly allowed. Requests without an Origin header pass.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" || sameOrigin(r, origin) {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Add("Vary", "Origin")
		mutating := r.Method == http.MethodPost ||
			(r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") == http.MethodPost)
		allowed := s.origins[origin] || (!mutating && s.origins["*"])
		if !allowed {
			if mutating {
				s.logger.Warn("cross-origin request rejected", "origin", origin, "method", r.Method, "path", r.URL.Path)
				http.Error(w, "origin not allowed", http.StatusForbidden)
				return
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sameOrigin(r *http.Request, origin string) bool {
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

// Status handles GET /status.
func (s *Server) Status(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// StopSweep handles POST /stop.
func (s *Server) StopSweep(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Stop()
	s.logger.Info("stop requested over http", "remote", r.RemoteAddr)
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "stopping"})
}

// InputRequest is the body of POST /input.
type InputRequest struct {
	Path string `json:"path"`
}

// DeliverInput handles POST /input.
func (s *Server) DeliverInput(w http.ResponseWriter, r *http.Request) {
	var body InputRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Path == "" {
		http.Error(w, "Invalid request body: want {\"path\": \"...\"}", http.StatusBadRequest)
		return
	}
	s.answer(w, s.sink.Deliver(body.Path), "delivered")
}

// DeclineInput handles POST /input/decline.
func (s *Server) DeclineInput(w http.ResponseWriter, r *http.Request) {
	s.answer(w, s.sink.Decline(), "declined")
}

func (s *Server) answer(w http.ResponseWriter, err error, status string) {
	switch {
	case errors.Is(err, inputs.ErrNoPendingRequest):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		s.logger.Error("input delivery failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		s.writeJSON(w, http.StatusAccepted, map[string]string{"status": status})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// ListenAndServe serves h on addr until ctx is done, then shuts down gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
