// Package server exposes the triage pipeline over HTTP. Everything here is
// outside the decision core: transport framing, request-schema validation,
// authentication, rate limiting and CORS all run before the pipeline sees a
// request.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/decisio-ai/decisio/internal/audit"
	"github.com/decisio-ai/decisio/internal/auth"
	"github.com/decisio-ai/decisio/internal/config"
	"github.com/decisio-ai/decisio/internal/metrics"
	"github.com/decisio-ai/decisio/internal/pipeline"
	"github.com/decisio-ai/decisio/internal/ratelimit"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Server wraps the HTTP components for Decisio.
type Server struct {
	mux      *http.ServeMux
	cfg      *config.Config
	auth     *auth.Auth
	limiter  ratelimit.Limiter
	pipeline *pipeline.Pipeline
	audit    *audit.Emitter
	metrics  *metrics.Metrics
	log      zerolog.Logger

	httpServer *http.Server
}

// New creates a server with all routes registered. audit and metrics may be
// nil.
func New(cfg *config.Config, authz *auth.Auth, limiter ratelimit.Limiter, pipe *pipeline.Pipeline, auditEmitter *audit.Emitter, m *metrics.Metrics, log zerolog.Logger) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		cfg:      cfg,
		auth:     authz,
		limiter:  limiter,
		pipeline: pipe,
		audit:    auditEmitter,
		metrics:  m,
		log:      log,
	}

	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/readyz", s.handleReadyz)
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.Handle("/v1/decision", s.withCORS(s.withRequestLog(s.withAuth(s.withRateLimit(http.HandlerFunc(s.handleDecision))))))

	return s
}

// Handler returns the root handler, wrapped with the transport-level panic
// recovery.
func (s *Server) Handler() http.Handler {
	return s.withRecover(s.mux)
}

// Start runs the HTTP server on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: time.Duration(s.cfg.Server.ReadHeaderTimeoutSec) * time.Second,
		ReadTimeout:       time.Duration(s.cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Server.IdleTimeoutSec) * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and closes the audit trail.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.audit.Close(ctx)
	return err
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not_found", "unknown route")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "operational",
		"service": "decisio",
		"version": Version,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleReadyz reports whether the service can take traffic. The pipeline
// itself is always ready (it is stateless and fail-safe); readiness only
// reflects construction having completed.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.pipeline == nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", "pipeline not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the fixed error envelope used on every non-200 path.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}
