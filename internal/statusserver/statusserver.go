// Package statusserver is the optional HTTP operational surface (§10.4):
// a liveness probe, a JSON progress snapshot, and Prometheus metrics
// exposition, started only when a status address is configured. It is
// never on the request path of any indexing or query operation.
package statusserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// StatsFunc returns the current progress snapshot of whatever long-running
// operation (cindex, gbuild, gwalk) this server was started alongside. The
// returned value is marshaled to JSON verbatim, so each caller passes its
// own Snapshot type.
type StatsFunc func() any

// Server is a small chi-backed HTTP server exposing /healthz, /stats and
// /metrics.
type Server struct {
	runID    string
	log      *logrus.Logger
	stats    StatsFunc
	registry *prometheus.Registry
	srv      *http.Server
}

// New builds a Server bound to addr. stats may be nil, in which case /stats
// always reports an empty object. If log is nil, logrus.StandardLogger() is
// used.
func New(addr string, stats StatsFunc, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if stats == nil {
		stats = func() any { return struct{}{} }
	}

	registry := prometheus.NewRegistry()
	s := &Server{
		runID:    uuid.NewString(),
		log:      log,
		stats:    stats,
		registry: registry,
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/stats", s.handleStats)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	s.srv = &http.Server{Addr: addr, Handler: r}
	return s
}

// RunID returns the unique identifier assigned to this server's process
// lifetime. It is available only through this method; log lines and /stats
// responses do not carry it.
func (s *Server) RunID() string { return s.runID }

// Registry returns the Prometheus registry backing /metrics, so the caller
// can register its own collectors before or after Start.
func (s *Server) Registry() *prometheus.Registry { return s.registry }

// Start begins serving in the background. It returns immediately; call
// Shutdown to stop serving.
func (s *Server) Start() {
	go func() {
		s.log.WithField("addr", s.srv.Addr).Info("status server listening")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("status server stopped")
		}
	}()
}

// Shutdown gracefully stops the server within ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.stats())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Response-Time", time.Now().UTC().Format(time.RFC3339))
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
