// Package status serves the operational HTTP surface: liveness, Prometheus
// metrics, and live run progress.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pagesnap/pagesnap/internal/metrics"
	"github.com/pagesnap/pagesnap/internal/results"
)

// ProgressSource supplies the current run tallies.
type ProgressSource interface {
	Snapshot() results.Summary
}

// Server is the status endpoint. It runs beside the crawl and never
// influences it.
type Server struct {
	srv      *http.Server
	progress ProgressSource
	logger   *zap.Logger
}

// New builds the server on addr.
func New(addr string, progress ProgressSource, logger *zap.Logger) *Server {
	metrics.Init()

	s := &Server{progress: progress, logger: logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/progress", s.handleProgress)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		s.logger.Info("status server started", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status server error", zap.Error(err))
		}
	}()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown status server: %w", err)
	}
	return nil
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

// handleProgress reports run tallies without the per-site detail; the full
// result set belongs to the run summary file.
func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request) {
	snap := s.progress.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":          snap.RunID,
		"started_at":      snap.StartedAt,
		"sites_total":     snap.SitesTotal,
		"sites_succeeded": snap.SitesSucceeded,
		"sites_partial":   snap.SitesPartial,
		"sites_failed":    snap.SitesFailed,
		"pages_total":     snap.PagesTotal,
		"pages_succeeded": snap.PagesSucceeded,
	}, s.logger)
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write JSON failed", zap.Error(err))
	}
}
