// Package web serves the optional status API for a running import:
// liveness, live progress, the final report, and recent run history.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/recipedb/nutriload/internal/core"
	"github.com/recipedb/nutriload/internal/logging"
)

// RunLister provides past run history, typically the Postgres store.
type RunLister interface {
	RecentRuns(ctx context.Context, limit int) ([]core.RunSummary, error)
}

// Server exposes import state over HTTP. All snapshot setters are safe to
// call from the import goroutine while requests are served.
type Server struct {
	httpServer *http.Server

	mu       sync.RWMutex
	progress core.Progress
	report   *core.Report

	runs RunLister
}

func NewServer(addr string, runs RunLister) *Server {
	s := &Server{runs: runs}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/progress", s.handleProgress)
	r.Get("/api/report", s.handleReport)
	r.Get("/api/runs", s.handleRuns)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// SetProgress publishes a progress snapshot.
func (s *Server) SetProgress(p core.Progress) {
	s.mu.Lock()
	s.progress = p
	s.mu.Unlock()
}

// SetReport publishes the final report once the run completes.
func (s *Server) SetReport(rep *core.Report) {
	s.mu.Lock()
	s.report = rep
	s.mu.Unlock()
}

// ListenAndServe blocks until the server stops. http.ErrServerClosed is
// swallowed, so a graceful Shutdown returns nil.
func (s *Server) ListenAndServe() error {
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	p := s.progress
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	rep := s.report
	s.mu.RUnlock()
	if rep == nil {
		writeError(w, http.StatusNotFound, "run still in progress")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotFound, "run history not available")
		return
	}
	limit := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be 1-500")
			return
		}
		limit = n
	}
	runs, err := s.runs.RecentRuns(r.Context(), limit)
	if err != nil {
		logging.FromContext(r.Context()).Error("list runs failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list runs")
		return
	}
	if runs == nil {
		runs = []core.RunSummary{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
