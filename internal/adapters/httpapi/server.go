// Package httpapi exposes the read side and the manual sweep trigger over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"grupy/internal/adapters/trigger"
	"grupy/internal/domain"
	"grupy/internal/logger"
	"grupy/internal/ports/input"
	"grupy/internal/version"
)

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the router.
type Options struct {
	// InlineSweep runs a sweep before serving every GET under /api/users.
	InlineSweep bool
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

type server struct {
	inbox   input.InboxUseCase
	sweeper input.Sweeper
	db      Pinger
}

// NewHandler builds the HTTP router.
func NewHandler(inbox input.InboxUseCase, sweeper input.Sweeper, db Pinger, opts Options) http.Handler {
	s := &server{inbox: inbox, sweeper: sweeper, db: db}

	users := http.NewServeMux()
	users.HandleFunc("GET /api/users/{username}/notifications", s.listNotifications)
	users.HandleFunc("POST /api/users/{username}/notifications/{id}/read", s.markRead)
	users.HandleFunc("GET /api/users/{username}/profile", s.getProfile)

	var usersHandler http.Handler = users
	if opts.InlineSweep {
		usersHandler = trigger.Inline(sweeper, users)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /health/db", s.healthDB)
	mux.HandleFunc("POST /api/sweep", s.sweep)
	mux.Handle("/api/users/", usersHandler)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}
	return accessLog(mux)
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.Short()})
}

func (s *server) healthDB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		logger.WarnKV(ctx, "Database health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) listNotifications(w http.ResponseWriter, r *http.Request) {
	items, err := s.inbox.ListNotifications(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]notificationView, len(items))
	for i, n := range items {
		out[i] = toNotificationView(n)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) markRead(w http.ResponseWriter, r *http.Request) {
	if err := s.inbox.MarkRead(r.Context(), r.PathValue("username"), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.inbox.GetProfile(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileView(p))
}

func (s *server) sweep(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithName(r.Context(), "manual")
	rep, err := s.sweeper.Sweep(ctx)
	view := toReportView(rep)
	if err != nil {
		logger.ErrorKV(ctx, "Manual sweep failed", "error", err)
		view.Error = err.Error()
		writeJSON(w, http.StatusInternalServerError, view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrGroupNotFound):
		status = http.StatusNotFound
	case errors.Is(err, context.Canceled):
		status = 499
	}
	if status == http.StatusInternalServerError {
		logger.ErrorKV(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.DebugKV(r.Context(), "HTTP request",
			"method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
