package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"grupy/internal/application"
	"grupy/internal/domain/entities"
	"grupy/internal/domain/rules"
	"grupy/internal/infrastructure/memory"
	"grupy/internal/infrastructure/metrics"
	"grupy/internal/ports/output"
	"grupy/internal/version"
)

var now = time.Date(2025, time.September, 20, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	handler http.Handler
}

func newFixture(t *testing.T, opts Options) fixture {
	t.Helper()
	store := memory.NewStore()
	engine := application.NewSweepEngine(store, store, rules.New(24*time.Hour, time.UTC),
		application.WithClock(output.TimeSourceFunc(func() time.Time { return now })))
	inbox := application.NewInboxService(store, store)
	return fixture{store: store, handler: NewHandler(inbox, engine, store, opts)}
}

func (f fixture) seedExpiredGroup(t *testing.T, ago time.Duration) {
	t.Helper()
	at := now.Add(-ago)
	require.NoError(t, f.store.CreateGroup(context.Background(), &entities.Group{
		ID: "g1", Name: "Gita al lago", Creator: "alice", Participants: []string{"bob"},
		ScheduledDate: at.Format(entities.DateLayout), ScheduledTime: at.Format(entities.TimeLayout),
	}))
}

func (f fixture) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	require.Equal(t, "ok", body["status"])
	require.Equal(t, version.Short(), body["version"])

	rec = f.do(t, http.MethodGet, "/health/db")
	require.Equal(t, http.StatusOK, rec.Code)
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthDB_Down(t *testing.T) {
	t.Parallel()
	store := memory.NewStore()
	h := NewHandler(application.NewInboxService(store, store), nil, downPinger{}, Options{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/db", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "connection refused", decode[map[string]string](t, rec)["error"])
}

func TestManualSweepThenInbox(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Options{})
	f.seedExpiredGroup(t, 30*time.Hour)

	// Without inline sweeping the inbox is empty until a sweep runs.
	rec := f.do(t, http.MethodGet, "/api/users/bob/notifications")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decode[[]notificationView](t, rec))

	rec = f.do(t, http.MethodPost, "/api/sweep")
	require.Equal(t, http.StatusOK, rec.Code)
	rep := decode[reportView](t, rec)
	require.Equal(t, 1, rep.AttendanceMarked)
	require.Equal(t, 2, rep.VoteRequestsSent)
	require.Len(t, rep.Groups, 1)
	require.Equal(t, "g1", rep.Groups[0].GroupID)

	rec = f.do(t, http.MethodGet, "/api/users/bob/notifications")
	items := decode[[]notificationView](t, rec)
	require.Len(t, items, 1)
	require.Equal(t, "vote_request", items[0].Kind)
	require.Equal(t, "g1", items[0].GroupID)
	require.False(t, items[0].Read)

	rec = f.do(t, http.MethodPost, "/api/users/bob/notifications/"+items[0].ID+"/read")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/users/alice/notifications/"+items[0].ID+"/read")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/users/bob/notifications")
	require.True(t, decode[[]notificationView](t, rec)[0].Read)

	rec = f.do(t, http.MethodGet, "/api/users/bob/profile")
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[profileView](t, rec)
	require.Equal(t, 1, profile.EventsAttended)
	require.Equal(t, entities.StatusNew, profile.Status)

	// A second manual sweep fires nothing.
	rec = f.do(t, http.MethodPost, "/api/sweep")
	rep = decode[reportView](t, rec)
	require.Zero(t, rep.AttendanceMarked)
	require.Zero(t, rep.VoteRequestsSent)
}

func TestInlineSweepOnRead(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Options{InlineSweep: true})
	f.seedExpiredGroup(t, 25*time.Hour)

	rec := f.do(t, http.MethodGet, "/api/users/alice/notifications")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]notificationView](t, rec)
	require.Len(t, items, 1)
	require.Contains(t, items[0].Message, "Gita al lago")

	// Repeated reads never duplicate.
	rec = f.do(t, http.MethodGet, "/api/users/alice/notifications")
	require.Len(t, decode[[]notificationView](t, rec), 1)
}

func TestProfileNotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/api/users/ghost/profile")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/users/ghost/profile")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	m := metrics.NewSweepMetrics()
	m.AttendanceMarked(4)
	f := newFixture(t, Options{Metrics: m.Handler()})

	rec := f.do(t, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "grupy_sweep_attendance_marked_total 4"))

	rec = newFixture(t, Options{}).do(t, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
