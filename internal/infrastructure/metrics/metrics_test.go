package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"grupy/internal/version"
)

func TestSweepMetrics_Counters(t *testing.T) {
	t.Parallel()
	m := NewSweepMetrics()

	m.SweepFinished(120*time.Millisecond, nil)
	m.SweepFinished(time.Second, errors.New("list groups"))
	m.AttendanceMarked(2)
	m.AttendanceMarked(0)
	m.VoteRequestsSent(5)
	m.GroupFailed("store")
	m.GroupFailed("store")
	m.GroupFailed("data_quality")

	require.InDelta(t, 1, testutil.ToFloat64(m.sweeps.WithLabelValues("ok")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.sweeps.WithLabelValues("error")), 0)
	require.InDelta(t, 2, testutil.ToFloat64(m.attendanceMarked), 0)
	require.InDelta(t, 5, testutil.ToFloat64(m.voteRequestsSent), 0)
	require.InDelta(t, 2, testutil.ToFloat64(m.groupFailures.WithLabelValues("store")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.groupFailures.WithLabelValues("data_quality")), 0)
	require.Equal(t, 1, testutil.CollectAndCount(m.sweepDuration))
	require.Positive(t, testutil.ToFloat64(m.lastSweep))
}

func TestSweepMetrics_Handler(t *testing.T) {
	t.Parallel()
	m := NewSweepMetrics()
	m.VoteRequestsSent(3)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "grupy_sweep_vote_requests_total 3")
	require.Contains(t, string(body), "go_goroutines")
	require.Contains(t, string(body), `grupy_build_info{commit="`+version.Get().Commit+`"`)
}
