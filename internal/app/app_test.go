package app

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"grupy/internal/config"
	"grupy/internal/domain/entities"
	"grupy/internal/infrastructure/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		StoreDriver:      config.DriverMemory,
		HTTPAddr:         "127.0.0.1:0",
		SweepInterval:    time.Hour,
		VoteRequestDelay: 24 * time.Hour,
		SweepConcurrency: 2,
		Locale:           "en",
	}
}

func seed(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	past := time.Now().Add(-48 * time.Hour).In(time.UTC)
	require.NoError(t, store.CreateGroup(ctx, &entities.Group{
		ID: "g1", Name: "Trekking", Creator: "alice", Participants: []string{"bob"},
		ScheduledDate: past.Format(entities.DateLayout), ScheduledTime: past.Format(entities.TimeLayout),
	}))
	require.NoError(t, store.CreateGroup(ctx, &entities.Group{
		ID: "broken", Creator: "carol", ScheduledDate: "tomorrow", ScheduledTime: "noon",
	}))
}

func TestSweepOnce_PrintsSummary(t *testing.T) {
	t.Parallel()
	store := memory.NewStore()
	seed(t, store)
	a, err := newWithStore(context.Background(), testConfig(), store)
	require.NoError(t, err)
	defer a.Close()

	var out bytes.Buffer
	rep, err := a.SweepOnce(context.Background(), &out)
	require.NoError(t, err)
	require.Equal(t, 2, rep.VoteRequestsSent())

	require.Contains(t, out.String(), "Groups examined: 2. Attendance recorded: 1. Vote requests: 2. Errors: 1.")
	require.Contains(t, out.String(), "broken:")

	inbox, err := store.ListNotifications(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	require.Equal(t, `How did "Trekking" go? Leave your feedback for the other participants.`, inbox[0].Message)
}

func TestServe_SweepsAndShutsDown(t *testing.T) {
	t.Parallel()
	store := memory.NewStore()
	seed(t, store)
	a, err := newWithStore(context.Background(), testConfig(), store)
	require.NoError(t, err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.serve(ctx, lis, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
	}()

	// The ticker sweeps once at start.
	require.Eventually(t, func() bool {
		g, err := store.GetGroup(context.Background(), "g1")
		return err == nil && g.AttendanceProcessed && len(g.VoteRequestsSent) == 2
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + lis.Addr().String() + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestNewWithStore_DiscordRelay(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.DiscordToken = "token"
	cfg.DiscordChannelID = "42"

	a, err := newWithStore(context.Background(), cfg, memory.NewStore())
	require.NoError(t, err)
	require.NotNil(t, a.engine)
}
