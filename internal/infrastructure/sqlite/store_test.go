package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"grupy/internal/application"
	"grupy/internal/domain/entities"
	"grupy/internal/domain/rules"
	"grupy/internal/infrastructure/storetest"
	"grupy/internal/ports/output"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "grupy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Conformance(t *testing.T) {
	t.Parallel()
	storetest.Run(t, func(t *testing.T) output.Store { return openTestStore(t) })
}

func TestOpen_ReappliesMigrations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "grupy.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.CreateGroup(ctx, &entities.Group{ID: "g1", Creator: "alice", ScheduledDate: "2025-01-01", ScheduledTime: "10:00"}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	g, err := s.GetGroup(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, g.Participants)

	_, err = Open(ctx, " ")
	require.Error(t, err)
}

func TestStore_ConcurrentSweepsAgainstSharedFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "grupy.db")

	a, err := Open(ctx, path)
	require.NoError(t, err)
	defer a.Close()
	b, err := Open(ctx, path)
	require.NoError(t, err)
	defer b.Close()

	now := time.Date(2025, time.May, 2, 12, 0, 0, 0, time.UTC)
	at := now.Add(-25 * time.Hour)
	for _, id := range []string{"g1", "g2", "g3"} {
		require.NoError(t, a.CreateGroup(ctx, &entities.Group{
			ID: id, Name: id, Creator: "alice", Participants: []string{"bob", "carol"},
			ScheduledDate: at.Format(entities.DateLayout), ScheduledTime: at.Format(entities.TimeLayout),
		}))
	}

	clock := output.TimeSourceFunc(func() time.Time { return now })
	r := rules.New(24*time.Hour, time.UTC)
	engines := []*application.SweepEngine{
		application.NewSweepEngine(a, a, r, application.WithClock(clock)),
		application.NewSweepEngine(b, b, r, application.WithClock(clock), application.WithConcurrency(3)),
		application.NewSweepEngine(a, a, r, application.WithClock(clock), application.WithConcurrency(2)),
	}

	errs := make(chan error, len(engines))
	for _, e := range engines {
		go func() {
			rep, err := e.Sweep(ctx)
			if err == nil && len(rep.Failed()) > 0 {
				err = rep.Failed()[0].Err()
			}
			errs <- err
		}()
	}
	for range engines {
		require.NoError(t, <-errs)
	}

	for _, u := range []string{"alice", "bob", "carol"} {
		p, err := a.GetProfile(ctx, u)
		require.NoError(t, err)
		require.Equal(t, 3, p.EventsAttended, u)

		inbox, err := a.ListNotifications(ctx, u)
		require.NoError(t, err)
		require.Len(t, inbox, 3, u)
	}
}
