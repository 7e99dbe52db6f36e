package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grupy/internal/domain"
	"grupy/internal/domain/entities"
	"grupy/internal/infrastructure/storetest"
	"grupy/internal/ports/output"
)

func TestStore_CreateGroupAddsCreator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStore()

	g := &entities.Group{Creator: "alice", Name: "Pizza", ScheduledDate: "2025-05-01", ScheduledTime: "20:00"}
	require.NoError(t, s.CreateGroup(ctx, g))
	require.NotEmpty(t, g.ID)

	require.NoError(t, s.AddParticipant(ctx, g.ID, "bob"))
	require.ErrorIs(t, s.AddParticipant(ctx, g.ID, "bob"), domain.ErrParticipantExists)
	require.ErrorIs(t, s.AddParticipant(ctx, "missing", "bob"), domain.ErrGroupNotFound)

	got, err := s.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, got.Participants)
	require.False(t, got.AttendanceProcessed)
	require.Empty(t, got.VoteRequestsSent)
}

func TestStore_TryMarkAttendanceProcessed_Once(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStore()
	g := &entities.Group{ID: "g1", Creator: "alice"}
	require.NoError(t, s.CreateGroup(ctx, g))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.TryMarkAttendanceProcessed(ctx, "g1")
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, wins.Load())

	_, err := s.TryMarkAttendanceProcessed(ctx, "nope")
	require.ErrorIs(t, err, domain.ErrGroupNotFound)
}

func TestStore_TryRecordVoteRequestSent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.CreateGroup(ctx, &entities.Group{ID: "g1", Creator: "alice"}))

	ok, err := s.TryRecordVoteRequestSent(ctx, "g1", "alice")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.TryRecordVoteRequestSent(ctx, "g1", "alice")
	require.NoError(t, err)
	require.False(t, ok)

	got, err := s.GetGroup(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, got.VoteRequestsSent)
}

func TestStore_ListSweepCandidates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.CreateGroup(ctx, &entities.Group{ID: "fresh", Creator: "alice"}))
	require.NoError(t, s.CreateGroup(ctx, &entities.Group{ID: "voting", Creator: "alice", AttendanceProcessed: true}))
	require.NoError(t, s.CreateGroup(ctx, &entities.Group{
		ID: "done", Creator: "alice", AttendanceProcessed: true, VoteRequestsSent: []string{"alice"},
	}))

	all, err := s.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	candidates, err := s.ListSweepCandidates(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(candidates))
	for _, g := range candidates {
		ids = append(ids, g.ID)
	}
	require.Equal(t, []string{"fresh", "voting"}, ids)
}

func TestStore_SnapshotsAreCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.CreateGroup(ctx, &entities.Group{ID: "g1", Creator: "alice"}))

	groups, err := s.ListGroups(ctx)
	require.NoError(t, err)
	groups[0].Participants[0] = "mallory"
	groups[0].AttendanceProcessed = true

	got, err := s.GetGroup(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, got.Participants)
	require.False(t, got.AttendanceProcessed)
}

func TestStore_ProfilesAndInbox(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStore()

	_, err := s.GetProfile(ctx, "alice")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)

	require.NoError(t, s.CreateProfile(ctx, entities.NewProfile("alice")))
	for range 6 {
		require.NoError(t, s.IncrementAttendanceStats(ctx, "alice"))
	}
	p, err := s.GetProfile(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 6, p.EventsAttended)
	require.Equal(t, entities.StatusPunctual, p.Status)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	first, err := s.Emit(ctx, entities.Notification{Recipient: "alice", Kind: entities.KindVoteRequest, CreatedAt: base})
	require.NoError(t, err)
	second, err := s.Emit(ctx, entities.Notification{Recipient: "alice", Kind: entities.KindVoteRequest, CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = s.Emit(ctx, entities.Notification{Recipient: "bob", Kind: entities.KindVoteRequest})
	require.NoError(t, err)

	inbox, err := s.ListNotifications(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	require.Equal(t, second, inbox[0].ID)
	require.Equal(t, first, inbox[1].ID)

	require.NoError(t, s.MarkNotificationRead(ctx, "alice", first))
	require.ErrorIs(t, s.MarkNotificationRead(ctx, "bob", first), domain.ErrNotificationNotFound)

	inbox, err = s.ListNotifications(ctx, "alice")
	require.NoError(t, err)
	require.True(t, inbox[1].Read)
	require.False(t, inbox[0].Read)
}

func TestStore_CanceledContext(t *testing.T) {
	t.Parallel()
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListGroups(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStore_Conformance(t *testing.T) {
	t.Parallel()
	storetest.Run(t, func(*testing.T) output.Store { return NewStore() })
}
