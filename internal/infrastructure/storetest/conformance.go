// Package storetest checks that a storage adapter honours the store contract
// the sweep relies on. Every adapter test calls Run with a factory returning a
// fresh, empty store.
package storetest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grupy/internal/application"
	"grupy/internal/domain"
	"grupy/internal/domain/entities"
	"grupy/internal/domain/rules"
	"grupy/internal/ports/output"
)

// Factory returns an empty store. Cleanup is registered on t.
type Factory func(t *testing.T) output.Store

// Run executes the conformance suite. Subtests run sequentially so factories may share a database.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("group round trip", func(t *testing.T) { testGroupRoundTrip(t, newStore(t)) })
	t.Run("participants", func(t *testing.T) { testParticipants(t, newStore(t)) })
	t.Run("attendance flips once", func(t *testing.T) { testAttendanceOnce(t, newStore(t)) })
	t.Run("vote request recorded once", func(t *testing.T) { testVoteRequestOnce(t, newStore(t)) })
	t.Run("sweep candidates", func(t *testing.T) { testCandidates(t, newStore(t)) })
	t.Run("attendance stats", func(t *testing.T) { testAttendanceStats(t, newStore(t)) })
	t.Run("inbox", func(t *testing.T) { testInbox(t, newStore(t)) })
	t.Run("participant names kept verbatim", func(t *testing.T) { testVerbatimParticipants(t, newStore(t)) })
}

func testGroupRoundTrip(t *testing.T, s output.Store) {
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	g := &entities.Group{
		Creator:       "alice",
		Name:          "Cena sociale",
		Category:      "cibo",
		City:          "Bologna",
		ScheduledDate: "2025-03-14",
		ScheduledTime: "20:30",
		Participants:  []string{"bob"},
	}
	require.NoError(t, s.CreateGroup(ctx, g))
	require.NotEmpty(t, g.ID)

	got, err := s.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	require.Equal(t, g.ID, got.ID)
	require.Equal(t, "Cena sociale", got.Name)
	require.Equal(t, "Bologna", got.City)
	require.Equal(t, "2025-03-14", got.ScheduledDate)
	require.Equal(t, "20:30", got.ScheduledTime)
	require.Equal(t, []string{"alice", "bob"}, got.Participants)
	require.False(t, got.AttendanceProcessed)
	require.Empty(t, got.VoteRequestsSent)

	_, err = s.GetGroup(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrGroupNotFound)

	all, err := s.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func testParticipants(t *testing.T, s output.Store) {
	ctx := context.Background()
	g := &entities.Group{ID: "g1", Creator: "alice", ScheduledDate: "2025-03-14", ScheduledTime: "20:30"}
	require.NoError(t, s.CreateGroup(ctx, g))

	require.NoError(t, s.AddParticipant(ctx, "g1", "bob"))
	require.NoError(t, s.AddParticipant(ctx, "g1", "carol"))
	require.ErrorIs(t, s.AddParticipant(ctx, "g1", "bob"), domain.ErrParticipantExists)
	require.ErrorIs(t, s.AddParticipant(ctx, "missing", "bob"), domain.ErrGroupNotFound)
	require.ErrorIs(t, s.AddParticipant(ctx, "g1", ""), domain.ErrEmptyParticipant)

	got, err := s.GetGroup(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob", "carol"}, got.Participants)
}

func testAttendanceOnce(t *testing.T, s output.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateGroup(ctx, &entities.Group{ID: "g1", Creator: "alice", ScheduledDate: "2025-03-14", ScheduledTime: "20:30"}))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.TryMarkAttendanceProcessed(ctx, "g1")
			if assert.NoError(t, err) && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, wins.Load())

	ok, err := s.TryMarkAttendanceProcessed(ctx, "g1")
	require.NoError(t, err)
	require.False(t, ok)

	got, err := s.GetGroup(ctx, "g1")
	require.NoError(t, err)
	require.True(t, got.AttendanceProcessed)

	_, err = s.TryMarkAttendanceProcessed(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrGroupNotFound)
}

func testVoteRequestOnce(t *testing.T, s output.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateGroup(ctx, &entities.Group{
		ID: "g1", Creator: "alice", Participants: []string{"bob"}, ScheduledDate: "2025-03-14", ScheduledTime: "20:30",
	}))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.TryRecordVoteRequestSent(ctx, "g1", "alice")
			if assert.NoError(t, err) && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, wins.Load())

	ok, err := s.TryRecordVoteRequestSent(ctx, "g1", "bob")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := s.GetGroup(ctx, "g1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice", "bob"}, got.VoteRequestsSent)

	_, err = s.TryRecordVoteRequestSent(ctx, "missing", "alice")
	require.ErrorIs(t, err, domain.ErrGroupNotFound)
}

func testCandidates(t *testing.T, s output.Store) {
	ctx := context.Background()
	mk := func(id string, processed bool, participants, sent []string) {
		require.NoError(t, s.CreateGroup(ctx, &entities.Group{
			ID: id, ScheduledDate: "2025-03-14", ScheduledTime: "20:30",
			Participants: participants, AttendanceProcessed: processed, VoteRequestsSent: sent,
		}))
	}
	mk("fresh", false, []string{"alice"}, nil)
	mk("voting", true, []string{"alice", "bob"}, []string{"alice"})
	mk("settled", true, []string{"alice", "bob"}, []string{"alice", "bob"})
	mk("empty", true, nil, nil)

	got, err := s.ListSweepCandidates(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, g := range got {
		ids = append(ids, g.ID)
	}
	require.ElementsMatch(t, []string{"fresh", "voting"}, ids)

	all, err := s.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
}

func testAttendanceStats(t *testing.T, s output.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateProfile(ctx, entities.Profile{Username: "alice", FeedbackUp: 9, FeedbackDown: 1, EventsAttended: 10}))
	// Existing profiles are left untouched.
	require.NoError(t, s.CreateProfile(ctx, entities.NewProfile("alice")))

	p, err := s.GetProfile(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 10, p.EventsAttended)
	require.Equal(t, entities.StatusPunctual, p.Status)

	require.NoError(t, s.IncrementAttendanceStats(ctx, "alice"))
	p, err = s.GetProfile(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 11, p.EventsAttended)
	require.Equal(t, entities.StatusExpert, p.Status)

	// A participant without a profile gets one.
	require.NoError(t, s.IncrementAttendanceStats(ctx, "newcomer"))
	p, err = s.GetProfile(ctx, "newcomer")
	require.NoError(t, err)
	require.Equal(t, 1, p.EventsAttended)
	require.Equal(t, entities.StatusNew, p.Status)

	_, err = s.GetProfile(ctx, "ghost")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func testInbox(t *testing.T, s output.Store) {
	ctx := context.Background()
	base := time.Date(2025, time.March, 15, 21, 0, 0, 0, time.UTC)

	first, err := s.Emit(ctx, entities.Notification{
		Recipient: "alice", Kind: entities.KindVoteRequest, GroupID: "g1", Message: "first", CreatedAt: base,
	})
	require.NoError(t, err)
	second, err := s.Emit(ctx, entities.Notification{
		Recipient: "alice", Kind: entities.KindVoteRequest, GroupID: "g2", Message: "second", CreatedAt: base.Add(time.Hour),
	})
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	inbox, err := s.ListNotifications(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	require.Equal(t, second, inbox[0].ID)
	require.Equal(t, "second", inbox[0].Message)
	require.Equal(t, entities.KindVoteRequest, inbox[0].Kind)
	require.Equal(t, "g2", inbox[0].GroupID)
	require.True(t, base.Add(time.Hour).Equal(inbox[0].CreatedAt))
	require.False(t, inbox[0].Read)

	require.ErrorIs(t, s.MarkNotificationRead(ctx, "bob", first), domain.ErrNotificationNotFound)
	require.NoError(t, s.MarkNotificationRead(ctx, "alice", first))

	inbox, err = s.ListNotifications(ctx, "alice")
	require.NoError(t, err)
	require.True(t, inbox[1].Read)

	empty, err := s.ListNotifications(ctx, "bob")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func testVerbatimParticipants(t *testing.T, s output.Store) {
	ctx := context.Background()
	now := time.Date(2025, time.June, 10, 18, 0, 0, 0, time.UTC)
	at := now.Add(-48 * time.Hour)
	require.NoError(t, s.CreateGroup(ctx, &entities.Group{
		ID: "g1", Name: "Trekking",
		ScheduledDate: at.Format(entities.DateLayout), ScheduledTime: at.Format(entities.TimeLayout),
		Participants: []string{"alice ", "", "alice"},
	}))

	g, err := s.GetGroup(ctx, "g1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice ", "alice"}, g.Participants)

	engine := application.NewSweepEngine(s, s, rules.New(24*time.Hour, time.UTC),
		application.WithClock(output.TimeSourceFunc(func() time.Time { return now })))
	for range 3 {
		_, err := engine.Sweep(ctx)
		require.NoError(t, err)
	}

	pending, err := s.ListSweepCandidates(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)

	g, err = s.GetGroup(ctx, "g1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice ", "alice"}, g.VoteRequestsSent)

	for _, name := range []string{"alice ", "alice"} {
		p, err := s.GetProfile(ctx, name)
		require.NoError(t, err, name)
		require.Equal(t, 1, p.EventsAttended, name)

		inbox, err := s.ListNotifications(ctx, name)
		require.NoError(t, err, name)
		require.Len(t, inbox, 1, name)
		require.Equal(t, "g1", inbox[0].GroupID)
	}
}
