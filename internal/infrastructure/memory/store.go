// Package memory provides an in-process implementation of the entity store,
// used for tests and single-process demos. All primitives hold one mutex,
// which makes every conditional write trivially atomic.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"grupy/internal/domain"
	"grupy/internal/domain/entities"
	"grupy/internal/ports/output"
)

var _ output.Store = (*Store)(nil)

type groupRecord struct {
	group     entities.Group
	voteSent  map[string]struct{}
	voteOrder []string
}

// Store keeps groups, profiles and notifications in maps.
type Store struct {
	mu            sync.Mutex
	groups        map[string]*groupRecord
	groupOrder    []string
	profiles      map[string]entities.Profile
	notifications []entities.Notification
	newID         func() string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		groups:   make(map[string]*groupRecord),
		profiles: make(map[string]entities.Profile),
		newID:    uuid.NewString,
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

// CreateGroup stores a copy of group, generating an ID when empty. The creator joins automatically.
func (s *Store) CreateGroup(ctx context.Context, group *entities.Group) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if group.ID == "" {
		group.ID = s.newID()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}
	participants := make([]string, 0, len(group.Participants)+1)
	if group.Creator != "" && !slices.Contains(group.Participants, group.Creator) {
		participants = append(participants, group.Creator)
	}
	for _, p := range group.Participants {
		if p != "" && !slices.Contains(participants, p) {
			participants = append(participants, p)
		}
	}
	group.Participants = participants

	rec := &groupRecord{group: cloneGroup(*group), voteSent: make(map[string]struct{})}
	rec.group.VoteRequestsSent = nil
	for _, p := range group.VoteRequestsSent {
		if _, ok := rec.voteSent[p]; !ok {
			rec.voteSent[p] = struct{}{}
			rec.voteOrder = append(rec.voteOrder, p)
		}
	}
	if _, exists := s.groups[group.ID]; !exists {
		s.groupOrder = append(s.groupOrder, group.ID)
	}
	s.groups[group.ID] = rec
	return nil
}

// GetGroup returns a snapshot of one group.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*entities.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.groups[groupID]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	g := rec.snapshot()
	return &g, nil
}

// AddParticipant joins username to the group.
func (s *Store) AddParticipant(ctx context.Context, groupID, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if username == "" {
		return domain.ErrEmptyParticipant
	}
	rec, ok := s.groups[groupID]
	if !ok {
		return domain.ErrGroupNotFound
	}
	if slices.Contains(rec.group.Participants, username) {
		return domain.ErrParticipantExists
	}
	rec.group.Participants = append(rec.group.Participants, username)
	return nil
}

// ListGroups returns snapshots of every group in creation order.
func (s *Store) ListGroups(ctx context.Context) ([]entities.Group, error) {
	return s.list(ctx, func(*entities.Group) bool { return true })
}

// ListSweepCandidates returns groups with attendance or vote requests still outstanding.
func (s *Store) ListSweepCandidates(ctx context.Context) ([]entities.Group, error) {
	return s.list(ctx, (*entities.Group).NeedsSweep)
}

func (s *Store) list(ctx context.Context, keep func(*entities.Group) bool) ([]entities.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entities.Group, 0, len(s.groupOrder))
	for _, id := range s.groupOrder {
		g := s.groups[id].snapshot()
		if keep(&g) {
			out = append(out, g)
		}
	}
	return out, nil
}

// TryMarkAttendanceProcessed flips the flag under the store lock.
func (s *Store) TryMarkAttendanceProcessed(ctx context.Context, groupID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.groups[groupID]
	if !ok {
		return false, domain.ErrGroupNotFound
	}
	if rec.group.AttendanceProcessed {
		return false, nil
	}
	rec.group.AttendanceProcessed = true
	return true, nil
}

// IncrementAttendanceStats bumps the recipient's counter, creating the profile when missing.
func (s *Store) IncrementAttendanceStats(ctx context.Context, recipient string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[recipient]
	if !ok {
		p = entities.NewProfile(recipient)
	}
	p.RecordAttendance()
	s.profiles[recipient] = p
	return nil
}

// TryRecordVoteRequestSent inserts recipient into the sent set under the store lock.
func (s *Store) TryRecordVoteRequestSent(ctx context.Context, groupID, recipient string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.groups[groupID]
	if !ok {
		return false, domain.ErrGroupNotFound
	}
	if _, sent := rec.voteSent[recipient]; sent {
		return false, nil
	}
	rec.voteSent[recipient] = struct{}{}
	rec.voteOrder = append(rec.voteOrder, recipient)
	return true, nil
}

// Emit appends the notification.
func (s *Store) Emit(ctx context.Context, n entities.Notification) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = s.newID()
	n.Read = false
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	s.notifications = append(s.notifications, n)
	return n.ID, nil
}

// ListNotifications returns the recipient's inbox, newest first.
func (s *Store) ListNotifications(ctx context.Context, recipient string) ([]entities.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entities.Notification
	for _, n := range s.notifications {
		if n.Recipient == recipient {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// MarkNotificationRead flags one of the recipient's notifications as read.
func (s *Store) MarkNotificationRead(ctx context.Context, recipient, notificationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].ID == notificationID && s.notifications[i].Recipient == recipient {
			s.notifications[i].Read = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

// CreateProfile stores a profile unless one already exists for the username.
func (s *Store) CreateProfile(ctx context.Context, profile entities.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[profile.Username]; ok {
		return nil
	}
	if strings.TrimSpace(profile.Status) == "" {
		profile.Status = profile.ComputeStatus()
	}
	s.profiles[profile.Username] = profile
	return nil
}

// GetProfile returns the username's profile.
func (s *Store) GetProfile(ctx context.Context, username string) (*entities.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[username]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &p, nil
}

func (r *groupRecord) snapshot() entities.Group {
	g := cloneGroup(r.group)
	g.VoteRequestsSent = slices.Clone(r.voteOrder)
	return g
}

func cloneGroup(g entities.Group) entities.Group {
	g.Participants = slices.Clone(g.Participants)
	g.VoteRequestsSent = slices.Clone(g.VoteRequestsSent)
	return g
}
