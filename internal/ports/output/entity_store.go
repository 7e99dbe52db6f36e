package output

import (
	"context"

	"grupy/internal/domain/entities"
)

// EntityStore is the persistence boundary of the sweep.
//
// The store is shared with other writers. The two Try* methods must be atomic
// at the store layer: a single conditional write or an equivalent transaction.
type EntityStore interface {
	// ListGroups returns a snapshot of every group with participants and the vote-request set attached.
	ListGroups(ctx context.Context) ([]entities.Group, error)
	// TryMarkAttendanceProcessed flips attendance_processed false→true and
	// returns true only for the caller that performed the flip.
	TryMarkAttendanceProcessed(ctx context.Context, groupID string) (bool, error)
	// IncrementAttendanceStats adds one attended event to the recipient profile and recomputes its status.
	// Callers guard it with TryMarkAttendanceProcessed.
	IncrementAttendanceStats(ctx context.Context, recipient string) error
	// TryRecordVoteRequestSent inserts recipient into the group's sent set and
	// returns true only if this call added it.
	TryRecordVoteRequestSent(ctx context.Context, groupID, recipient string) (bool, error)
}

// CandidateLister is implemented by stores able to pre-filter groups the sweep still has work on.
type CandidateLister interface {
	ListSweepCandidates(ctx context.Context) ([]entities.Group, error)
}

// GroupRepository is the write side used by the CRUD layer and seeding.
type GroupRepository interface {
	CreateGroup(ctx context.Context, group *entities.Group) error
	GetGroup(ctx context.Context, groupID string) (*entities.Group, error)
	AddParticipant(ctx context.Context, groupID, username string) error
}

// ProfileRepository reads and creates per-user aggregate profiles.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile entities.Profile) error
	GetProfile(ctx context.Context, username string) (*entities.Profile, error)
}

// NotificationRepository is the inbox read side.
type NotificationRepository interface {
	ListNotifications(ctx context.Context, recipient string) ([]entities.Notification, error)
	MarkNotificationRead(ctx context.Context, recipient, notificationID string) error
}

// Store bundles everything a storage adapter provides.
type Store interface {
	EntityStore
	CandidateLister
	NotificationSink
	GroupRepository
	ProfileRepository
	NotificationRepository
	Ping(ctx context.Context) error
	Close() error
}
