package entities

import "time"

// NotificationKind tags what produced a notification.
type NotificationKind string

// KindVoteRequest asks a participant to rate the others after an event.
const KindVoteRequest NotificationKind = "vote_request"

// Notification is an inbox item addressed to one recipient. It is append-only for the sweep.
type Notification struct {
	ID        string
	Recipient string
	Kind      NotificationKind
	GroupID   string
	Message   string
	CreatedAt time.Time
	Read      bool
}
