// Package rules holds the time-based transition predicates of a group.
// Every function is pure: same group and instant, same answer.
package rules

import (
	"fmt"
	"time"

	"grupy/internal/domain"
	"grupy/internal/domain/entities"
)

// DefaultVoteRequestDelay is how long after the scheduled instant participants are asked to vote.
const DefaultVoteRequestDelay = 24 * time.Hour

// Rules evaluates transitions for groups scheduled in Location.
type Rules struct {
	VoteRequestDelay time.Duration
	Location         *time.Location
}

// New returns Rules with defaults applied to zero values.
func New(voteRequestDelay time.Duration, loc *time.Location) Rules {
	if voteRequestDelay <= 0 {
		voteRequestDelay = DefaultVoteRequestDelay
	}
	if loc == nil {
		loc = time.UTC
	}
	return Rules{VoteRequestDelay: voteRequestDelay, Location: loc}
}

// Evaluation is the set of transitions due for one group at one instant.
type Evaluation struct {
	ScheduledAt        time.Time
	Expired            bool
	MarkAttendance     bool
	VoteRequestPending []string
	Err                error
}

// Due reports whether any transition fires.
func (e Evaluation) Due() bool {
	return e.MarkAttendance || len(e.VoteRequestPending) > 0
}

// ScheduledAt parses the group schedule, wrapping failures in domain.ErrMalformedSchedule.
func (r Rules) ScheduledAt(g *entities.Group) (time.Time, error) {
	at, err := g.ScheduledAt(r.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", domain.ErrMalformedSchedule, err)
	}
	return at, nil
}

// IsExpired is now > scheduledAt. A malformed schedule never expires.
func (r Rules) IsExpired(g *entities.Group, now time.Time) bool {
	at, err := r.ScheduledAt(g)
	if err != nil {
		return false
	}
	return now.After(at)
}

// ShouldMarkAttendance is IsExpired and attendance not yet processed.
func (r Rules) ShouldMarkAttendance(g *entities.Group, now time.Time) bool {
	return r.IsExpired(g, now) && !g.AttendanceProcessed
}

// PendingVoteRequestRecipients lists participants not yet asked to vote once the delay has elapsed.
func (r Rules) PendingVoteRequestRecipients(g *entities.Group, now time.Time) []string {
	at, err := r.ScheduledAt(g)
	if err != nil {
		return nil
	}
	return r.pendingVoteRequests(g, at, now)
}

// Evaluate computes every transition at once so the schedule is parsed a single time.
func (r Rules) Evaluate(g *entities.Group, now time.Time) Evaluation {
	at, err := r.ScheduledAt(g)
	if err != nil {
		return Evaluation{Err: err}
	}
	expired := now.After(at)
	return Evaluation{
		ScheduledAt:        at,
		Expired:            expired,
		MarkAttendance:     expired && !g.AttendanceProcessed,
		VoteRequestPending: r.pendingVoteRequests(g, at, now),
	}
}

func (r Rules) pendingVoteRequests(g *entities.Group, at, now time.Time) []string {
	if !now.After(at) || now.Sub(at) < r.VoteRequestDelay {
		return nil
	}
	var out []string
	for _, p := range g.DistinctParticipants() {
		if !g.VoteRequestSent(p) {
			out = append(out, p)
		}
	}
	return out
}
