// Package report describes the outcome of a sweep pass.
package report

import (
	"errors"
	"time"

	"grupy/internal/domain"
)

// Failure kinds used for logging and metrics labels.
const (
	FailureDataQuality = "data_quality"
	FailureStore       = "store"
	FailureSink        = "sink"
	FailureOther       = "other"
)

// VoteRequest is one vote-request transition fired for one recipient.
// NotificationID is empty when the recipient was recorded but the sink failed.
type VoteRequest struct {
	Recipient      string
	NotificationID string
}

// GroupOutcome is what one sweep pass did to one group.
type GroupOutcome struct {
	GroupID string
	Expired bool
	// AttendanceMarked is true only for the pass that performed the false→true flip.
	AttendanceMarked bool
	// AttendanceRaced is true when the flip was due but another writer got there first.
	AttendanceRaced bool
	VoteRequests    []VoteRequest
	DataQualityErr  error
	Errs            []error
}

// Err joins every failure of the group, data quality included.
func (o GroupOutcome) Err() error {
	if o.DataQualityErr == nil {
		return errors.Join(o.Errs...)
	}
	return errors.Join(append([]error{o.DataQualityErr}, o.Errs...)...)
}

// Failed reports a store or sink failure. Data-quality errors are not failures.
func (o GroupOutcome) Failed() bool {
	return len(o.Errs) > 0
}

// Fired reports whether any transition happened in this pass.
func (o GroupOutcome) Fired() bool {
	return o.AttendanceMarked || len(o.VoteRequests) > 0
}

// SweepReport aggregates the outcomes of one pass.
type SweepReport struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Groups     []GroupOutcome
}

// Duration of the pass.
func (r SweepReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failed lists groups with store or sink failures.
func (r SweepReport) Failed() []GroupOutcome {
	var out []GroupOutcome
	for _, g := range r.Groups {
		if g.Failed() {
			out = append(out, g)
		}
	}
	return out
}

// DataQualityErrors lists groups skipped because their data could not be evaluated.
func (r SweepReport) DataQualityErrors() []GroupOutcome {
	var out []GroupOutcome
	for _, g := range r.Groups {
		if g.DataQualityErr != nil {
			out = append(out, g)
		}
	}
	return out
}

// AttendanceMarked counts groups whose attendance this pass processed.
func (r SweepReport) AttendanceMarked() int {
	n := 0
	for _, g := range r.Groups {
		if g.AttendanceMarked {
			n++
		}
	}
	return n
}

// VoteRequestsSent counts recipients newly recorded as asked to vote.
func (r SweepReport) VoteRequestsSent() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.VoteRequests)
	}
	return n
}

// Group returns the outcome for groupID.
func (r SweepReport) Group(groupID string) (GroupOutcome, bool) {
	for _, g := range r.Groups {
		if g.GroupID == groupID {
			return g, true
		}
	}
	return GroupOutcome{}, false
}

// FailureKind classifies err for metrics labels.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedSchedule):
		return FailureDataQuality
	case errors.Is(err, domain.ErrStore):
		return FailureStore
	case errors.Is(err, domain.ErrSink):
		return FailureSink
	default:
		return FailureOther
	}
}
