package output

import "time"

// SweepObserver receives sweep outcomes, typically to export metrics.
type SweepObserver interface {
	SweepFinished(duration time.Duration, err error)
	AttendanceMarked(count int)
	VoteRequestsSent(count int)
	GroupFailed(kind string)
}
