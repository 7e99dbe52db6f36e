package output

import "time"

// TimeSource supplies the current instant.
type TimeSource interface {
	Now() time.Time
}

// TimeSourceFunc adapts a function to TimeSource.
type TimeSourceFunc func() time.Time

// Now calls f.
func (f TimeSourceFunc) Now() time.Time { return f() }

// SystemClock is the wall clock.
var SystemClock TimeSource = TimeSourceFunc(time.Now)
