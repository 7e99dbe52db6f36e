package domain

import "errors"

// Domain errors.
var (
	ErrGroupNotFound        = errors.New("group not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrParticipantExists    = errors.New("participant already joined")
	ErrEmptyParticipant     = errors.New("participant name is empty")
	ErrMalformedSchedule    = errors.New("malformed group schedule")
	ErrStore                = errors.New("entity store failure")
	ErrSink                 = errors.New("notification sink failure")
)
