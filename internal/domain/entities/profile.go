package entities

import "math"

// Status labels shown on a user profile.
const (
	StatusNew      = "Nuovo utente"
	StatusPunctual = "Utente puntuale"
	StatusExpert   = "Utente esperto"
)

// Profile holds the per-user aggregate counters.
type Profile struct {
	Username       string
	FeedbackUp     int
	FeedbackDown   int
	EventsAttended int
	Status         string
}

// NewProfile returns the profile every registered user starts with.
func NewProfile(username string) Profile {
	return Profile{Username: username, Status: StatusNew}
}

// PositivePercent is the rounded share of positive feedback, 0 without feedback.
func (p Profile) PositivePercent() int {
	total := p.FeedbackUp + p.FeedbackDown
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(p.FeedbackUp) / float64(total) * 100))
}

// ComputeStatus derives the status label from attendance and feedback.
func (p Profile) ComputeStatus() string {
	switch {
	case p.EventsAttended > 10 && p.PositivePercent() >= 80:
		return StatusExpert
	case p.EventsAttended > 5:
		return StatusPunctual
	default:
		return StatusNew
	}
}

// RecordAttendance increments the attended counter and refreshes the status.
func (p *Profile) RecordAttendance() {
	p.EventsAttended++
	p.Status = p.ComputeStatus()
}
