package entities

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Schedule layouts of the date and time columns, as written by the CRUD layer.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Group is an event with a wall-clock schedule and a participant set.
//
// AttendanceProcessed moves false→true once and VoteRequestsSent only grows.
// Both are mutated exclusively through the store's conditional primitives.
type Group struct {
	ID                  string
	Creator             string
	Name                string
	Category            string
	City                string
	ScheduledDate       string // YYYY-MM-DD
	ScheduledTime       string // HH:MM
	Participants        []string
	AttendanceProcessed bool
	VoteRequestsSent    []string
	CreatedAt           time.Time
}

// ScheduledAt combines the date and time columns in loc.
func (g *Group) ScheduledAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	date := strings.TrimSpace(g.ScheduledDate)
	clock := strings.TrimSpace(g.ScheduledTime)
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("group %s: empty date or time", g.ID)
	}
	at, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("group %s: parse %q %q: %w", g.ID, date, clock, err)
	}
	return at, nil
}

// DistinctParticipants returns participants in their stored order with exact duplicates
// and empty names dropped. Names are compared byte for byte.
func (g *Group) DistinctParticipants() []string {
	seen := make(map[string]struct{}, len(g.Participants))
	out := make([]string, 0, len(g.Participants))
	for _, p := range g.Participants {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// VoteRequestSent reports whether recipient is already in the sent set.
func (g *Group) VoteRequestSent(recipient string) bool {
	return slices.Contains(g.VoteRequestsSent, recipient)
}

// HasPendingVoteRequests reports whether some participant has not been asked for a vote yet.
func (g *Group) HasPendingVoteRequests() bool {
	for _, p := range g.DistinctParticipants() {
		if !g.VoteRequestSent(p) {
			return true
		}
	}
	return false
}

// NeedsSweep reports whether a sweep may still have work to do on the group.
func (g *Group) NeedsSweep() bool {
	return !g.AttendanceProcessed || g.HasPendingVoteRequests()
}
