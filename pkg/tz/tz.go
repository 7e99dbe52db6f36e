package tz

import (
	"fmt"
	"strings"
	"time"
)

// DefaultName is the zone group schedules are written in unless configured otherwise.
const DefaultName = "Europe/Rome"

// Rome is the Europe/Rome location (CET/CEST with automatic DST).
var Rome *time.Location

func init() {
	var err error
	Rome, err = time.LoadLocation(DefaultName)
	if err != nil {
		panic("tz: load " + DefaultName + ": " + err.Error())
	}
}

// Load resolves an IANA zone name. An empty name yields Rome.
func Load(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == DefaultName {
		return Rome, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("tz: load %q: %w", name, err)
	}
	return loc, nil
}
