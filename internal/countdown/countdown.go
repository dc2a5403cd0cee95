// Package countdown computes the time remaining until a fixed target instant
// and models the result as either Counting or Finished.
package countdown

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	DefaultTarget = "2025-09-14T13:00:00+03:00"
	DefaultZone   = "Africa/Cairo"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

var (
	ErrInvalidTarget = errors.New("invalid target instant")
	ErrInvalidZone   = errors.New("invalid time zone")
)

// Target is the fixed instant being counted down to, plus the zone used when
// it is shown to people.
type Target struct {
	At   time.Time
	Zone *time.Location
}

// NewTarget parses an RFC 3339 instant and an IANA zone name.
func NewTarget(at, zone string) (Target, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(at))
	if err != nil {
		return Target{}, fmt.Errorf("%w %q: %v", ErrInvalidTarget, at, err)
	}
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return Target{}, fmt.Errorf("%w: empty name", ErrInvalidZone)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Target{}, fmt.Errorf("%w %q: %v", ErrInvalidZone, zone, err)
	}
	return Target{At: t, Zone: loc}, nil
}

// DefaultTargetValue returns the compiled-in target.
func DefaultTargetValue() Target {
	t, err := NewTarget(DefaultTarget, DefaultZone)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Target) Compute(now time.Time) State {
	return Compute(now, t.At)
}

func (t Target) ZoneName() string {
	if t.Zone == nil {
		return "UTC"
	}
	return t.Zone.String()
}

// Local returns the target instant in its display zone.
func (t Target) Local() time.Time {
	if t.Zone == nil {
		return t.At
	}
	return t.At.In(t.Zone)
}

// Label renders the target date and time in the display zone.
func (t Target) Label() string {
	return t.Local().Format("02/01/2006 — 15:04")
}

/* ---------------- core ---------------- */

// Compute returns Finished once target minus now, floored to whole seconds,
// is zero or negative, and the days/hours/minutes/seconds breakdown otherwise.
func Compute(now, target time.Time) State {
	total := secondsBetween(now, target)
	if total <= 0 {
		return Finished{}
	}
	return Counting{Remaining: Decompose(total)}
}

// Decompose splits a positive number of seconds. Non-positive input yields
// the zero value.
func Decompose(total int64) Remaining {
	if total <= 0 {
		return Remaining{}
	}
	return Remaining{
		Days:    int(total / secondsPerDay),
		Hours:   int((total % secondsPerDay) / secondsPerHour),
		Minutes: int((total % secondsPerHour) / secondsPerMinute),
		Seconds: int(total % secondsPerMinute),
	}
}

// secondsBetween is floor(target - now) in whole seconds. It works on Unix
// seconds rather than time.Duration, which saturates past about 292 years.
func secondsBetween(now, target time.Time) int64 {
	secs := target.Unix() - now.Unix()
	if target.Nanosecond() < now.Nanosecond() {
		secs--
	}
	return secs
}
