// Package clock abstracts the wall clock so views can be driven by a fixed
// or manually advanced instant.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

// Real reads the system clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Manual returns a settable instant. Safe for concurrent use.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(now time.Time) *Manual {
	return &Manual{now: now}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Set(now time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}

// Offset runs a real clock shifted so that it read At when it was created.
// Used to preview the countdown from a chosen instant while still ticking.
type Offset struct {
	delta time.Duration
}

func NewOffset(at time.Time) Offset {
	return Offset{delta: time.Until(at)}
}

func (o Offset) Now() time.Time { return time.Now().Add(o.delta) }
