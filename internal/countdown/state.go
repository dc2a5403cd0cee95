package countdown

import (
	"fmt"
	"time"
)

// Remaining is a non-negative duration split into calendar-free units:
// Seconds and Minutes in [0,59], Hours in [0,23], Days unbounded.
type Remaining struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

func (r Remaining) TotalSeconds() int64 {
	return int64(r.Days)*secondsPerDay +
		int64(r.Hours)*secondsPerHour +
		int64(r.Minutes)*secondsPerMinute +
		int64(r.Seconds)
}

func (r Remaining) Duration() time.Duration {
	return time.Duration(r.TotalSeconds()) * time.Second
}

// Cell is one numeric box of the counting view.
type Cell struct {
	Value string
	Label string
	Unit  string
}

// Cells returns the four boxes in display order, each value padded to at
// least two digits.
func (r Remaining) Cells() []Cell {
	return []Cell{
		{Value: pad2(r.Days), Label: "يوم", Unit: "days"},
		{Value: pad2(r.Hours), Label: "ساعة", Unit: "hours"},
		{Value: pad2(r.Minutes), Label: "دقيقة", Unit: "minutes"},
		{Value: pad2(r.Seconds), Label: "ثانية", Unit: "seconds"},
	}
}

func (r Remaining) String() string {
	return fmt.Sprintf("%sd %s:%s:%s", pad2(r.Days), pad2(r.Hours), pad2(r.Minutes), pad2(r.Seconds))
}

func pad2(n int) string {
	return fmt.Sprintf("%02d", n)
}

// State is either Counting or Finished. The unexported method keeps the set
// of implementations closed.
type State interface {
	state()
	Name() string
}

type Counting struct {
	Remaining Remaining
}

type Finished struct{}

func (Counting) state() {}
func (Finished) state() {}

func (Counting) Name() string { return "counting" }
func (Finished) Name() string { return "finished" }

func IsFinished(s State) bool {
	_, ok := s.(Finished)
	return ok
}

/* ---------------- tracker ---------------- */

// Tracker holds the last state computed for one view. Once it has seen
// Finished it keeps reporting Finished.
type Tracker struct {
	last State
}

// Observe records s and reports whether the visible state changed kind
// (first observation included) and whether the countdown is now finished.
func (t *Tracker) Observe(s State) (changed, finished bool) {
	if t.last != nil && IsFinished(t.last) {
		return false, true
	}
	changed = t.last == nil || t.last.Name() != s.Name()
	t.last = s
	return changed, IsFinished(s)
}

// State returns the last observed state, nil before the first Observe.
func (t *Tracker) State() State {
	return t.last
}
