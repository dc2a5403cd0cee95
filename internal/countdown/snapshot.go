package countdown

import "time"

// Snapshot is the JSON form of a State pushed to pages and displays.
type Snapshot struct {
	State        string `json:"state"`
	Days         int    `json:"days"`
	Hours        int    `json:"hours"`
	Minutes      int    `json:"minutes"`
	Seconds      int    `json:"seconds"`
	TotalSeconds int64  `json:"total_seconds"`
	Target       string `json:"target"`
	TargetLabel  string `json:"target_label"`
	Zone         string `json:"zone"`
	Now          string `json:"now"`
}

func NewSnapshot(s State, target Target, now time.Time) Snapshot {
	snap := Snapshot{
		State:       s.Name(),
		Target:      target.Local().Format(time.RFC3339),
		TargetLabel: target.Label(),
		Zone:        target.ZoneName(),
		Now:         now.In(target.Local().Location()).Format(time.RFC3339),
	}
	if c, ok := s.(Counting); ok {
		snap.Days = c.Remaining.Days
		snap.Hours = c.Remaining.Hours
		snap.Minutes = c.Remaining.Minutes
		snap.Seconds = c.Remaining.Seconds
		snap.TotalSeconds = c.Remaining.TotalSeconds()
	}
	return snap
}
