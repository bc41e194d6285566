package consultation

// Status is the closed set of consultation states. The axis is forward-only:
// a consultation never moves back toward not_scheduled, and completed is
// terminal.
type Status string

const (
	StatusNotScheduled Status = "not_scheduled"
	StatusScheduled    Status = "scheduled"
	StatusLive         Status = "live"
	StatusCompleted    Status = "completed"
)

var statusRank = map[Status]int{
	StatusNotScheduled: 0,
	StatusScheduled:    1,
	StatusLive:         2,
	StatusCompleted:    3,
}

// ParseStatus returns the Status for a stored value, false if unrecognized.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := statusRank[st]
	return st, ok
}

// CanAdvanceTo reports whether target is strictly further along the axis.
func (s Status) CanAdvanceTo(target Status) bool {
	sr, ok := statusRank[s]
	if !ok {
		return false
	}
	tr, ok := statusRank[target]
	if !ok {
		return false
	}
	return tr > sr
}

// Terminal reports whether no state-changing operation remains.
func (s Status) Terminal() bool { return s == StatusCompleted }
