package order

// Status is the closed set of fulfillment states for a pharmacy order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusShipped    Status = "shipped"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
	StatusCancelled  Status = "cancelled"
)

// transitions is the source of truth for the fulfillment graph. Terminal
// states carry an empty edge set so every status has an entry and an
// unlisted status is a lookup failure, not a silently-allowed hop.
var transitions = map[Status][]Status{
	StatusPending:    {StatusAccepted, StatusRejected},
	StatusAccepted:   {StatusProcessing, StatusRejected},
	StatusProcessing: {StatusReady, StatusShipped},
	StatusReady:      {StatusCompleted, StatusShipped},
	StatusShipped:    {StatusCompleted},
	StatusCompleted:  {},
	StatusRejected:   {},
	StatusCancelled:  {},
}

// ParseStatus returns the Status for a wire value, false if unrecognized.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := transitions[st]
	return st, ok
}

// CanTransition reports whether to is directly reachable from from.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedNext returns the statuses reachable from s.
func AllowedNext(s Status) []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// Terminal reports whether s has no outgoing edges.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}
