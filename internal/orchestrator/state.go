package orchestrator

// State is a lifecycle state of the orchestrator.
type State int

const (
	Uninitialized State = iota
	Initialized
	Running
	Completed
	Aborted
	CleanedUp
	// Failed is terminal: initialization did not succeed and no element
	// was retained.
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	case CleanedUp:
		return "cleaned_up"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// MarshalText renders the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is a point-in-time snapshot of the orchestrator.
type Status struct {
	State     State  `json:"state"`
	Element   string `json:"element,omitempty"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}
