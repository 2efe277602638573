package component

// State represents the current activation state of a component instance
type State int

const (
	// StateInit indicates the component was instantiated but not yet scheduled
	StateInit State = iota
	// StateActivatable indicates at least one input port has unread data
	StateActivatable
	// StateActivated indicates an activation is in flight
	StateActivated
	// StateDeactivated indicates the last activation finished and no data is pending
	StateDeactivated
	// StateEnded indicates permanent completion; the component will never activate again
	StateEnded
)

// String returns a string representation of the component state
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateActivatable:
		return "activatable"
	case StateActivated:
		return "activated"
	case StateDeactivated:
		return "deactivated"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// CanTransition reports whether moving from s to next is a legal step in
// the activation state machine. Ended is terminal; Deactivated may return
// to Activatable when new data arrives.
func (s State) CanTransition(next State) bool {
	if s == next {
		return false
	}
	switch s {
	case StateInit:
		return next == StateActivatable || next == StateEnded
	case StateActivatable:
		return next == StateActivated || next == StateEnded
	case StateActivated:
		return next == StateDeactivated || next == StateEnded
	case StateDeactivated:
		return next == StateActivatable || next == StateEnded
	case StateEnded:
		return false
	default:
		return false
	}
}
