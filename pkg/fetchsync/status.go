package fetchsync

// Status is the lifecycle position of one activation.
type Status int32

const (
	// Idle is the state before the fetch starts.
	Idle Status = iota
	// Fetching means the remote call is in flight.
	Fetching
	// Settled means the payload was dispatched. It is terminal.
	Settled
	// Failed means the fetch returned an error. Loading stays true.
	Failed
	// Cancelled means a stale result was dropped without dispatching.
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Settled:
		return "settled"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s Status) Terminal() bool {
	return s == Settled || s == Failed || s == Cancelled
}
