package engine

// State is the scoring loop's lifecycle state.
type State int

const (
	// StateConnected means the loop has a live store connection and is
	// scoring batches.
	StateConnected State = iota

	// StateReconnecting means the last cycle hit a connectivity failure and
	// the loop is retrying the connection once per cycle.
	StateReconnecting

	// StateStopping means a shutdown request was observed at a cycle
	// boundary and the loop is finishing up.
	StateStopping

	// StateStopped is terminal: connection closed, totals reported.
	StateStopped
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
