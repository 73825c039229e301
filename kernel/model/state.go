package model

// InstanceState mirrors the lifecycle state codes reported by the EC2 API.
// The state is authoritative from the provider; it is never inferred locally.
type InstanceState int64

const (
	StateUnknown      InstanceState = -1
	StatePending      InstanceState = 0
	StateRunning      InstanceState = 16
	StateShuttingDown InstanceState = 32
	StateTerminated   InstanceState = 48
	StateStopping     InstanceState = 64
	StateStopped      InstanceState = 80
)

// StateFromCode maps a raw provider state code onto an InstanceState,
// returning StateUnknown for anything unrecognized.
func StateFromCode(code int64) InstanceState {
	switch InstanceState(code) {
	case StatePending, StateRunning, StateShuttingDown, StateTerminated, StateStopping, StateStopped:
		return InstanceState(code)
	default:
		return StateUnknown
	}
}

// String renders the state for users. The shutting-down/stopping and
// terminated/stopped pairs are collapsed; the distinction doesn't matter
// for anyone reading a chat message.
func (s InstanceState) String() string {
	switch s {
	case StatePending:
		return "starting up"
	case StateRunning:
		return "running"
	case StateShuttingDown, StateStopping:
		return "shutting down"
	case StateTerminated, StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Halted reports whether the state precludes the game server from running,
// making a probe pointless.
func (s InstanceState) Halted() bool {
	switch s {
	case StateShuttingDown, StateStopping, StateTerminated, StateStopped:
		return true
	default:
		return false
	}
}
