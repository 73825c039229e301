package model

// StatusKind classifies the derived game-server status for one observation.
type StatusKind int

const (
	// StatusUnknown means the service could not be confirmed either way:
	// the instance is booting, has no address yet, or the probe timed out
	// while the instance itself was fine.
	StatusUnknown StatusKind = iota

	// StatusUnreachable means the instance lifecycle state precludes the
	// service from running at all.
	StatusUnreachable

	// StatusOnline means the probe answered.
	StatusOnline
)

func (k StatusKind) String() string {
	switch k {
	case StatusUnreachable:
		return "unreachable"
	case StatusOnline:
		return "online"
	default:
		return "unknown"
	}
}

// ServiceStatus is the unified status derived on each reconcile tick.
// It has value semantics: readers get a copy, never a shared reference.
type ServiceStatus struct {
	Kind    StatusKind
	Players []string
}

// Online builds an online status with the given player names. The slice is
// copied so later mutation by the caller can't leak into stored status.
func Online(players []string) ServiceStatus {
	cp := make([]string, len(players))
	copy(cp, players)
	return ServiceStatus{Kind: StatusOnline, Players: cp}
}

func Unknown() ServiceStatus {
	return ServiceStatus{Kind: StatusUnknown}
}

func Unreachable() ServiceStatus {
	return ServiceStatus{Kind: StatusUnreachable}
}
