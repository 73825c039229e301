package model

import (
	"github.com/openziti/foundation/v2/concurrenz"
)

// Manager is the shared state object bound to the single managed instance.
// It is constructed once at startup and lives for the process lifetime.
//
// The reconcile loop is the only writer of the service status; command
// handlers and the publisher read it concurrently. The status is held in an
// atomic slot so a reader never observes a half-written value.
type Manager struct {
	instanceId string
	status     concurrenz.AtomicValue[ServiceStatus]
}

func NewManager(instanceId string) *Manager {
	m := &Manager{instanceId: instanceId}
	m.status.Store(Unknown())
	return m
}

// InstanceId returns the managed instance id. Immutable after construction.
func (m *Manager) InstanceId() string {
	return m.instanceId
}

// Status returns the last derived service status. Results can be up to one
// polling interval stale; callers wanting fresher data have to wait for the
// next tick.
func (m *Manager) Status() ServiceStatus {
	return m.status.Load()
}

// SetStatus stores a newly derived status. Only the reconciler calls this.
func (m *Manager) SetStatus(s ServiceStatus) {
	m.status.Store(s)
}
