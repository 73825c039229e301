package metrics

import (
	"testing"

	"github.com/friendo-bot/friendo/kernel/engine"
	"github.com/friendo-bot/friendo/kernel/model"
)

// Both reporters must be usable where the reconciler expects a Reporter.
var (
	_ engine.Reporter = (*InfluxReporter)(nil)
	_ engine.Reporter = NopReporter{}
)

func TestNopReporter(t *testing.T) {
	// Must be safe to call with anything, including a zero status.
	NopReporter{}.Report(model.StateRunning, model.ServiceStatus{})
	NopReporter{}.Close()
}
