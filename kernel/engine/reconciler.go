package engine

import (
	"context"
	"time"

	"github.com/friendo-bot/friendo/kernel/instance"
	"github.com/friendo-bot/friendo/kernel/model"
	"github.com/friendo-bot/friendo/kernel/probe"
	"github.com/sirupsen/logrus"
)

// Publisher pushes a derived status to the display surface.
type Publisher interface {
	Publish(ctx context.Context, status model.ServiceStatus) error
}

// Reporter receives one observation per tick. Implementations must not block
// the loop.
type Reporter interface {
	Report(state model.InstanceState, status model.ServiceStatus)
}

// Reconciler drives the polling loop: each tick it reads the instance
// lifecycle state, conditionally probes the game server, derives a unified
// status, stores it in the shared manager, and hands it to the publisher.
//
// It only ever reads from the cloud API. Power changes belong to the command
// handlers and are observed here on a later tick.
type Reconciler struct {
	Mgr       *model.Manager
	Instances instance.Client
	Prober    probe.Prober
	Publisher Publisher
	Reporter  Reporter

	Interval     time.Duration
	ProbePort    int
	ProbeTimeout time.Duration
}

func NewReconciler(mgr *model.Manager, instances instance.Client, prober probe.Prober, publisher Publisher) *Reconciler {
	return &Reconciler{
		Mgr:          mgr,
		Instances:    instances,
		Prober:       prober,
		Publisher:    publisher,
		Interval:     model.DefaultPollInterval,
		ProbePort:    model.DefaultProbePort,
		ProbeTimeout: model.DefaultProbeTimeout,
	}
}

// Run ticks immediately, then on the fixed interval until the context is
// cancelled. Ticks never overlap: a slow tick delays the next one rather
// than stacking. Data-fetch failures degrade single ticks, never the loop.
func (r *Reconciler) Run(ctx context.Context) error {
	logrus.Infof("reconcile loop started for instance [%s], interval %v", r.Mgr.InstanceId(), r.Interval)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	r.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			logrus.Info("reconcile loop stopped")
			return ctx.Err()
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick performs one reconcile cycle. If the lifecycle state can't be read
// the whole tick is skipped: the previously derived status stands rather
// than being overwritten with a guess.
func (r *Reconciler) Tick(ctx context.Context) {
	id := r.Mgr.InstanceId()

	state, err := r.Instances.State(ctx, id)
	if err != nil {
		logrus.WithError(err).Warnf("unable to read state of instance [%s], skipping tick", id)
		return
	}

	status := r.derive(ctx, state)
	r.Mgr.SetStatus(status)

	if err := r.Publisher.Publish(ctx, status); err != nil {
		logrus.WithError(err).Warn("status publish failed")
	}
	if r.Reporter != nil {
		r.Reporter.Report(state, status)
	}
}

// derive computes the unified status from the lifecycle state, probing only
// when the state allows the service to be up.
func (r *Reconciler) derive(ctx context.Context, state model.InstanceState) model.ServiceStatus {
	// A halted instance can't be running the service; skip the probe, it
	// is known to fail.
	if state.Halted() {
		return model.Unreachable()
	}
	if state != model.StateRunning {
		return model.Unknown()
	}

	addr, ok, err := r.Instances.Address(ctx, r.Mgr.InstanceId())
	if err != nil {
		logrus.WithError(err).Warn("unable to read instance address")
		return model.Unknown()
	}
	if !ok {
		// Running but no public address allocated yet.
		return model.Unknown()
	}

	probeCtx, cancel := context.WithTimeout(ctx, r.ProbeTimeout)
	defer cancel()

	result, err := r.Prober.Ping(probeCtx, addr, r.ProbePort)
	if err != nil {
		logrus.WithError(err).Warn("probe failed")
		return model.Unknown()
	}
	if !result.Online {
		// The instance is up but the service isn't answering: most likely
		// still booting, so Unknown rather than Unreachable.
		return model.Unknown()
	}
	return model.Online(result.Players)
}
