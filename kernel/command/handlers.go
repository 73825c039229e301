package command

import (
	"context"
	"fmt"

	"github.com/friendo-bot/friendo/kernel/instance"
	"github.com/friendo-bot/friendo/kernel/model"
	"github.com/sirupsen/logrus"
)

const (
	replyGenericFailure = "Something went wrong with the command."
	replyIPFailure      = "Something went wrong retrieving the IP."
)

// Handlers maps the user-facing intents onto reads of the shared manager /
// instance client and the power-change call. Every handler returns some
// reply, even on internal failure; errors never escape this boundary.
type Handlers struct {
	Mgr       *model.Manager
	Instances instance.Client
}

func NewHandlers(mgr *model.Manager, instances instance.Client) *Handlers {
	return &Handlers{Mgr: mgr, Instances: instances}
}

// Status reports the instance lifecycle state.
func (h *Handlers) Status(ctx context.Context) string {
	state, err := h.Instances.State(ctx, h.Mgr.InstanceId())
	if err != nil {
		logrus.WithError(err).Warn("status command failed")
		return replyGenericFailure
	}
	return fmt.Sprintf("The server is currently %s.", state)
}

// Address reports the public IP while the instance is running.
func (h *Handlers) Address(ctx context.Context) string {
	state, err := h.Instances.State(ctx, h.Mgr.InstanceId())
	if err != nil {
		logrus.WithError(err).Warn("ip command failed")
		return replyIPFailure
	}

	switch state {
	case model.StatePending:
		return "Please wait, the server is currently starting up."
	case model.StateRunning:
		addr, ok, err := h.Instances.Address(ctx, h.Mgr.InstanceId())
		if err != nil || !ok {
			if err != nil {
				logrus.WithError(err).Warn("ip command failed")
			}
			return replyIPFailure
		}
		return fmt.Sprintf("The current server IP is %s", addr)
	default:
		return "The server is not currently running."
	}
}

// Spinup starts the instance when it is stopped. Transitions already in
// progress or already satisfied are reported without touching the provider.
func (h *Handlers) Spinup(ctx context.Context) string {
	state, err := h.Instances.State(ctx, h.Mgr.InstanceId())
	if err != nil {
		logrus.WithError(err).Warn("spinup command failed")
		return replyGenericFailure
	}

	switch state {
	case model.StatePending:
		return "The server is already starting up."
	case model.StateRunning:
		return "The server is already running."
	case model.StateShuttingDown, model.StateStopping:
		return "Please wait, the server is currently shutting down."
	case model.StateStopped, model.StateTerminated:
		if err := h.Instances.SetPower(ctx, h.Mgr.InstanceId(), true); err != nil {
			logrus.WithError(err).Error("failed to start instance")
			return replyGenericFailure
		}
		return "The server has been started."
	default:
		return replyGenericFailure
	}
}

// Spindown stops the instance when it is running.
func (h *Handlers) Spindown(ctx context.Context) string {
	state, err := h.Instances.State(ctx, h.Mgr.InstanceId())
	if err != nil {
		logrus.WithError(err).Warn("spindown command failed")
		return replyGenericFailure
	}

	switch state {
	case model.StatePending:
		return "Please wait, the server is currently starting up."
	case model.StateShuttingDown, model.StateStopping:
		return "The server is already shutting down."
	case model.StateStopped, model.StateTerminated:
		return "The server was already stopped."
	case model.StateRunning:
		if err := h.Instances.SetPower(ctx, h.Mgr.InstanceId(), false); err != nil {
			logrus.WithError(err).Error("failed to stop instance")
			return replyGenericFailure
		}
		return "The server has been stopped."
	default:
		return replyGenericFailure
	}
}
