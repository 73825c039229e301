package publish

import (
	"context"

	"github.com/friendo-bot/friendo/kernel/model"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/sirupsen/logrus"
)

// Sink is a display surface that accepts one short topic string.
type Sink interface {
	// Target identifies the surface, e.g. a channel id.
	Target() string

	// SetTopic writes the topic to the surface.
	SetTopic(ctx context.Context, topic string) error
}

// Publisher renders statuses and pushes them to its sinks, skipping any sink
// whose last successfully written topic already matches. Publishing the same
// status twice therefore produces at most one external write per sink.
type Publisher struct {
	sinks []Sink
	last  cmap.ConcurrentMap[string, string]
}

func NewPublisher(sinks ...Sink) *Publisher {
	return &Publisher{
		sinks: sinks,
		last:  cmap.New[string](),
	}
}

// Publish writes the rendered topic to every sink that needs it. A failing
// sink is logged and retried on the next publish (its last-written record is
// not advanced); the first error is returned so callers can log it, but all
// sinks are always attempted.
func (p *Publisher) Publish(ctx context.Context, status model.ServiceStatus) error {
	topic := Render(status)

	var firstErr error
	for _, sink := range p.sinks {
		if prev, ok := p.last.Get(sink.Target()); ok && prev == topic {
			continue
		}
		if err := sink.SetTopic(ctx, topic); err != nil {
			logrus.WithError(err).Warnf("failed to update topic on [%s]", sink.Target())
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		p.last.Set(sink.Target(), topic)
	}
	return firstErr
}
