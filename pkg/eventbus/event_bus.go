// Package eventbus provides the in-process bus carrying run lifecycle
// events. Delivery is best-effort by design: there is no broker, no retry
// and no durability across a process restart.
package eventbus

import (
	"context"

	"github.com/credentis/credentis/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

type Publisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	Publisher

	Handle(eventType events.EventType, handler EventHandler)
	Subscribe(ctx context.Context) error
	GenerateID() string
	Close() error
}

// NoopPublisher discards events. Used by tests and by tooling that runs the
// executor without an event pipeline.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, _ string, _ Event) error {
	return nil
}
