package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/credentis/credentis/pkg/events"
)

type WatermillEventBus struct {
	publisher     message.Publisher
	subscriber    message.Subscriber
	mu            sync.RWMutex
	subscriptions map[events.EventType]EventHandler
	logger        *slog.Logger
}

func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber, logger *slog.Logger) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:     pub,
		subscriber:    sub,
		subscriptions: make(map[events.EventType]EventHandler),
		logger:        logger.With("module", "event_bus"),
	}
}

// NewGoChannelEventBus builds a bus backed by watermill's in-memory
// gochannel pub/sub, which is the deployment model here: one process, no
// broker.
func NewGoChannelEventBus(logger *slog.Logger) *WatermillEventBus {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            1000,
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NewSlogLogger(logger),
	)

	return NewWatermillEventBus(pubSub, pubSub, logger)
}

func (eb *WatermillEventBus) GenerateID() string {
	return watermill.NewULID()
}

func (eb *WatermillEventBus) Publish(_ context.Context, key string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.Metadata.Set(events.EventMetadataKey, key)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))

	return eb.publisher.Publish(events.Topic, msg)
}

func (eb *WatermillEventBus) Handle(eventType events.EventType, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscriptions[eventType] = handler
}

func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	messages, err := eb.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			eb.dispatch(ctx, msg)
		}
	}()

	return nil
}

func (eb *WatermillEventBus) dispatch(ctx context.Context, msg *message.Message) {
	eventType := events.EventType(msg.Metadata.Get(events.EventTypeMetadataKey))

	eb.mu.RLock()
	handler, exists := eb.subscriptions[eventType]
	eb.mu.RUnlock()

	if !exists {
		msg.Ack()

		return
	}

	var event any

	switch eventType {
	case events.RunStartedEvent:
		event = &events.RunStarted{}
	case events.RunCompletedEvent:
		event = &events.RunCompleted{}
	case events.RunFailedEvent:
		event = &events.RunFailed{}
	case events.TriggerFiredEvent:
		event = &events.TriggerFired{}
	default:
		msg.Ack()

		return
	}

	if err := json.Unmarshal(msg.Payload, event); err != nil {
		eb.logger.Error("Failed to decode event payload", "event_type", eventType, "error", err)
		msg.Nack()

		return
	}

	if err := handler(ctx, event); err != nil {
		eb.logger.Error("Event handler failed", "event_type", eventType, "error", err)
		msg.Nack()

		return
	}

	msg.Ack()
}

func (eb *WatermillEventBus) Close() error {
	if err := eb.publisher.Close(); err != nil {
		return err
	}

	return nil
}
