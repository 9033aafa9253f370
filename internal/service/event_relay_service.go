package service

import (
	"context"

	"notes-intelligence-be/internal/pkg/logger"
	"notes-intelligence-be/pkg/events"
	pktNats "notes-intelligence-be/pkg/nats"
)

// Broadcaster pushes a typed message to websocket clients of a topic.
type Broadcaster interface {
	Publish(ctx context.Context, topic, kind string, data any)
}

type IEventRelayService interface {
	Start(ctx context.Context) error
	Handle(ctx context.Context, event events.Event) error
}

// eventRelayService forwards every domain event to all connected browsers.
type eventRelayService struct {
	subscriber  *pktNats.Subscriber
	broadcaster Broadcaster
	topic       string
	logger      logger.ILogger
}

func NewEventRelayService(subscriber *pktNats.Subscriber, broadcaster Broadcaster, topic string, log logger.ILogger) IEventRelayService {
	return &eventRelayService{
		subscriber:  subscriber,
		broadcaster: broadcaster,
		topic:       topic,
		logger:      log,
	}
}

func (r *eventRelayService) Start(ctx context.Context) error {
	if r.subscriber == nil {
		r.logger.Warn("EventRelay", "No NATS subscriber, domain events will not reach websockets", nil)
		return nil
	}
	return r.subscriber.Subscribe(ctx, "*", "websocket-relay", r.Handle)
}

func (r *eventRelayService) Handle(ctx context.Context, event events.Event) error {
	r.broadcaster.Publish(ctx, r.topic, "event", map[string]interface{}{
		"type":        event.EventType(),
		"data":        event.Payload(),
		"occurred_at": event.Timestamp(),
	})
	return nil
}
