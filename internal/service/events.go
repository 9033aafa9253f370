package service

import (
	"context"

	"notes-intelligence-be/internal/pkg/logger"
	"notes-intelligence-be/pkg/events"
)

// IEventPublisher is the domain event bus. The NATS publisher satisfies it.
type IEventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// publishEvent is best effort: events are auxiliary to the request that caused them.
func publishEvent(ctx context.Context, pub IEventPublisher, log logger.ILogger, eventType string, data map[string]interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		log.Warn("Events", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
