package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"notes-intelligence-be/internal/pkg/logger"
	"notes-intelligence-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	stream  string
	logger  logger.ILogger
	consume []jetstream.ConsumeContext
}

func NewSubscriber(url, stream string, log logger.ILogger) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{nc: nc, js: js, stream: stream, logger: log}, nil
}

// Subscribe registers a handler for an event type, or "*" for all of them,
// on a durable consumer. Failed handlers are redelivered.
func (s *Subscriber) Subscribe(ctx context.Context, eventType, durableName string, handler EventHandler) error {
	subject := subjectPrefix + eventType
	if eventType == "*" {
		subject = subjectPrefix + ">"
	}

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, s.stream, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		event, err := Decode(msg.Subject(), msg.Data())
		if err != nil {
			s.logger.Warn("NATS", "Dropping malformed event", map[string]interface{}{"subject": msg.Subject(), "error": err.Error()})
			msg.Term()
			return
		}

		if err := handler(ctx, event); err != nil {
			s.logger.Error("NATS", "Handler failed", map[string]interface{}{"subject": msg.Subject(), "error": err.Error()})
			msg.Nak()
			return
		}
		msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	s.consume = append(s.consume, cc)

	s.logger.Info("NATS", "Subscribed", map[string]interface{}{"subject": subject, "durable": durableName})
	return nil
}

// Decode rebuilds an event from its subject and wire body.
func Decode(subject string, body []byte) (events.BaseEvent, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return events.BaseEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if env.Type == "" {
		env.Type = strings.TrimPrefix(subject, subjectPrefix)
	}
	if env.OccurredAt.IsZero() {
		env.OccurredAt = time.Now().UTC()
	}
	if env.Data == nil {
		env.Data = map[string]interface{}{}
	}
	return events.BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}, nil
}

// Close stops consumers and closes the connection.
func (s *Subscriber) Close() {
	for _, cc := range s.consume {
		cc.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}
