package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"notes-intelligence-be/internal/pkg/logger"
	"notes-intelligence-be/pkg/pipeline"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	clusterChannel = "cluster_events"
	// TopicAll reaches every connected client.
	TopicAll = "*"
)

// Message is the envelope written to every websocket client.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type clusterPayload struct {
	Origin  string          `json:"origin"`
	Topic   string          `json:"topic"`
	Message json.RawMessage `json:"message"`
}

// Hub fans messages out to websocket clients subscribed to a topic (a
// pipeline run id, or TopicAll). With Redis configured, messages published on
// one instance reach clients connected to any instance.
type Hub struct {
	id string

	// topic -> clients watching it
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	// closed when Run returns
	done chan struct{}

	mu sync.RWMutex

	rdb    *redis.Client
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		id:         uuid.NewString(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.Topic] = append(h.clients[client.Topic], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"topic": client.Topic})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.Topic]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.Topic] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.Topic]) == 0 {
					delete(h.clients, client.Topic)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register attaches the client. It returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister detaches the client and closes its Send channel. After the hub
// has stopped it returns without doing anything.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Clients reports how many local clients watch the topic.
func (h *Hub) Clients(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

// Publish delivers a typed message to local clients of the topic and relays
// it to the other instances.
func (h *Hub) Publish(ctx context.Context, topic, kind string, data any) {
	msg, err := json.Marshal(Message{Type: kind, Data: data})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode message", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliver(topic, msg)

	if h.rdb != nil {
		payload, err := json.Marshal(clusterPayload{Origin: h.id, Topic: topic, Message: msg})
		if err != nil {
			h.logger.Error("Hub", "Failed to encode cluster payload", map[string]interface{}{"error": err.Error()})
			return
		}
		if err := h.rdb.Publish(ctx, clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Redis relay failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// StageStarted streams pipeline progress to the clients watching the run.
func (h *Hub) StageStarted(ctx context.Context, ev pipeline.StageEvent) {
	if ev.RunID != "" {
		h.Publish(ctx, ev.RunID, "stage", ev)
	}
}

func (h *Hub) StageFinished(ctx context.Context, ev pipeline.StageEvent) {
	if ev.RunID != "" {
		h.Publish(ctx, ev.RunID, "stage", ev)
	}
}

func (h *Hub) deliver(topic string, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	send := func(c *Client) {
		select {
		case c.Send <- msg:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"topic": c.Topic})
			go h.Unregister(c)
		}
	}

	if topic == TopicAll {
		for _, clients := range h.clients {
			for _, c := range clients {
				send(c)
			}
		}
		return
	}
	for _, c := range h.clients[topic] {
		send(c)
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload clusterPayload
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if payload.Origin == h.id {
			continue
		}
		h.deliver(payload.Topic, payload.Message)
	}
}
