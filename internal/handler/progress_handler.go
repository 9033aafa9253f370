package handler

import (
	"notes-intelligence-be/internal/pkg/logger"
	internalWS "notes-intelligence-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ProgressHandler upgrades browser connections onto the websocket hub.
type ProgressHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewProgressHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *ProgressHandler {
	return &ProgressHandler{hub: hub, jwtSecret: jwtSecret, logger: log}
}

func (h *ProgressHandler) RegisterRoutes(r fiber.Router) {
	ws := r.Group("/ws/v1")
	ws.Get("/runs/:runId", h.ServeRun)
	ws.Get("/events", h.ServeEvents)
}

// ServeRun streams stage events of one pipeline run.
func (h *ProgressHandler) ServeRun(c *fiber.Ctx) error {
	return h.serve(c, c.Params("runId"))
}

// ServeEvents streams every domain event.
func (h *ProgressHandler) ServeEvents(c *fiber.Ctx) error {
	return h.serve(c, internalWS.TopicAll)
}

func (h *ProgressHandler) serve(c *fiber.Ctx, topic string) error {
	if err := h.authorize(c); err != nil {
		h.logger.Warn("ProgressHandler", "Rejected websocket handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	if topic == "" {
		return fiber.NewError(fiber.StatusBadRequest, "run id is required")
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ProgressHandler", "Starting WebSocket session", map[string]interface{}{"topic": topic})
			internalWS.ServeWs(h.hub, conn, topic)
			h.logger.Info("ProgressHandler", "WebSocket session ended", map[string]interface{}{"topic": topic})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// authorize accepts the token from the query string (browsers cannot set
// headers on a websocket handshake) or the Authorization header.
func (h *ProgressHandler) authorize(c *fiber.Ctx) error {
	if h.jwtSecret == "" {
		return nil
	}

	tokenStr := c.Query("token")
	if tokenStr == "" {
		if auth := c.Get("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
			tokenStr = auth[7:]
		}
	}
	if tokenStr == "" {
		return fiber.ErrUnauthorized
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return fiber.ErrUnauthorized
	}
	return nil
}
