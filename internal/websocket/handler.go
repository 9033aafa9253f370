package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches the connection to the hub under topic and blocks until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, topic string) {
	client := &Client{Hub: hub, Conn: c, Topic: topic, Send: make(chan []byte, 256)}
	if !hub.Register(client) {
		return
	}

	go client.writePump()
	client.readPump()
}
