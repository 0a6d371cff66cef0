package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"studychat/internal/config"
	"studychat/internal/events"
)

var newline = []byte("\n")

// EventHandler processes one client-originated envelope. Errors are
// logged per frame; the connection stays open.
type EventHandler func(ctx context.Context, client *Client, envelope events.Envelope) error

// Client binds one websocket connection to the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Send is the buffered outbound frame queue drained by writePump.
	Send chan []byte

	// UserID is the authenticated user behind this connection.
	UserID uint

	handleEvent EventHandler
}

// readPump reads envelopes from the connection and hands them to the
// event handler. Malformed frames are dropped, not fatal.
func (c *Client) readPump(wsCfg config.WebSocketConfig) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	pongWait := time.Duration(wsCfg.PongWaitSeconds) * time.Second
	c.conn.SetReadLimit(int64(wsCfg.MaxMessageSizeBytes))
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error (user %d): %v", c.UserID, err)
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var envelope events.Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			log.Printf("malformed frame from user %d: %v", c.UserID, err)
			continue
		}
		if c.handleEvent == nil {
			continue
		}
		if err := c.handleEvent(context.Background(), c, envelope); err != nil {
			log.Printf("failed to handle %q from user %d: %v", envelope.Event, c.UserID, err)
		}
	}
}

// writePump drains the send queue to the connection and keeps the
// connection alive with pings.
func (c *Client) writePump(wsCfg config.WebSocketConfig) {
	writeWait := time.Duration(wsCfg.WriteWaitSeconds) * time.Second
	ticker := time.NewTicker(time.Duration(wsCfg.PingPeriodSeconds) * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(frame)

			// Drain whatever else is queued into the same write.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(newline)
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeConnection upgrades the request, registers the client with the
// hub and starts the pumps. The caller has already authenticated userID.
func ServeConnection(hub *Hub, handler EventHandler, userID uint, w http.ResponseWriter, r *http.Request, wsCfg config.WebSocketConfig) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  wsCfg.MaxMessageSizeBytes,
		WriteBufferSize: wsCfg.MaxMessageSizeBytes,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	client := &Client{
		hub:         hub,
		conn:        conn,
		Send:        make(chan []byte, 256),
		UserID:      userID,
		handleEvent: handler,
	}
	hub.Register(client)

	go client.writePump(wsCfg)
	go client.readPump(wsCfg)

	log.Printf("user %d connected", userID)
}
