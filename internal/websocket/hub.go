// Package websocket implements the realtime gateway: the hub that
// tracks connections and room subscriptions, and the per-connection
// read/write pumps.
package websocket

import (
	"log"
	"sync"

	"studychat/internal/events"
)

// Hub tracks the active connections and their room subscriptions. One
// connection per user: a new registration for the same user id evicts
// the previous connection. All state is guarded by a single mutex so
// callers from any goroutine (HTTP upgrades, the Kafka consumer, the
// read pumps) see a consistent view.
type Hub struct {
	mu sync.RWMutex

	// clients maps user id to the user's single active connection.
	clients map[uint]*Client

	// rooms maps room name to its subscribed connections.
	rooms map[string]map[*Client]bool

	// clientRooms is the reverse index used to clean up on disconnect.
	clientRooms map[*Client]map[string]bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients:     make(map[uint]*Client),
		rooms:       make(map[string]map[*Client]bool),
		clientRooms: make(map[*Client]map[string]bool),
	}
}

// Register adds a client, evicting any previous connection for the same
// user. The evicted connection's send channel is closed, which ends its
// write pump and closes the socket.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.clients[client.UserID]; ok && existing != client {
		log.Printf("user %d reconnected, evicting previous connection", client.UserID)
		h.removeLocked(existing)
	}
	h.clients[client.UserID] = client
	h.clientRooms[client] = make(map[string]bool)
}

// Unregister removes a client. A stale connection that was already
// evicted by a newer one is ignored so the newer registration survives.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.UserID]; !ok || current != client {
		return
	}
	h.removeLocked(client)
}

// JoinRoom subscribes the client to a room. Joining twice is a no-op.
func (h *Hub) JoinRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clientRooms[client]; !ok {
		return // already evicted
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
	h.clientRooms[client][room] = true
}

// Broadcast sends an event frame to every connection in the room.
// Connections whose send buffer is full drop the frame; the client
// recovers missed messages from history on its next fetch.
func (h *Hub) Broadcast(room string, event events.EventName, payload any) {
	frame, err := events.NewEnvelope(event, payload)
	if err != nil {
		log.Printf("failed to encode %s frame: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		h.sendLocked(client, frame)
	}
}

// NotifyUser sends an event frame to one user's connection. Users
// without a connection are skipped silently.
func (h *Hub) NotifyUser(userID uint, event events.EventName, payload any) {
	frame, err := events.NewEnvelope(event, payload)
	if err != nil {
		log.Printf("failed to encode %s frame: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if client, ok := h.clients[userID]; ok {
		h.sendLocked(client, frame)
	}
}

// Dispatch routes a consumed notification to its room or its users.
func (h *Hub) Dispatch(n events.Notification) {
	event := events.EventName(n.Event)
	if n.Room != "" {
		h.Broadcast(n.Room, event, n.Payload)
		return
	}
	for _, userID := range n.UserIDs {
		h.NotifyUser(userID, event, n.Payload)
	}
}

// ConnectedUsers reports how many users currently hold a connection.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) sendLocked(client *Client, frame []byte) {
	select {
	case client.Send <- frame:
	default:
		log.Printf("send buffer full for user %d, dropping frame", client.UserID)
	}
}

// removeLocked detaches the client from every index and closes its send
// channel. Callers hold the write lock.
func (h *Hub) removeLocked(client *Client) {
	for room := range h.clientRooms[client] {
		delete(h.rooms[room], client)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.clientRooms, client)
	if h.clients[client.UserID] == client {
		delete(h.clients, client.UserID)
	}
	close(client.Send)
}
