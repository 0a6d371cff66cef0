// Package chatserver contains the chat server's HTTP surface: the
// single websocket endpoint and the dispatch of client-originated
// events.
package chatserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"studychat/internal/auth"
	"studychat/internal/config"
	"studychat/internal/events"
	"studychat/internal/services"
	"studychat/internal/websocket"
)

// WebSocketHandler authenticates upgrade requests and dispatches the
// client event envelopes.
type WebSocketHandler struct {
	hub            *websocket.Hub
	messageService services.MessageService
	authCfg        config.AuthConfig
	wsCfg          config.WebSocketConfig
	blacklist      auth.TokenBlacklist
}

// NewWebSocketHandler creates a WebSocketHandler.
func NewWebSocketHandler(hub *websocket.Hub, messageService services.MessageService, authCfg config.AuthConfig, wsCfg config.WebSocketConfig, blacklist auth.TokenBlacklist) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		messageService: messageService,
		authCfg:        authCfg,
		wsCfg:          wsCfg,
		blacklist:      blacklist,
	}
}

// HandleConnection serves GET /ws/chat?token=... . Browsers cannot set
// headers on websocket upgrades, so the token travels as a query
// parameter and is checked before the upgrade.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := auth.ValidateToken(r.Context(), tokenString, h.authCfg.JWTSecretKey, h.blacklist)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	websocket.ServeConnection(h.hub, h.handleEvent, claims.UserID, w, r, h.wsCfg)
}

// handleEvent routes one client envelope. Unknown event names are
// rejected so a misbehaving client fails loudly in the server log
// instead of silently doing nothing.
func (h *WebSocketHandler) handleEvent(ctx context.Context, client *websocket.Client, envelope events.Envelope) error {
	switch events.ClientEventName(envelope.Event) {
	case events.ClientJoinChat:
		return h.handleJoinChat(client, envelope.Data)
	case events.ClientSendMessage:
		return h.handleSendMessage(ctx, client, envelope.Data)
	case events.ClientTyping:
		return h.handleTyping(client, envelope.Data)
	default:
		return fmt.Errorf("unknown event %q", envelope.Event)
	}
}

func (h *WebSocketHandler) handleJoinChat(client *websocket.Client, data json.RawMessage) error {
	var payload events.JoinChatPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("invalid join_chat payload: %w", err)
	}
	if payload.FriendID == 0 {
		return fmt.Errorf("join_chat requires friendId")
	}
	h.hub.JoinRoom(client, events.DirectRoom(client.UserID, payload.FriendID))
	return nil
}

// handleSendMessage persists through the message service; delivery to
// the room comes back through the notifications topic like any other
// message, so REST and websocket sends share one path.
func (h *WebSocketHandler) handleSendMessage(ctx context.Context, client *websocket.Client, data json.RawMessage) error {
	var payload events.SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("invalid send_message payload: %w", err)
	}
	_, err := h.messageService.SendDirectMessage(ctx, client.UserID, payload.FriendID, payload.Content, payload.MessageType)
	return err
}

// handleTyping broadcasts directly: typing is ephemeral and loses all
// value if it survives a broker round trip it does not need.
func (h *WebSocketHandler) handleTyping(client *websocket.Client, data json.RawMessage) error {
	var payload events.TypingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("invalid typing payload: %w", err)
	}
	if payload.FriendID == 0 {
		return fmt.Errorf("typing requires friendId")
	}
	h.hub.Broadcast(events.DirectRoom(client.UserID, payload.FriendID), events.EventUserTyping, events.TypingPayload{
		UserID:   client.UserID,
		IsTyping: payload.IsTyping,
	})
	return nil
}
