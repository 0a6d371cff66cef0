package apiserver

import (
	"encoding/json"
	"net/http"

	"studychat/internal/middleware"
	"studychat/internal/models"
	"studychat/internal/services"
)

// MessageHandler handles direct-message and conversation endpoints.
type MessageHandler struct {
	messageService      services.MessageService
	conversationService services.ConversationService
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(messageService services.MessageService, conversationService services.ConversationService) *MessageHandler {
	return &MessageHandler{messageService: messageService, conversationService: conversationService}
}

type sendMessagePayload struct {
	ReceiverID  uint               `json:"receiverId"`
	Content     string             `json:"content"`
	MessageType models.MessageType `json:"messageType,omitempty"`
}

// SendMessageHandler handles POST /api/v1/messages.
func (h *MessageHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	var payload sendMessagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	message, err := h.messageService.SendDirectMessage(r.Context(), userID, payload.ReceiverID, payload.Content, payload.MessageType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, message)
}

// GetHistoryHandler handles GET /api/v1/messages/{friendId}.
func (h *MessageHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return
	}
	friendID, ok := parseUintVar(r, "friendId")
	if !ok {
		writeJSONError(w, "invalid friend id", http.StatusBadRequest)
		return
	}

	messages, err := h.messageService.GetDirectHistory(r.Context(), userID, friendID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	writeJSONResponse(w, http.StatusOK, messages)
}

// MarkReadHandler handles PATCH /api/v1/messages/{senderId}/read.
func (h *MessageHandler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return
	}
	senderID, ok := parseUintVar(r, "senderId")
	if !ok {
		writeJSONError(w, "invalid sender id", http.StatusBadRequest)
		return
	}

	updated, err := h.messageService.MarkConversationRead(r.Context(), userID, senderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]int64{"updated": updated})
}

// ListConversationsHandler handles GET /api/v1/messages/conversations.
func (h *MessageHandler) ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	conversations, err := h.conversationService.ListConversations(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if conversations == nil {
		conversations = []*models.Conversation{}
	}
	writeJSONResponse(w, http.StatusOK, conversations)
}
