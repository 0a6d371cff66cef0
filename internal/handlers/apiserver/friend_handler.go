package apiserver

import (
	"context"
	"encoding/json"
	"net/http"

	"studychat/internal/middleware"
	"studychat/internal/models"
	"studychat/internal/services"
)

// FriendHandler handles the friend-request and friend-list endpoints.
type FriendHandler struct {
	friendService services.FriendService
}

// NewFriendHandler creates a FriendHandler.
func NewFriendHandler(friendService services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

// friendTargetPayload is the body shared by the request mutations.
type friendTargetPayload struct {
	FriendID uint `json:"friendId"`
}

func decodeFriendTarget(w http.ResponseWriter, r *http.Request) (uint, bool) {
	var payload friendTargetPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return 0, false
	}
	defer r.Body.Close()
	if payload.FriendID == 0 {
		writeJSONError(w, "missing friendId", http.StatusBadRequest)
		return 0, false
	}
	return payload.FriendID, true
}

// SendRequestHandler handles POST /api/v1/friends/request.
func (h *FriendHandler) SendRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return
	}
	friendID, ok := decodeFriendTarget(w, r)
	if !ok {
		return
	}

	edge, err := h.friendService.SendRequest(r.Context(), userID, friendID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, edge)
}

// AcceptRequestHandler handles POST /api/v1/friends/accept.
func (h *FriendHandler) AcceptRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return
	}
	friendID, ok := decodeFriendTarget(w, r)
	if !ok {
		return
	}

	edge, err := h.friendService.AcceptRequest(r.Context(), userID, friendID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, edge)
}

// RejectRequestHandler handles POST /api/v1/friends/reject.
func (h *FriendHandler) RejectRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return
	}
	friendID, ok := decodeFriendTarget(w, r)
	if !ok {
		return
	}

	if err := h.friendService.RejectRequest(r.Context(), userID, friendID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "friend request rejected"})
}

// CancelRequestHandler handles DELETE /api/v1/friends/request/{friendId}.
func (h *FriendHandler) CancelRequestHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := h.friendService.CancelRequest(r.Context(), userID, friendID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "friend request canceled"})
}

// RemoveFriendHandler handles DELETE /api/v1/friends/{friendId}.
func (h *FriendHandler) RemoveFriendHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := h.friendService.RemoveFriend(r.Context(), userID, friendID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "friend removed"})
}

// ListFriendsHandler handles GET /api/v1/friends.
func (h *FriendHandler) ListFriendsHandler(w http.ResponseWriter, r *http.Request) {
	h.writeFriendList(w, r, h.friendService.ListFriends)
}

// ListPendingHandler handles GET /api/v1/friends/pending.
func (h *FriendHandler) ListPendingHandler(w http.ResponseWriter, r *http.Request) {
	h.writeFriendList(w, r, h.friendService.ListReceivedRequests)
}

// ListSentHandler handles GET /api/v1/friends/sent.
func (h *FriendHandler) ListSentHandler(w http.ResponseWriter, r *http.Request) {
	h.writeFriendList(w, r, h.friendService.ListSentRequests)
}

// ListAllHandler handles GET /api/v1/friends/all.
func (h *FriendHandler) ListAllHandler(w http.ResponseWriter, r *http.Request) {
	h.writeFriendList(w, r, h.friendService.ListAllRelations)
}

// StatusHandler handles GET /api/v1/friends/status/{friendId}.
func (h *FriendHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
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

	status, err := h.friendService.RelationshipStatus(r.Context(), userID, friendID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]models.RelationStatus{"status": status})
}

func (h *FriendHandler) writeFriendList(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, userID uint) ([]*models.FriendInfo, error)) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	infos, err := list(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if infos == nil {
		infos = []*models.FriendInfo{}
	}
	writeJSONResponse(w, http.StatusOK, infos)
}
