package apiserver

import (
	"encoding/json"
	"net/http"

	"studychat/internal/middleware"
	"studychat/internal/models"
	"studychat/internal/services"
)

// GroupHandler handles group and group-message endpoints.
type GroupHandler struct {
	groupService   services.GroupService
	messageService services.MessageService
}

// NewGroupHandler creates a GroupHandler.
func NewGroupHandler(groupService services.GroupService, messageService services.MessageService) *GroupHandler {
	return &GroupHandler{groupService: groupService, messageService: messageService}
}

type createGroupPayload struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MemberIDs   []uint `json:"memberIds,omitempty"`
}

// CreateGroupHandler handles POST /api/v1/groups.
func (h *GroupHandler) CreateGroupHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	var payload createGroupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	group, err := h.groupService.CreateGroup(r.Context(), userID, payload.Name, payload.Description, payload.MemberIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, group)
}

// ListGroupsHandler handles GET /api/v1/groups.
func (h *GroupHandler) ListGroupsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	groups, err := h.groupService.ListGroups(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if groups == nil {
		groups = []*models.Group{}
	}
	writeJSONResponse(w, http.StatusOK, groups)
}

// GetGroupHandler handles GET /api/v1/groups/{groupId}.
func (h *GroupHandler) GetGroupHandler(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.identify(w, r)
	if !ok {
		return
	}

	group, err := h.groupService.GetGroup(r.Context(), userID, groupID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, group)
}

// UpdateGroupHandler handles PATCH /api/v1/groups/{groupId}.
func (h *GroupHandler) UpdateGroupHandler(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var update services.GroupUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	group, err := h.groupService.UpdateGroup(r.Context(), userID, groupID, update)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, group)
}

// DeleteGroupHandler handles DELETE /api/v1/groups/{groupId}.
func (h *GroupHandler) DeleteGroupHandler(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.identify(w, r)
	if !ok {
		return
	}

	if err := h.groupService.DeleteGroup(r.Context(), userID, groupID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "group deleted"})
}

type addMemberPayload struct {
	UserID uint `json:"userId"`
}

// AddMemberHandler handles POST /api/v1/groups/{groupId}/members.
func (h *GroupHandler) AddMemberHandler(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var payload addMemberPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if payload.UserID == 0 {
		writeJSONError(w, "missing userId", http.StatusBadRequest)
		return
	}

	if err := h.groupService.AddMember(r.Context(), userID, groupID, payload.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]string{"message": "member added"})
}

// RemoveMemberHandler handles DELETE /api/v1/groups/{groupId}/members/{userId}.
func (h *GroupHandler) RemoveMemberHandler(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.identify(w, r)
	if !ok {
		return
	}
	memberID, ok := parseUintVar(r, "userId")
	if !ok {
		writeJSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	if err := h.groupService.RemoveMember(r.Context(), userID, groupID, memberID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "member removed"})
}

// ListMembersHandler handles GET /api/v1/groups/{groupId}/members.
func (h *GroupHandler) ListMembersHandler(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.identify(w, r)
	if !ok {
		return
	}

	members, err := h.groupService.ListMembers(r.Context(), userID, groupID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if members == nil {
		members = []*models.GroupMemberInfo{}
	}
	writeJSONResponse(w, http.StatusOK, members)
}

type sendGroupMessagePayload struct {
	Content     string             `json:"content"`
	MessageType models.MessageType `json:"messageType,omitempty"`
}

// SendGroupMessageHandler handles POST /api/v1/groups/{groupId}/messages.
func (h *GroupHandler) SendGroupMessageHandler(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var payload sendGroupMessagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	message, err := h.messageService.SendGroupMessage(r.Context(), userID, groupID, payload.Content, payload.MessageType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, message)
}

// GetGroupMessagesHandler handles GET /api/v1/groups/{groupId}/messages.
func (h *GroupHandler) GetGroupMessagesHandler(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.identify(w, r)
	if !ok {
		return
	}

	messages, err := h.messageService.GetGroupHistory(r.Context(), userID, groupID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	writeJSONResponse(w, http.StatusOK, messages)
}

func (h *GroupHandler) identify(w http.ResponseWriter, r *http.Request) (userID, groupID uint, ok bool) {
	userID, ok = middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return 0, 0, false
	}
	groupID, ok = parseUintVar(r, "groupId")
	if !ok {
		writeJSONError(w, "invalid group id", http.StatusBadRequest)
		return 0, 0, false
	}
	return userID, groupID, true
}
