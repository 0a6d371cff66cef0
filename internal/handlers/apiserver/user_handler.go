package apiserver

import (
	"net/http"

	"studychat/internal/middleware"
	"studychat/internal/models"
	"studychat/internal/services"
)

// UserHandler handles user lookup endpoints.
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// SearchUsersHandler handles GET /api/v1/users/search?q=.
func (h *UserHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	users, err := h.userService.SearchUsers(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if users == nil {
		users = []*models.UserBasicInfo{}
	}
	writeJSONResponse(w, http.StatusOK, users)
}

// GetMeHandler handles GET /api/v1/users/me.
func (h *UserHandler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	info, err := h.userService.GetBasicInfo(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, info)
}
