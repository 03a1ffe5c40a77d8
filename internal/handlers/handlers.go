package handlers

import (
	"net/http"

	"github.com/Scroti/want-to-watch/internal/auth"
	"github.com/Scroti/want-to-watch/internal/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// requireUser returns the caller or writes a 401 and reports false.
func requireUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, "authentication required", http.StatusUnauthorized)
		return nil, false
	}
	return user, true
}

// viewerID returns the caller's id on optional-auth routes, or "".
func viewerID(r *http.Request) string {
	if user, err := auth.GetUserFromContext(r.Context()); err == nil {
		return user.ID
	}
	return ""
}

type successResponse struct {
	Success bool `json:"success"`
}

func respondSuccess(w http.ResponseWriter) {
	utils.RespondJSON(w, successResponse{Success: true}, http.StatusOK)
}
