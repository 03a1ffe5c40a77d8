package handlers

import (
	"net/http"

	"github.com/Scroti/want-to-watch/internal/database"
	"github.com/Scroti/want-to-watch/internal/types"
	"github.com/Scroti/want-to-watch/internal/utils"
)

type UserHandler struct {
	store *database.Store
}

func NewUserHandler(store *database.Store) *UserHandler {
	return &UserHandler{store: store}
}

// GetProfile looks a profile up by ?username= (which also accepts a user
// id), by ?userId=, or returns the caller's own profile.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	var (
		profile *types.Profile
		err     error
	)
	switch {
	case utils.GetQueryParam(r, "username", "") != "":
		profile, err = h.store.GetProfileByUsername(r.Context(), utils.GetQueryParam(r, "username", ""))
	case utils.GetQueryParam(r, "userId", "") != "":
		profile, err = h.store.GetProfile(r.Context(), utils.GetQueryParam(r, "userId", ""))
	default:
		user, ok := requireUser(w, r)
		if !ok {
			return
		}
		profile, err = h.store.GetProfile(r.Context(), user.ID)
	}
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, profile, http.StatusOK)
}

// UpsertProfile updates the caller's profile. A username can only be set once.
func (h *UserHandler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req types.UpdateProfileRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	profile, err := h.store.UpsertProfile(r.Context(), user.ID, req)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, profile, http.StatusOK)
}

func (h *UserHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.ProfileStats(r.Context(), utils.GetPathParam(r, "userId"))
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, stats, http.StatusOK)
}

type autoCreateResponse struct {
	Profile *types.Profile `json:"profile"`
	Created bool           `json:"created"`
}

// AutoCreateProfile creates the caller's profile from their token claims.
// It answers 201 when a row was inserted and 200 when one already existed.
func (h *UserHandler) AutoCreateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	profile, created, err := h.store.BootstrapProfile(r.Context(), user.ID, user.DisplayName(), user.Picture)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	utils.RespondJSON(w, autoCreateResponse{Profile: profile, Created: created}, status)
}

func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.SearchProfiles(r.Context(), utils.GetQueryParam(r, "q", ""), utils.ClampLimit(r, 50, maxPageSize))
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, profiles, http.StatusOK)
}

// GetUserWatchlist returns another user's watchlist, optionally filtered by ?status=.
func (h *UserHandler) GetUserWatchlist(w http.ResponseWriter, r *http.Request) {
	userID := utils.GetPathParam(r, "userId")
	status, err := statusFilter(r)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	exists, err := h.store.ProfileExists(r.Context(), userID)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	if !exists {
		utils.RespondError(w, "user not found", http.StatusNotFound)
		return
	}

	items, err := h.store.ListWatchlist(r.Context(), userID, status)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, items, http.StatusOK)
}
