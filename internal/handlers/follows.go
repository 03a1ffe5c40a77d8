package handlers

import (
	"net/http"

	"github.com/Scroti/want-to-watch/internal/database"
	"github.com/Scroti/want-to-watch/internal/services"
	"github.com/Scroti/want-to-watch/internal/types"
	"github.com/Scroti/want-to-watch/internal/utils"
)

type FollowHandler struct {
	store         *database.Store
	activities    *services.ActivityWriter
	notifications *services.NotificationWriter
}

func NewFollowHandler(store *database.Store, activities *services.ActivityWriter, notifications *services.NotificationWriter) *FollowHandler {
	return &FollowHandler{store: store, activities: activities, notifications: notifications}
}

// GetFollows lists ?type=following (default) or ?type=followers for
// ?userId=, falling back to the caller.
func (h *FollowHandler) GetFollows(w http.ResponseWriter, r *http.Request) {
	userID := utils.GetQueryParam(r, "userId", viewerID(r))
	if userID == "" {
		utils.RespondError(w, "userId is required", http.StatusBadRequest)
		return
	}

	var (
		profiles []*types.Profile
		err      error
	)
	switch utils.GetQueryParam(r, "type", "following") {
	case "following":
		profiles, err = h.store.ListFollowing(r.Context(), userID)
	case "followers":
		profiles, err = h.store.ListFollowers(r.Context(), userID)
	default:
		utils.RespondError(w, "type must be following or followers", http.StatusBadRequest)
		return
	}
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, profiles, http.StatusOK)
}

func (h *FollowHandler) CheckFollow(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	target := utils.GetQueryParam(r, "userId", "")
	if target == "" {
		utils.RespondError(w, "userId is required", http.StatusBadRequest)
		return
	}

	following, err := h.store.IsFollowing(r.Context(), user.ID, target)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, map[string]bool{"is_following": following}, http.StatusOK)
}

func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req types.FollowRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	follow, err := h.store.Follow(r.Context(), user.ID, req.FollowingID)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	h.activities.Record(r.Context(), user.ID, types.ActivityFollowedUser, follow.FollowingID, types.TargetUser, nil)
	h.notifications.NotifyFollow(r.Context(), user.ID, follow.FollowingID)

	utils.RespondJSON(w, follow, http.StatusCreated)
}

func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.store.Unfollow(r.Context(), user.ID, utils.GetPathParam(r, "userId")); err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	respondSuccess(w)
}
