package handlers

import (
	"net/http"

	"github.com/Scroti/want-to-watch/internal/database"
	"github.com/Scroti/want-to-watch/internal/types"
	"github.com/Scroti/want-to-watch/internal/utils"
)

type FeedHandler struct {
	store *database.Store
}

func NewFeedHandler(store *database.Store) *FeedHandler {
	return &FeedHandler{store: store}
}

// GetActivities returns ?userId='s own activity, or without it the caller's
// friends feed built from everyone they follow.
func (h *FeedHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	limit := utils.ClampLimit(r, defaultPageSize, maxPageSize)
	offset := max(utils.GetQueryParamInt(r, "offset", 0), 0)

	var (
		activities []*types.Activity
		err        error
	)
	if userID := utils.GetQueryParam(r, "userId", ""); userID != "" {
		activities, err = h.store.ListUserActivities(r.Context(), userID, limit, offset)
	} else {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}
		activities, err = h.store.ListFeed(r.Context(), user.ID, limit, offset)
	}
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, activities, http.StatusOK)
}
