package handlers

import (
	"fmt"
	"net/http"

	"github.com/Scroti/want-to-watch/internal/database"
	"github.com/Scroti/want-to-watch/internal/services"
	"github.com/Scroti/want-to-watch/internal/types"
	"github.com/Scroti/want-to-watch/internal/utils"
)

type WatchlistHandler struct {
	store      *database.Store
	activities *services.ActivityWriter
}

func NewWatchlistHandler(store *database.Store, activities *services.ActivityWriter) *WatchlistHandler {
	return &WatchlistHandler{store: store, activities: activities}
}

// statusFilter reads the optional ?status= filter.
func statusFilter(r *http.Request) (types.WatchStatus, error) {
	status := types.WatchStatus(utils.GetQueryParam(r, "status", ""))
	if status != "" && !status.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", database.ErrInvalid, status)
	}
	return status, nil
}

func (h *WatchlistHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	status, err := statusFilter(r)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	items, err := h.store.ListWatchlist(r.Context(), user.ID, status)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, items, http.StatusOK)
}

func (h *WatchlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req types.AddWatchlistItemRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	item, err := h.store.AddWatchlistItem(r.Context(), user.ID, req)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	h.activities.Record(r.Context(), user.ID, types.ActivityAddedItem, item.ID, types.TargetMedia, map[string]any{
		"title":      item.Title,
		"media_type": item.MediaType,
	})

	utils.RespondJSON(w, item, http.StatusCreated)
}

func (h *WatchlistHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req types.UpdateWatchlistItemRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	item, previous, err := h.store.UpdateWatchlistItem(r.Context(), user.ID, utils.GetPathParam(r, "id"), req)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	// Only a move into the watched class is announced.
	if item.Status.IsWatched() && !previous.IsWatched() {
		h.activities.Record(r.Context(), user.ID, types.ActivityWatchedItem, item.ID, types.TargetMedia, map[string]any{
			"title":      item.Title,
			"status":     item.Status,
			"media_type": item.MediaType,
		})
	}

	utils.RespondJSON(w, item, http.StatusOK)
}

func (h *WatchlistHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteWatchlistItem(r.Context(), user.ID, utils.GetPathParam(r, "id")); err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	respondSuccess(w)
}
