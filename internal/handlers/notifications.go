package handlers

import (
	"net/http"

	"github.com/Scroti/want-to-watch/internal/database"
	"github.com/Scroti/want-to-watch/internal/types"
	"github.com/Scroti/want-to-watch/internal/utils"
)

const notificationsLimit = 50

type NotificationHandler struct {
	store *database.Store
}

func NewNotificationHandler(store *database.Store) *NotificationHandler {
	return &NotificationHandler{store: store}
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	notifications, err := h.store.ListNotifications(r.Context(), user.ID,
		utils.GetQueryParamBool(r, "unreadOnly"), notificationsLimit)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, notifications, http.StatusOK)
}

type markReadResponse struct {
	Success bool  `json:"success"`
	Updated int64 `json:"updated"`
}

// MarkRead marks the listed notifications, or all of them with mark_all_read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req types.MarkNotificationsReadRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	if !req.MarkAllRead && len(req.NotificationIDs) == 0 {
		utils.RespondError(w, "notification_ids or mark_all_read is required", http.StatusBadRequest)
		return
	}

	var (
		updated int64
		err     error
	)
	if req.MarkAllRead {
		updated, err = h.store.MarkAllNotificationsRead(r.Context(), user.ID)
	} else {
		updated, err = h.store.MarkNotificationsRead(r.Context(), user.ID, req.NotificationIDs)
	}
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, markReadResponse{Success: true, Updated: updated}, http.StatusOK)
}

func (h *NotificationHandler) MarkOneRead(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.store.MarkNotificationRead(r.Context(), user.ID, utils.GetPathParam(r, "id")); err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	respondSuccess(w)
}
