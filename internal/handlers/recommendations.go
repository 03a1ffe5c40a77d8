package handlers

import (
	"net/http"

	"github.com/Scroti/want-to-watch/internal/database"
	"github.com/Scroti/want-to-watch/internal/services"
	"github.com/Scroti/want-to-watch/internal/types"
	"github.com/Scroti/want-to-watch/internal/utils"
)

type RecommendationHandler struct {
	store         *database.Store
	notifications *services.NotificationWriter
}

func NewRecommendationHandler(store *database.Store, notifications *services.NotificationWriter) *RecommendationHandler {
	return &RecommendationHandler{store: store, notifications: notifications}
}

// GetRecommendations lists what others recommended to the caller.
func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	recs, err := h.store.ListRecommendationsReceived(r.Context(), user.ID, utils.ClampLimit(r, 50, maxPageSize))
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, recs, http.StatusOK)
}

func (h *RecommendationHandler) CreateRecommendation(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req types.CreateRecommendationRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	rec, err := h.store.CreateRecommendation(r.Context(), user.ID, req)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	h.notifications.NotifyRecommendation(r.Context(), rec)

	utils.RespondJSON(w, rec, http.StatusCreated)
}
