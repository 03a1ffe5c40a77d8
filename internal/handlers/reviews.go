package handlers

import (
	"net/http"

	"github.com/Scroti/want-to-watch/internal/database"
	"github.com/Scroti/want-to-watch/internal/services"
	"github.com/Scroti/want-to-watch/internal/types"
	"github.com/Scroti/want-to-watch/internal/utils"
)

type ReviewHandler struct {
	store      *database.Store
	activities *services.ActivityWriter
}

func NewReviewHandler(store *database.Store, activities *services.ActivityWriter) *ReviewHandler {
	return &ReviewHandler{store: store, activities: activities}
}

// GetReviews lists reviews for ?mediaId= or by ?userId=.
func (h *ReviewHandler) GetReviews(w http.ResponseWriter, r *http.Request) {
	filter := database.ReviewFilter{
		MediaID:  utils.GetQueryParam(r, "mediaId", ""),
		UserID:   utils.GetQueryParam(r, "userId", ""),
		ViewerID: viewerID(r),
		Limit:    utils.ClampLimit(r, 50, maxPageSize),
	}
	if filter.MediaID == "" && filter.UserID == "" {
		utils.RespondError(w, "mediaId or userId is required", http.StatusBadRequest)
		return
	}

	reviews, err := h.store.ListReviews(r.Context(), filter)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, reviews, http.StatusOK)
}

func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req types.CreateReviewRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	review, err := h.store.CreateReview(r.Context(), user.ID, req)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	if profile, err := h.store.GetProfile(r.Context(), user.ID); err == nil {
		review.User = profile
	}

	h.activities.Record(r.Context(), user.ID, types.ActivityReviewed, review.MediaID, types.TargetMedia, map[string]any{
		"rating": review.Rating,
		"title":  review.Title,
	})

	utils.RespondJSON(w, review, http.StatusCreated)
}

func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req types.UpdateReviewRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	review, err := h.store.UpdateReview(r.Context(), user.ID, utils.GetPathParam(r, "id"), req)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, review, http.StatusOK)
}

func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteReview(r.Context(), user.ID, utils.GetPathParam(r, "id")); err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	respondSuccess(w)
}

type likeResponse struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

// ToggleLike likes the review, or removes the caller's like if present.
func (h *ReviewHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	liked, count, err := h.store.ToggleReviewLike(r.Context(), utils.GetPathParam(r, "id"), user.ID)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, likeResponse{Liked: liked, LikesCount: count}, http.StatusOK)
}
