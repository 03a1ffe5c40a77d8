package handlers

import (
	"net/http"

	"github.com/Scroti/want-to-watch/internal/database"
	"github.com/Scroti/want-to-watch/internal/types"
	"github.com/Scroti/want-to-watch/internal/utils"
)

type CommentHandler struct {
	store *database.Store
}

func NewCommentHandler(store *database.Store) *CommentHandler {
	return &CommentHandler{store: store}
}

func (h *CommentHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	mediaID := utils.GetQueryParam(r, "mediaId", "")
	if mediaID == "" {
		utils.RespondError(w, "mediaId is required", http.StatusBadRequest)
		return
	}

	comments, err := h.store.ListComments(r.Context(), mediaID)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, comments, http.StatusOK)
}

// CreateComment posts a comment, or a reply when parent_id is set.
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req types.CreateCommentRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	comment, err := h.store.CreateComment(r.Context(), user.ID, req)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, comment, http.StatusCreated)
}

func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteComment(r.Context(), user.ID, utils.GetPathParam(r, "id")); err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	respondSuccess(w)
}
