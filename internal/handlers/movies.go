package handlers

import (
	"context"
	"net/http"

	"github.com/Scroti/want-to-watch/internal/database"
	"github.com/Scroti/want-to-watch/internal/types"
	"github.com/Scroti/want-to-watch/internal/utils"
)

// TMDB refuses pages past 500.
const maxSearchPage = 500

// MetadataProvider is the read-only catalog the media routes proxy to.
type MetadataProvider interface {
	Search(ctx context.Context, query string, page int) (*types.SearchResults, error)
	GetMedia(ctx context.Context, tmdbID int, mediaType types.MediaType) (*types.MediaDetail, error)
}

type MediaHandler struct {
	tmdb MetadataProvider
}

func NewMediaHandler(tmdb MetadataProvider) *MediaHandler {
	return &MediaHandler{tmdb: tmdb}
}

// Search queries movies and tv shows together.
func (h *MediaHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := utils.GetQueryParam(r, "q", "")
	if query == "" {
		utils.RespondError(w, "q is required", http.StatusBadRequest)
		return
	}
	page := min(max(utils.GetQueryParamInt(r, "page", 1), 1), maxSearchPage)

	results, err := h.tmdb.Search(r.Context(), query, page)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, results, http.StatusOK)
}

// GetMedia returns details for an id of the form "{tmdb_id}-{movie|tv}".
func (h *MediaHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	tmdbID, mediaType, err := database.ParseMediaID(utils.GetPathParam(r, "id"))
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	detail, err := h.tmdb.GetMedia(r.Context(), tmdbID, mediaType)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, detail, http.StatusOK)
}
