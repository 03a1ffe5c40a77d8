package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Scroti/want-to-watch/internal/logging"
	"github.com/Scroti/want-to-watch/internal/utils"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db       Pinger
	upstream func() map[string]any
}

// NewHealthHandler builds the liveness endpoint. upstream may be nil.
func NewHealthHandler(db Pinger, upstream func() map[string]any) *HealthHandler {
	return &HealthHandler{db: db, upstream: upstream}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := map[string]any{"status": "ok"}
	if h.upstream != nil {
		resp["tmdb"] = h.upstream()
	}
	if err := h.db.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("database ping failed")
		resp["status"] = "unavailable"
		utils.RespondJSON(w, resp, http.StatusServiceUnavailable)
		return
	}
	utils.RespondJSON(w, resp, http.StatusOK)
}
