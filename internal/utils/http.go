package utils

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/Scroti/want-to-watch/internal/database"
	"github.com/Scroti/want-to-watch/internal/logging"
	"github.com/Scroti/want-to-watch/internal/services"
	"github.com/Scroti/want-to-watch/internal/validation"
)

const maxBodyBytes = 1 << 20

// GetPathParam returns a chi URL parameter.
func GetPathParam(r *http.Request, param string) string {
	return chi.URLParam(r, param)
}

// GetQueryParam gets a query parameter with optional default value
func GetQueryParam(r *http.Request, param, defaultValue string) string {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetQueryParamInt gets a query parameter as int with optional default value
func GetQueryParamInt(r *http.Request, param string, defaultValue int) int {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// GetQueryParamBool accepts "true"/"1" style values.
func GetQueryParamBool(r *http.Request, param string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(param))
	return b
}

// ClampLimit bounds the limit query value to [1, maxLimit], using def when unset or invalid.
func ClampLimit(r *http.Request, def, maxLimit int) int {
	limit := GetQueryParamInt(r, "limit", def)
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}

// DecodeJSON reads a JSON body into dst and validates it.
func DecodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to read body", database.ErrInvalid)
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: request body is required", database.ErrInvalid)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body", database.ErrInvalid)
	}
	if err := validation.ValidateStruct(dst); err != nil {
		return fmt.Errorf("%w: %s", database.ErrInvalid, err.Error())
	}
	return nil
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	body, err := json.Marshal(data)
	if err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// RespondError sends {"error": message}.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, map[string]string{"error": message}, statusCode)
}

// RespondStoreError maps store and gateway errors onto HTTP statuses. 5xx
// details are logged and not shown to the caller.
func RespondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, database.ErrInvalid):
		RespondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, database.ErrNotFound), errors.Is(err, services.ErrMediaNotFound):
		RespondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, database.ErrForbidden):
		RespondError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, database.ErrConflict):
		RespondError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrUpstream):
		logging.Ctx(r.Context()).Error().Err(err).Msg("metadata provider request failed")
		RespondError(w, "metadata provider unavailable", http.StatusBadGateway)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		RespondError(w, "internal server error", http.StatusInternalServerError)
	}
}
