package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Scroti/want-to-watch/internal/database"
	"github.com/Scroti/want-to-watch/internal/services"
)

func TestRespondStoreErrorMapping(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		code int
		body string
	}{
		{fmt.Errorf("%w: bad", database.ErrInvalid), http.StatusBadRequest, "invalid request: bad"},
		{fmt.Errorf("%w: list", database.ErrNotFound), http.StatusNotFound, "not found: list"},
		{services.ErrMediaNotFound, http.StatusNotFound, "media not found"},
		{fmt.Errorf("%w: not yours", database.ErrForbidden), http.StatusForbidden, "forbidden: not yours"},
		{fmt.Errorf("%w: dup", database.ErrConflict), http.StatusConflict, "conflict: dup"},
		{fmt.Errorf("%w: timeout", services.ErrUpstream), http.StatusBadGateway, "metadata provider unavailable"},
		{errors.New("disk I/O error"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		RespondStoreError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
		assert.Equal(t, tt.code, rec.Code, tt.err.Error())
		assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.body), rec.Body.String())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestDecodeJSONValidates(t *testing.T) {
	t.Parallel()
	type body struct {
		Name string `json:"name" validate:"required"`
	}

	var ok body
	err := DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`)), &ok)
	require.NoError(t, err)
	assert.Equal(t, "x", ok.Name)

	for _, raw := range []string{"", "{", `{"name":""}`} {
		var b body
		err := DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw)), &b)
		assert.ErrorIs(t, err, database.ErrInvalid, raw)
	}
}

func TestClampLimit(t *testing.T) {
	t.Parallel()
	req := func(q string) *http.Request { return httptest.NewRequest(http.MethodGet, "/?"+q, nil) }
	assert.Equal(t, 20, ClampLimit(req(""), 20, 100))
	assert.Equal(t, 20, ClampLimit(req("limit=abc"), 20, 100))
	assert.Equal(t, 20, ClampLimit(req("limit=-3"), 20, 100))
	assert.Equal(t, 5, ClampLimit(req("limit=5"), 20, 100))
	assert.Equal(t, 100, ClampLimit(req("limit=500"), 20, 100))
}
