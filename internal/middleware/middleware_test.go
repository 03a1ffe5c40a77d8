package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Scroti/want-to-watch/internal/auth"
	"github.com/Scroti/want-to-watch/internal/logging"
	"github.com/Scroti/want-to-watch/internal/metrics"
	"github.com/Scroti/want-to-watch/internal/types"
)

func TestRequestID(t *testing.T) {
	t.Parallel()
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	t.Parallel()
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/api/lists/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/api/lists/{id}", "418")
	before := testutil.ToFloat64(counter)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/lists/one", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/lists/two", nil))
	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

type fakeBootstrapper struct {
	calls []string
	err   error
}

func (f *fakeBootstrapper) BootstrapProfile(ctx context.Context, userID, displayName, avatarURL string) (*types.Profile, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	f.calls = append(f.calls, userID+"|"+displayName+"|"+avatarURL)
	return &types.Profile{UserID: userID}, len(f.calls) == 1, nil
}

func TestEnsureProfile(t *testing.T) {
	t.Parallel()
	store := &fakeBootstrapper{}
	var loggedUser string
	h := EnsureProfile(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loggedUser = logging.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// Anonymous requests are not bootstrapped.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.calls)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.ContextWithClaims(req.Context(), "u1", &auth.CustomClaims{
		Email:   "movie.fan@example.com",
		Picture: "https://img.example/u1.png",
	}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.calls, 1)
	assert.Equal(t, "u1|movie.fan|https://img.example/u1.png", store.calls[0])
	assert.Equal(t, "u1", loggedUser)
}

func TestEnsureProfileStoreFailure(t *testing.T) {
	t.Parallel()
	store := &fakeBootstrapper{err: errors.New("disk full")}
	called := false
	h := EnsureProfile(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.ContextWithClaims(req.Context(), "u1", nil))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, called)
}
