package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *validator.Validator {
	t.Helper()
	v, err := validator.New(
		func(ctx context.Context) (interface{}, error) { return []byte("secret"), nil },
		validator.HS256,
		"https://tenant.example/",
		[]string{"want-to-watch"},
	)
	require.NoError(t, err)
	return v
}

func TestDisplayName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		user User
		want string
	}{
		{"name wins", User{Name: "Alice A", Nickname: "ali", Email: "alice@example.com"}, "Alice A"},
		{"nickname next", User{Nickname: "ali", Email: "alice@example.com"}, "ali"},
		{"email local part", User{Email: "alice@example.com"}, "alice"},
		{"nothing", User{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
		})
	}
}

func TestGetUserFromContext(t *testing.T) {
	t.Parallel()

	_, err := GetUserFromContext(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)

	ctx := ContextWithClaims(context.Background(), "auth0|123", &CustomClaims{
		Email:   "a@example.com",
		Name:    "Alice",
		Picture: "https://img.example/a.png",
	})
	user, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "auth0|123", user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "https://img.example/a.png", user.Picture)

	user, err = GetUserFromContext(ContextWithClaims(context.Background(), "auth0|456", nil))
	require.NoError(t, err)
	assert.Equal(t, "auth0|456", user.ID)
	assert.Empty(t, user.Email)
}

func TestMiddlewareModes(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := GetUserFromContext(r.Context())
		assert.ErrorIs(t, err, ErrUnauthenticated)
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		mw         func(http.Handler) http.Handler
		authHeader string
		wantStatus int
		wantBody   string
	}{
		{"required without token", RequireAuth(v), "", http.StatusUnauthorized, `{"error":"authentication required"}`},
		{"required with garbage token", RequireAuth(v), "Bearer not-a-jwt", http.StatusUnauthorized, `{"error":"invalid or expired token"}`},
		{"optional without token", OptionalAuth(v), "", http.StatusNoContent, ""},
		{"optional with garbage token", OptionalAuth(v), "Bearer not-a-jwt", http.StatusUnauthorized, `{"error":"invalid or expired token"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/watchlist", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			tt.mw(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
