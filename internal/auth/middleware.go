package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/Scroti/want-to-watch/internal/logging"
	"github.com/Scroti/want-to-watch/internal/utils"
)

var ErrUnauthenticated = errors.New("no authenticated user")

// User is the caller identity taken from a validated token. ID is the
// token subject and doubles as the profile user_id.
type User struct {
	ID       string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Picture  string `json:"picture"`
}

// DisplayName picks name, then nickname, then the email local part.
func (u *User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Nickname != "":
		return u.Nickname
	case u.Email != "":
		local, _, _ := strings.Cut(u.Email, "@")
		return local
	default:
		return ""
	}
}

// CustomClaims contains the profile claims Auth0 adds to access tokens.
type CustomClaims struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Picture  string `json:"picture"`
}

// Validate satisfies validator.CustomClaims; the profile claims are optional.
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// NewValidator builds an RS256 validator backed by the tenant's cached JWKS.
func NewValidator(domain, audience string) (*validator.Validator, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT validator: %w", err)
	}
	return jwtValidator, nil
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(v *validator.Validator) func(http.Handler) http.Handler {
	return newMiddleware(v, false).CheckJWT
}

// OptionalAuth lets anonymous requests through but still rejects invalid tokens.
func OptionalAuth(v *validator.Validator) func(http.Handler) http.Handler {
	return newMiddleware(v, true).CheckJWT
}

func newMiddleware(v *validator.Validator, optional bool) *jwtmiddleware.JWTMiddleware {
	return jwtmiddleware.New(
		v.ValidateToken,
		jwtmiddleware.WithCredentialsOptional(optional),
		jwtmiddleware.WithErrorHandler(errorHandler),
	)
}

func errorHandler(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Debug().Err(err).Msg("rejected token")
	if errors.Is(err, jwtmiddleware.ErrJWTMissing) {
		utils.RespondError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	utils.RespondError(w, "invalid or expired token", http.StatusUnauthorized)
}

// GetUserFromContext returns the validated caller or ErrUnauthenticated.
func GetUserFromContext(ctx context.Context) (*User, error) {
	claims, ok := ctx.Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
	if !ok || claims.RegisteredClaims.Subject == "" {
		return nil, ErrUnauthenticated
	}

	user := &User{ID: claims.RegisteredClaims.Subject}
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok {
		user.Email = custom.Email
		user.Name = custom.Name
		user.Nickname = custom.Nickname
		user.Picture = custom.Picture
	}
	return user, nil
}

// ContextWithClaims stores validated claims the same way the JWT middleware does.
func ContextWithClaims(ctx context.Context, subject string, custom *CustomClaims) context.Context {
	claims := &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: subject},
	}
	if custom != nil {
		claims.CustomClaims = custom
	}
	return context.WithValue(ctx, jwtmiddleware.ContextKey{}, claims)
}
