package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elskow/transcendence/internal/apperr"
	"github.com/elskow/transcendence/internal/config"
	"github.com/elskow/transcendence/internal/httpx"
)

// Define a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key used to store the authenticated user id in the context
	UserContextKey contextKey = "user"
)

type AuthMiddleware struct {
	config  *config.AuthConfig
	service *Service
	log     *zap.Logger
}

func NewAuthMiddleware(config *config.AuthConfig, service *Service, log *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		config:  config,
		service: service,
		log:     log,
	}
}

// Require rejects requests without a fully authenticated session cookie.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return m.wrap(next, false)
}

// RequireFirstFactor accepts sessions still waiting for the second factor.
func (m *AuthMiddleware) RequireFirstFactor(next http.Handler) http.Handler {
	return m.wrap(next, true)
}

func (m *AuthMiddleware) wrap(next http.Handler, firstFactorOnly bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := m.AuthenticationMiddleware(r, firstFactorOnly)
		if err != nil {
			httpx.WriteError(w, r, m.log, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) AuthenticationMiddleware(r *http.Request, firstFactorOnly bool) (context.Context, error) {
	cookie, err := r.Cookie(m.config.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, apperr.Unauthorized("missing token")
	}

	user, _, err := m.service.ResolveSession(r.Context(), cookie.Value, firstFactorOnly)
	if err != nil {
		return nil, err
	}

	return context.WithValue(r.Context(), UserContextKey, user.ID), nil
}

// GetUserFromContext returns the user id stored by the middleware.
func GetUserFromContext(ctx context.Context) (uuid.UUID, error) {
	userID, ok := ctx.Value(UserContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, apperr.Unauthorized("user not found in context")
	}
	return userID, nil
}

// WithUser stores userID the way the middleware does; handlers in other
// packages use it in tests.
func WithUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserContextKey, userID)
}

// SessionCookie wraps a signed token in the Authentication cookie.
func (m *AuthMiddleware) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     m.config.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.config.TokenExpiration / time.Second),
	}
}

func (m *AuthMiddleware) LogoutCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}
