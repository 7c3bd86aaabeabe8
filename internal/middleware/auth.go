// Package middleware contains the HTTP middleware stack: session auth,
// request logging, rate limiting, security headers, and metrics basic auth.
//
// Middleware follows the standard pattern of wrapping http.Handler and is
// composed per-route in the handler registration.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/wanderstay/wanderstay/internal/auth"
	"github.com/wanderstay/wanderstay/internal/service"
)

const (
	// SessionCookieName is the cookie that carries the opaque session
	// token.
	SessionCookieName = "wanderstay_session"

	// SessionCookiePath ensures the cookie is sent with all requests.
	SessionCookiePath = "/"
)

// AuthMiddleware loads and enforces session authentication.
type AuthMiddleware struct {
	userService service.UserService
	logger      *slog.Logger
	isSecure    bool
}

// NewAuthMiddleware creates an AuthMiddleware. isSecure enables the Secure
// cookie flag and should be true in production.
func NewAuthMiddleware(userService service.UserService, logger *slog.Logger, isSecure bool) *AuthMiddleware {
	return &AuthMiddleware{
		userService: userService,
		logger:      logger,
		isSecure:    isSecure,
	}
}

// WithUser resolves the session cookie to a user and stores it in the
// request context. The request continues either way; use RequireUser to
// enforce authentication.
func (m *AuthMiddleware) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.userService.GetBySessionToken(r.Context(), cookie.Value)
		if err != nil {
			// Invalid or expired session: drop the cookie and continue
			// anonymously.
			ClearSessionCookie(w, m.isSecure)
			next.ServeHTTP(w, r)
			return
		}

		r = r.WithContext(auth.SetUser(r.Context(), user))
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects anonymous requests with a 401 JSON body. Must run
// after WithUser.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.GetUser(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "unauthorized",
				"message": "Please sign in to continue",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetSessionCookie writes the session cookie after login. maxAge is in
// seconds and should match the session duration.
func SetSessionCookie(w http.ResponseWriter, token string, maxAge int, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     SessionCookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie on logout or when a stale
// token is seen.
func ClearSessionCookie(w http.ResponseWriter, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     SessionCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
