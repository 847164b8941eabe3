package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/therapytreasure/backend/internal/models"
)

// SessionCookieName is the HttpOnly cookie carrying the session token.
const SessionCookieName = "session_token"

// Auth describes the authenticated caller for one request. It is resolved
// once by Authenticate and carried in the request context, replacing
// ambient per-request role flags.
type Auth struct {
	UserID string
	Role   models.Role
}

func (a *Auth) IsUser() bool      { return a.Role == models.RoleUser }
func (a *Auth) IsTherapist() bool { return a.Role == models.RoleTherapist }
func (a *Auth) IsAdmin() bool     { return a.Role == models.RoleAdmin }

// SessionResolver maps a session token to the caller's user id and role.
type SessionResolver func(ctx context.Context, token string) (userID, role string, ok bool)

type contextKey struct{}

var authContextKey contextKey

// Authenticate resolves the session cookie (or bearer token) into an Auth
// value on the request context. Requests without a valid session pass
// through unauthenticated; role guards decide what they may reach.
func Authenticate(resolve SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token != "" {
				if userID, role, ok := resolve(r.Context(), token); ok {
					auth := &Auth{UserID: userID, Role: models.Role(role)}
					r = r.WithContext(context.WithValue(r.Context(), authContextKey, auth))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// AuthFrom returns the Auth stored on the request context, if any.
func AuthFrom(r *http.Request) (*Auth, bool) {
	auth, ok := r.Context().Value(authContextKey).(*Auth)
	return auth, ok
}

// RequireRole rejects requests whose caller does not hold one of the given
// roles: 401 without a session, 403 with the wrong role.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth, ok := AuthFrom(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			for _, role := range roles {
				if auth.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, "Access denied")
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
