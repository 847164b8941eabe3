package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/therapytreasure/backend/internal/models"
)

func stubResolver(valid map[string][2]string) SessionResolver {
	return func(ctx context.Context, token string) (string, string, bool) {
		entry, ok := valid[token]
		if !ok {
			return "", "", false
		}
		return entry[0], entry[1], true
	}
}

func TestAuthenticateCookie(t *testing.T) {
	resolve := stubResolver(map[string][2]string{
		"good-token": {"64f1c0ffee0000000000aaaa", "User"},
	})

	var got *Auth
	handler := Authenticate(resolve)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = AuthFrom(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good-token"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected auth on context")
	}
	if got.UserID != "64f1c0ffee0000000000aaaa" || got.Role != models.RoleUser {
		t.Fatalf("unexpected auth: %+v", got)
	}
}

func TestAuthenticateBearer(t *testing.T) {
	resolve := stubResolver(map[string][2]string{
		"bearer-token": {"64f1c0ffee0000000000bbbb", "Admin"},
	})

	var got *Auth
	handler := Authenticate(resolve)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = AuthFrom(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer bearer-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || !got.IsAdmin() {
		t.Fatalf("expected admin auth, got %+v", got)
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	resolve := stubResolver(nil)

	handler := Authenticate(resolve)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := AuthFrom(r); ok {
			t.Fatal("expected no auth for invalid token")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "bogus"})
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		auth       *Auth
		allowed    []models.Role
		wantStatus int
	}{
		{
			name:       "no session",
			auth:       nil,
			allowed:    []models.Role{models.RoleAdmin},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong role",
			auth:       &Auth{UserID: "x", Role: models.RoleUser},
			allowed:    []models.Role{models.RoleAdmin},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "matching role",
			auth:       &Auth{UserID: "x", Role: models.RoleAdmin},
			allowed:    []models.Role{models.RoleAdmin},
			wantStatus: http.StatusOK,
		},
		{
			name:       "one of several roles",
			auth:       &Auth{UserID: "x", Role: models.RoleTherapist},
			allowed:    []models.Role{models.RoleUser, models.RoleTherapist},
			wantStatus: http.StatusOK,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequireRole(tc.allowed...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.auth != nil {
				req = req.WithContext(context.WithValue(req.Context(), authContextKey, tc.auth))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestAuthRoleHelpers(t *testing.T) {
	if !(&Auth{Role: models.RoleUser}).IsUser() {
		t.Fatal("expected IsUser")
	}
	if !(&Auth{Role: models.RoleTherapist}).IsTherapist() {
		t.Fatal("expected IsTherapist")
	}
	if (&Auth{Role: models.RoleUser}).IsAdmin() {
		t.Fatal("did not expect IsAdmin")
	}
}
