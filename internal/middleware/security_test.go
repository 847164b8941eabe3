package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Fatalf("%s = %q, want %q", header, got, want)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Fatal("expected HSTS header")
	}
}

func TestIsCredentialPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "/api/auth/signin", want: true},
		{path: "/api/auth/forgot-password", want: true},
		{path: "/api/auth/reset-password/abc123", want: true},
		{path: "/api/auth/signup", want: false},
		{path: "/api/bookings", want: false},
	}
	for _, tc := range tests {
		if got := isCredentialPath(tc.path); got != tc.want {
			t.Fatalf("isCredentialPath(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestLoginRateLimitBlocksAfterBurst(t *testing.T) {
	handler := LoginRateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last int
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
		req.RemoteAddr = "198.51.100.7:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", last)
	}
}

func TestLoginRateLimitIgnoresOtherPaths(t *testing.T) {
	handler := LoginRateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/therapists", nil)
		req.RemoteAddr = "198.51.100.8:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d got status %d", i, rec.Code)
		}
	}
}
