package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/therapytreasure/backend/pkg/clientip"
	"golang.org/x/time/rate"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	loginEntries sync.Map // ip -> *limiterEntry
	loginJanitor sync.Once
)

func loginLimiter(ip string) *rate.Limiter {
	loginJanitor.Do(func() {
		go func() {
			for range time.Tick(10 * time.Minute) {
				loginEntries.Range(func(key, value interface{}) bool {
					if entry := value.(*limiterEntry); time.Since(entry.lastSeen) > 30*time.Minute {
						loginEntries.Delete(key)
					}
					return true
				})
			}
		}()
	})

	now := time.Now()
	if v, ok := loginEntries.Load(ip); ok {
		entry := v.(*limiterEntry)
		entry.lastSeen = now
		return entry.limiter
	}
	entry := &limiterEntry{
		limiter:  rate.NewLimiter(rate.Every(12*time.Second), 5),
		lastSeen: now,
	}
	loginEntries.Store(ip, entry)
	return entry.limiter
}

// LoginRateLimit throttles credential endpoints per IP (5 burst, then one
// attempt per 12s). No lockout exists beyond this, so brute forcing a
// password through signin stays slow.
func LoginRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && isCredentialPath(r.URL.Path) {
			if !loginLimiter(clientip.RealClientIP(r)).Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"success":false,"message":"Too many attempts. Please wait before trying again."}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isCredentialPath(path string) bool {
	switch {
	case path == "/api/auth/signin",
		path == "/api/auth/forgot-password",
		strings.HasPrefix(path, "/api/auth/reset-password/"):
		return true
	}
	return false
}
