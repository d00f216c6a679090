package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/adnanlatif/webdesk/internal/ratelimit"
)

// LoginRateLimitMiddleware throttles login attempts per username. The
// username is peeked from the JSON body (restored for the handler);
// requests without one fall through to the handler's own validation.
func LoginRateLimitMiddleware(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			var peek struct {
				Username string `json:"username"`
			}
			_ = json.Unmarshal(body, &peek)
			username := peek.Username

			if username != "" && !limiter.Allow(username) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many login attempts. Try again shortly.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects desktop and window operations while no session
// exists; the shell shows the locked login surface instead.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := h.sessions.Projection(); !ok {
			writeError(w, http.StatusUnauthorized, "desktop is locked")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin gates the admin editors behind a valid admin auth token
// presented as a bearer token.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing auth token")
			return
		}

		info := h.auth.ValidateToken(token)
		if info == nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired auth token")
			return
		}
		if !info.IsAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
