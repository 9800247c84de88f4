package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// SessionHeader carries the admin session token on every gated request.
const SessionHeader = "x-session-id"

type Verifier interface {
	Verify(ctx context.Context, token string) error
}

type sessionKey struct{}

// SessionToken returns the token RequireSession accepted for this request.
func SessionToken(ctx context.Context) string {
	token, _ := ctx.Value(sessionKey{}).(string)
	return token
}

// TokenFromRequest reads the session header. Browsers cannot set headers on a
// websocket handshake, so the session query parameter is accepted as well.
func TokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(SessionHeader)); token != "" {
		return token
	}
	return strings.TrimSpace(r.URL.Query().Get("session"))
}

// RequireSession rejects requests without a live admin session with 401.
func RequireSession(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if err := v.Verify(r.Context(), token); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"error":   "Unauthorized",
				})
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
