package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
)

// TokenParser validates an access token and yields the principal it names.
type TokenParser interface {
	Parse(accessToken string) (auth.Principal, error)
}

// Authenticate rejects requests lacking a valid access token and stores
// the acting principal on the context for the wrapped handler.
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, r, "authentication required")
				return
			}

			principal, err := parser.Parse(token)
			if err != nil {
				logging.FromContext(r.Context()).Warn("rejected access token", "error", err)
				unauthorized(w, r, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

// MaybeAuthenticate resolves a principal when credentials are present but
// lets anonymous requests through. Endpoints whose read models carry
// per-viewer flags use this: the flags resolve to false without a viewer.
func MaybeAuthenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if principal, err := parser.Parse(token); err == nil {
					r = r.WithContext(auth.WithPrincipal(r.Context(), principal))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken pulls the access token from the Authorization header or,
// failing that, the accessToken cookie.
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if cookie, err := r.Cookie("accessToken"); err == nil {
		return cookie.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	payload := map[string]any{
		"statusCode": http.StatusUnauthorized,
		"message":    message,
		"success":    false,
		"errors":     []string{message},
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(r.Context()).Error("encode auth error", "error", err)
	}
}
