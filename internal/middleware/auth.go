package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/avelichko/pyai-teacher/backend/pkg/utils"
)

type contextKey string

const userIDKey contextKey = "userID"

// TokenVerifier validates a session token and returns the user ID it
// was issued for.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// RequireAuth returns middleware that rejects requests without a valid
// bearer token and stores the user ID in the request context.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				utils.RespondError(w, http.StatusUnauthorized, "authorization required")
				return
			}

			userID, err := verifier.VerifyToken(token)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "invalid session token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID extracts the authenticated user ID from the request context.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// RequireAdmin returns middleware that rejects requests whose
// X-Admin-Key header does not match the configured admin password.
func RequireAdmin(password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-Admin-Key")
			if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(password)) != 1 {
				utils.RespondError(w, http.StatusUnauthorized, "admin access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
