package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/fittrack/internal/handlers"
)

type tokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// AuthMiddleware admits requests carrying a valid bearer token and records the
// token's user on the request context.
type AuthMiddleware struct {
	verifier tokenVerifier
}

func NewAuthMiddleware(verifier tokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			handlers.WriteError(w, http.StatusUnauthorized, handlers.KindUnauthorized, "Authentication required")
			return
		}

		userID, err := m.verifier.Verify(token)
		if err != nil {
			handlers.WriteError(w, http.StatusUnauthorized, handlers.KindInvalidToken, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.SetUserIDInContext(r.Context(), userID)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserKey keys rate limits by the authenticated user. It returns "" for
// anonymous requests, which RateLimiter then keys by client IP.
func UserKey(r *http.Request) string {
	if userID, ok := handlers.GetUserIDFromContext(r.Context()); ok {
		return "user:" + userID.String()
	}
	return ""
}
