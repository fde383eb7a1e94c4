package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/fittrack/internal/handlers"
	"github.com/HammerMeetNail/fittrack/internal/testutil"
)

type stubVerifier struct {
	token  string
	userID uuid.UUID
}

func (v stubVerifier) Verify(token string) (uuid.UUID, error) {
	if token != v.token {
		return uuid.Nil, errors.New("bad token")
	}
	return v.userID, nil
}

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	userID := uuid.New()
	mw := NewAuthMiddleware(stubVerifier{token: "good", userID: userID})

	var seen uuid.UUID
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = handlers.GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantKind string
	}{
		{name: "valid", header: "Bearer good", wantCode: http.StatusNoContent},
		{name: "lowercase scheme", header: "bearer good", wantCode: http.StatusNoContent},
		{name: "missing", header: "", wantCode: http.StatusUnauthorized, wantKind: handlers.KindUnauthorized},
		{name: "basic scheme", header: "Basic Zm9vOmJhcg==", wantCode: http.StatusUnauthorized, wantKind: handlers.KindUnauthorized},
		{name: "empty token", header: "Bearer  ", wantCode: http.StatusUnauthorized, wantKind: handlers.KindUnauthorized},
		{name: "bad token", header: "Bearer forged", wantCode: http.StatusUnauthorized, wantKind: handlers.KindInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = uuid.Nil
			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			testutil.AssertStatusCode(t, rr, tt.wantCode)
			if tt.wantKind != "" {
				testutil.AssertJSONContains(t, rr.Body.Bytes(), "error", tt.wantKind)
				if seen != uuid.Nil {
					t.Fatal("handler must not run for rejected requests")
				}
				return
			}
			if seen != userID {
				t.Fatalf("expected user %s in context, got %s", userID, seen)
			}
		})
	}
}
