package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/fittrack/internal/handlers"
	"github.com/HammerMeetNail/fittrack/internal/models"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode: %v", err)
	}
}

func newTestServer(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/").WithHTTPClient(srv.Client())
}

func TestClient_LoginPopulatesSession(t *testing.T) {
	userID := uuid.New()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req handlers.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "right" {
			writeJSON(t, w, http.StatusUnauthorized, handlers.Envelope{Error: handlers.KindInvalidCredentials, Message: "Invalid credentials"})
			return
		}
		writeJSON(t, w, http.StatusOK, handlers.AuthResponse{Envelope: handlers.Envelope{Success: true}, Token: "tok", UserID: userID})
	})
	c := newTestServer(t, mux)

	var s Session
	err := c.Login(context.Background(), &s, "a@b.com", "wrong")
	if !IsKind(err, handlers.KindInvalidCredentials) {
		t.Fatalf("expected invalid_credentials, got %v", err)
	}
	if errors.Is(err, ErrSessionExpired) {
		t.Fatal("failed login must not read as an expired session")
	}
	if s.Active() {
		t.Fatal("session must stay empty after failed login")
	}

	if err := c.Login(context.Background(), &s, "a@b.com", "right"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if s.Token != "tok" || s.UserID != userID {
		t.Fatalf("unexpected session %+v", s)
	}
}

func TestClient_AuthFailureClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			writeJSON(t, w, http.StatusUnauthorized, handlers.Envelope{Error: handlers.KindInvalidToken})
			return
		}
		writeJSON(t, w, http.StatusOK, handlers.ProfileResponse{Envelope: handlers.Envelope{Success: true}, User: &handlers.ProfileView{Name: "Ann"}})
	})
	c := newTestServer(t, mux)

	s := &Session{Token: "good", UserID: uuid.New()}
	profile, err := c.Profile(context.Background(), s)
	if err != nil || profile.Name != "Ann" {
		t.Fatalf("unexpected profile %+v, err %v", profile, err)
	}

	s.Token = "stale"
	_, err = c.Profile(context.Background(), s)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if !IsKind(err, handlers.KindInvalidToken) {
		t.Fatalf("expected wrapped invalid_token, got %v", err)
	}
	if s.Active() {
		t.Fatal("expected session to be cleared")
	}

	if _, err := c.Profile(context.Background(), s); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestClient_MetricRoundTrip(t *testing.T) {
	entryID := uuid.New()
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/calories", func(w http.ResponseWriter, r *http.Request) {
		var req handlers.UpsertMetricRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		calls++
		created := calls == 1
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		view := handlers.MetricEntryView{ID: entryID, Date: req.Date, Value: req.Value}
		writeJSON(t, w, status, handlers.MetricEntryResponse{Envelope: handlers.Envelope{Success: true}, Created: &created, Calorie: &view})
	})
	mux.HandleFunc("GET /api/calories/date/{date}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, handlers.Envelope{Success: false, Message: "No calorie entry found for this date"})
	})
	mux.HandleFunc("DELETE /api/calories/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, handlers.Envelope{Error: handlers.KindNotFound, Message: "Calorie entry not found"})
	})
	c := newTestServer(t, mux)
	s := &Session{Token: "tok"}
	ctx := context.Background()

	entry, created, err := c.Record(ctx, s, models.MetricCalorie, "2024-01-15", 1800)
	if err != nil || !created || entry.ID != entryID {
		t.Fatalf("first record: entry %+v created %v err %v", entry, created, err)
	}
	entry, created, err = c.Record(ctx, s, models.MetricCalorie, "2024-01-15", 2000)
	if err != nil || created || entry.Value != 2000 || entry.ID != entryID {
		t.Fatalf("second record: entry %+v created %v err %v", entry, created, err)
	}

	missing, err := c.OnDate(ctx, s, models.MetricCalorie, "2024-01-16")
	if err != nil || missing != nil {
		t.Fatalf("expected nil entry without error, got %+v, %v", missing, err)
	}

	err = c.DeleteEntry(ctx, s, models.MetricCalorie, uuid.New())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Kind != handlers.KindNotFound {
		t.Fatalf("expected not_found APIError, got %v", err)
	}
	if !s.Active() {
		t.Fatal("not_found must not clear the session")
	}
}

func TestClient_FriendFlow(t *testing.T) {
	friendshipID := uuid.New()
	var accepted string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/friends", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusCreated, handlers.FriendRequestResponse{Envelope: handlers.Envelope{Success: true}, FriendshipID: friendshipID})
	})
	mux.HandleFunc("POST /api/users/friends/{id}/accept", func(w http.ResponseWriter, r *http.Request) {
		accepted = r.PathValue("id")
		writeJSON(t, w, http.StatusOK, handlers.Envelope{Success: true, Message: "Friend request accepted"})
	})
	c := newTestServer(t, mux)
	s := &Session{Token: "tok"}

	id, err := c.SendFriendRequest(context.Background(), s, "bob@example.com")
	if err != nil || id != friendshipID {
		t.Fatalf("unexpected id %s err %v", id, err)
	}
	if err := c.AcceptFriend(context.Background(), s, id); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted != friendshipID.String() {
		t.Fatalf("expected accept for %s, got %q", friendshipID, accepted)
	}
}

func TestClient_UnknownMetricKind(t *testing.T) {
	c := New("http://unused")
	if _, err := c.Entries(context.Background(), &Session{Token: "t"}, models.MetricKind("steps")); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
