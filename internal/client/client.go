// Package client is a typed client for the FitTrack HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/fittrack/internal/handlers"
)

const DefaultTimeout = 15 * time.Second

var (
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrSessionExpired = errors.New("session expired, log in again")
)

// Session carries the caller's credentials. It is passed explicitly to every
// authenticated call; Login and Register fill it in, and an auth failure from
// the server clears it.
type Session struct {
	Token  string    `json:"token"`
	UserID uuid.UUID `json:"userId"`
}

func (s *Session) Active() bool {
	return s != nil && s.Token != ""
}

// Clear discards the credentials. There is no server-side logout.
func (s *Session) Clear() {
	s.Token = ""
	s.UserID = uuid.Nil
}

// APIError is a failure envelope returned by the server.
type APIError struct {
	Status  int
	Kind    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Message, e.Status)
}

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// do sends body as JSON and decodes a successful response into out. A nil
// session sends the request unauthenticated.
func (c *Client) do(ctx context.Context, s *Session, method, path string, body, out interface{}) (handlers.Envelope, error) {
	var env handlers.Envelope

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return env, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return env, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s != nil {
		if !s.Active() {
			return env, ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return env, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return env, fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, &APIError{Status: resp.StatusCode, Kind: handlers.KindServerError, Message: "unexpected response body"}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Kind: env.Error, Message: env.Message}
		if s != nil && (env.Error == handlers.KindUnauthorized || env.Error == handlers.KindInvalidToken) {
			s.Clear()
			return env, fmt.Errorf("%w: %w", ErrSessionExpired, apiErr)
		}
		return env, apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return env, fmt.Errorf("decode response: %w", err)
		}
	}
	return env, nil
}
