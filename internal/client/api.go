package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/fittrack/internal/handlers"
	"github.com/HammerMeetNail/fittrack/internal/models"
)

func (c *Client) authenticate(ctx context.Context, s *Session, path string, body interface{}) error {
	var resp handlers.AuthResponse
	if _, err := c.do(ctx, nil, http.MethodPost, path, body, &resp); err != nil {
		return err
	}
	s.Token = resp.Token
	s.UserID = resp.UserID
	return nil
}

// Register creates an account and logs s into it.
func (c *Client) Register(ctx context.Context, s *Session, name, email, password string) error {
	return c.authenticate(ctx, s, "/api/auth/register", handlers.RegisterRequest{Name: name, Email: email, Password: password})
}

func (c *Client) Login(ctx context.Context, s *Session, email, password string) error {
	return c.authenticate(ctx, s, "/api/auth/login", handlers.LoginRequest{Email: email, Password: password})
}

func (c *Client) Profile(ctx context.Context, s *Session) (*handlers.ProfileView, error) {
	var resp handlers.ProfileResponse
	if _, err := c.do(ctx, s, http.MethodGet, "/api/users/profile", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, s *Session, req handlers.UpdateProfileRequest) error {
	_, err := c.do(ctx, s, http.MethodPost, "/api/users/profile", req, nil)
	return err
}

func (c *Client) UpdateGoals(ctx context.Context, s *Session, req handlers.UpdateGoalsRequest) error {
	_, err := c.do(ctx, s, http.MethodPost, "/api/users/goals", req, nil)
	return err
}

func (c *Client) Statistics(ctx context.Context, s *Session, period string) (*handlers.StatisticsView, error) {
	path := "/api/users/statistics"
	if period != "" {
		path += "?period=" + url.QueryEscape(period)
	}
	var resp handlers.StatisticsResponse
	if _, err := c.do(ctx, s, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Statistics, nil
}

func (c *Client) MonthlyData(ctx context.Context, s *Session, year, month int) (*handlers.MonthlyDataResponse, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))
	var resp handlers.MonthlyDataResponse
	if _, err := c.do(ctx, s, http.MethodGet, "/api/users/monthly-data?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func metricPath(kind models.MetricKind) (string, error) {
	table, err := kind.Table()
	if err != nil {
		return "", err
	}
	return "/api/" + table, nil
}

func (c *Client) listMetric(ctx context.Context, s *Session, kind models.MetricKind, suffix string) ([]handlers.MetricEntryView, error) {
	base, err := metricPath(kind)
	if err != nil {
		return nil, err
	}
	var resp handlers.MetricListResponse
	if _, err := c.do(ctx, s, http.MethodGet, base+suffix, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries(), nil
}

// Entries lists every entry of kind, newest first.
func (c *Client) Entries(ctx context.Context, s *Session, kind models.MetricKind) ([]handlers.MetricEntryView, error) {
	return c.listMetric(ctx, s, kind, "")
}

// Recent lists entries of the last days days, oldest first.
func (c *Client) Recent(ctx context.Context, s *Session, kind models.MetricKind, days int) ([]handlers.MetricEntryView, error) {
	return c.listMetric(ctx, s, kind, "/recent?days="+strconv.Itoa(days))
}

func (c *Client) singleMetric(ctx context.Context, s *Session, kind models.MetricKind, suffix string) (*handlers.MetricEntryView, error) {
	base, err := metricPath(kind)
	if err != nil {
		return nil, err
	}
	var resp handlers.MetricEntryResponse
	env, err := c.do(ctx, s, http.MethodGet, base+suffix, nil, &resp)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, nil
	}
	return resp.Entry(), nil
}

// Latest returns nil without error when no entry exists.
func (c *Client) Latest(ctx context.Context, s *Session, kind models.MetricKind) (*handlers.MetricEntryView, error) {
	return c.singleMetric(ctx, s, kind, "/latest")
}

// OnDate returns nil without error when nothing was logged on date.
func (c *Client) OnDate(ctx context.Context, s *Session, kind models.MetricKind, date string) (*handlers.MetricEntryView, error) {
	return c.singleMetric(ctx, s, kind, "/date/"+url.PathEscape(date))
}

// Record stores value for date, replacing any earlier value for that day. The
// bool reports whether a new entry was created.
func (c *Client) Record(ctx context.Context, s *Session, kind models.MetricKind, date string, value float64) (*handlers.MetricEntryView, bool, error) {
	base, err := metricPath(kind)
	if err != nil {
		return nil, false, err
	}
	var resp handlers.MetricEntryResponse
	if _, err := c.do(ctx, s, http.MethodPost, base, handlers.UpsertMetricRequest{Value: value, Date: date}, &resp); err != nil {
		return nil, false, err
	}
	created := resp.Created != nil && *resp.Created
	return resp.Entry(), created, nil
}

func (c *Client) DeleteEntry(ctx context.Context, s *Session, kind models.MetricKind, entryID uuid.UUID) error {
	base, err := metricPath(kind)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, s, http.MethodDelete, base+"/"+entryID.String(), nil, nil)
	return err
}

func (c *Client) Foods(ctx context.Context, s *Session) ([]models.Food, error) {
	var resp handlers.FoodListResponse
	if _, err := c.do(ctx, s, http.MethodGet, "/api/users/foods", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Foods, nil
}

func (c *Client) AddFood(ctx context.Context, s *Session, name string, calories int) (*models.Food, error) {
	var resp handlers.FoodResponse
	if _, err := c.do(ctx, s, http.MethodPost, "/api/users/foods", handlers.CreateFoodRequest{Name: name, Calories: calories}, &resp); err != nil {
		return nil, err
	}
	return resp.Food, nil
}

func (c *Client) Friends(ctx context.Context, s *Session) ([]models.FriendListEntry, error) {
	var resp handlers.FriendListResponse
	if _, err := c.do(ctx, s, http.MethodGet, "/api/users/friends", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Friends, nil
}

// SendFriendRequest returns the id of the new pending friendship.
func (c *Client) SendFriendRequest(ctx context.Context, s *Session, email string) (uuid.UUID, error) {
	var resp handlers.FriendRequestResponse
	if _, err := c.do(ctx, s, http.MethodPost, "/api/users/friends", handlers.SendFriendRequest{Email: email}, &resp); err != nil {
		return uuid.Nil, err
	}
	return resp.FriendshipID, nil
}

func (c *Client) AcceptFriend(ctx context.Context, s *Session, friendshipID uuid.UUID) error {
	return c.resolveFriend(ctx, s, friendshipID, "accept")
}

func (c *Client) RejectFriend(ctx context.Context, s *Session, friendshipID uuid.UUID) error {
	return c.resolveFriend(ctx, s, friendshipID, "reject")
}

func (c *Client) resolveFriend(ctx context.Context, s *Session, friendshipID uuid.UUID, action string) error {
	path := fmt.Sprintf("/api/users/friends/%s/%s", friendshipID, action)
	_, err := c.do(ctx, s, http.MethodPost, path, nil, nil)
	return err
}
