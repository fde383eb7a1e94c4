package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/fittrack/internal/models"
	"github.com/HammerMeetNail/fittrack/internal/services"
)

// Each mock embeds its interface so unexercised methods panic instead of
// silently returning zero values.

type mockAuthService struct {
	services.AuthServiceInterface
	registerFunc func(ctx context.Context, name, email, password string) (*services.AuthResult, error)
	loginFunc    func(ctx context.Context, email, password string) (*services.AuthResult, error)
}

func (m *mockAuthService) Register(ctx context.Context, name, email, password string) (*services.AuthResult, error) {
	return m.registerFunc(ctx, name, email, password)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	return m.loginFunc(ctx, email, password)
}

type mockUserService struct {
	services.UserServiceInterface
	getByIDFunc       func(ctx context.Context, id uuid.UUID) (*models.User, error)
	updateProfileFunc func(ctx context.Context, userID uuid.UUID, params models.UpdateProfileParams) error
	updateGoalsFunc   func(ctx context.Context, userID uuid.UUID, params models.UpdateGoalsParams) error
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID uuid.UUID, params models.UpdateProfileParams) error {
	return m.updateProfileFunc(ctx, userID, params)
}

func (m *mockUserService) UpdateGoals(ctx context.Context, userID uuid.UUID, params models.UpdateGoalsParams) error {
	return m.updateGoalsFunc(ctx, userID, params)
}

type mockMetricService struct {
	services.MetricServiceInterface
	kind          models.MetricKind
	upsertFunc    func(ctx context.Context, userID uuid.UUID, date time.Time, value float64) (*services.UpsertResult, error)
	getByDateFunc func(ctx context.Context, userID uuid.UUID, date time.Time) (*models.MetricEntry, error)
	getRecentFunc func(ctx context.Context, userID uuid.UUID, days int) ([]models.MetricEntry, error)
	getLatestFunc func(ctx context.Context, userID uuid.UUID) (*models.MetricEntry, error)
	listFunc      func(ctx context.Context, userID uuid.UUID) ([]models.MetricEntry, error)
	deleteFunc    func(ctx context.Context, entryID, userID uuid.UUID) error
}

func (m *mockMetricService) Kind() models.MetricKind { return m.kind }

func (m *mockMetricService) Upsert(ctx context.Context, userID uuid.UUID, date time.Time, value float64) (*services.UpsertResult, error) {
	return m.upsertFunc(ctx, userID, date, value)
}

func (m *mockMetricService) GetByDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.MetricEntry, error) {
	return m.getByDateFunc(ctx, userID, date)
}

func (m *mockMetricService) GetRecent(ctx context.Context, userID uuid.UUID, days int) ([]models.MetricEntry, error) {
	return m.getRecentFunc(ctx, userID, days)
}

func (m *mockMetricService) GetLatest(ctx context.Context, userID uuid.UUID) (*models.MetricEntry, error) {
	return m.getLatestFunc(ctx, userID)
}

func (m *mockMetricService) List(ctx context.Context, userID uuid.UUID) ([]models.MetricEntry, error) {
	return m.listFunc(ctx, userID)
}

func (m *mockMetricService) Delete(ctx context.Context, entryID, userID uuid.UUID) error {
	return m.deleteFunc(ctx, entryID, userID)
}

type mockStatisticsService struct {
	summarizeFunc   func(ctx context.Context, userID uuid.UUID, period models.Period) (*models.Statistics, error)
	monthlyDataFunc func(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*models.MonthlyData, error)
}

func (m *mockStatisticsService) Summarize(ctx context.Context, userID uuid.UUID, period models.Period) (*models.Statistics, error) {
	return m.summarizeFunc(ctx, userID, period)
}

func (m *mockStatisticsService) MonthlyData(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*models.MonthlyData, error) {
	return m.monthlyDataFunc(ctx, userID, year, month)
}

type mockFriendService struct {
	requestFunc func(ctx context.Context, requesterID uuid.UUID, email string) (*models.Friendship, error)
	acceptFunc  func(ctx context.Context, friendshipID, userID uuid.UUID) error
	rejectFunc  func(ctx context.Context, friendshipID, userID uuid.UUID) error
	listFunc    func(ctx context.Context, userID uuid.UUID) ([]models.FriendListEntry, error)
}

func (m *mockFriendService) Request(ctx context.Context, requesterID uuid.UUID, email string) (*models.Friendship, error) {
	return m.requestFunc(ctx, requesterID, email)
}

func (m *mockFriendService) Accept(ctx context.Context, friendshipID, userID uuid.UUID) error {
	return m.acceptFunc(ctx, friendshipID, userID)
}

func (m *mockFriendService) Reject(ctx context.Context, friendshipID, userID uuid.UUID) error {
	return m.rejectFunc(ctx, friendshipID, userID)
}

func (m *mockFriendService) List(ctx context.Context, userID uuid.UUID) ([]models.FriendListEntry, error) {
	return m.listFunc(ctx, userID)
}

type mockFoodService struct {
	listFunc   func(ctx context.Context, userID uuid.UUID) ([]models.Food, error)
	createFunc func(ctx context.Context, userID uuid.UUID, name string, calories int) (*models.Food, error)
}

func (m *mockFoodService) List(ctx context.Context, userID uuid.UUID) ([]models.Food, error) {
	return m.listFunc(ctx, userID)
}

func (m *mockFoodService) Create(ctx context.Context, userID uuid.UUID, name string, calories int) (*models.Food, error) {
	return m.createFunc(ctx, userID, name, calories)
}

// authed attaches userID to req the way the auth middleware does.
func authed(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(SetUserIDInContext(req.Context(), userID))
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
