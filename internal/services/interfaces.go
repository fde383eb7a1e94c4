package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/fittrack/internal/models"
)

// Interfaces for the services consumed by handlers. Handlers depend on these so
// tests can substitute mocks.

type AuthServiceInterface interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Verify(token string) (uuid.UUID, error)
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
}

type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, params models.UpdateProfileParams) error
	UpdateGoals(ctx context.Context, userID uuid.UUID, params models.UpdateGoalsParams) error
}

type MetricServiceInterface interface {
	Kind() models.MetricKind
	Upsert(ctx context.Context, userID uuid.UUID, date time.Time, value float64) (*UpsertResult, error)
	GetByDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.MetricEntry, error)
	GetRecent(ctx context.Context, userID uuid.UUID, windowDays int) ([]models.MetricEntry, error)
	GetLatest(ctx context.Context, userID uuid.UUID) (*models.MetricEntry, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.MetricEntry, error)
	InRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.MetricEntry, error)
	Delete(ctx context.Context, entryID, userID uuid.UUID) error
}

type StatisticsServiceInterface interface {
	Summarize(ctx context.Context, userID uuid.UUID, period models.Period) (*models.Statistics, error)
	MonthlyData(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*models.MonthlyData, error)
}

type FriendServiceInterface interface {
	Request(ctx context.Context, requesterID uuid.UUID, recipientEmail string) (*models.Friendship, error)
	Accept(ctx context.Context, friendshipID, userID uuid.UUID) error
	Reject(ctx context.Context, friendshipID, userID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]models.FriendListEntry, error)
}

type FoodServiceInterface interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.Food, error)
	Create(ctx context.Context, userID uuid.UUID, name string, calories int) (*models.Food, error)
}

var (
	_ AuthServiceInterface       = (*AuthService)(nil)
	_ UserServiceInterface       = (*UserService)(nil)
	_ MetricServiceInterface     = (*MetricService)(nil)
	_ StatisticsServiceInterface = (*StatisticsService)(nil)
	_ FriendServiceInterface     = (*FriendService)(nil)
	_ FoodServiceInterface       = (*FoodService)(nil)
)
