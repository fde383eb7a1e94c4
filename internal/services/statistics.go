package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/fittrack/internal/models"
)

var ErrInvalidMonth = errors.New("month must be between 1 and 12")

type userGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type metricReader interface {
	InRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.MetricEntry, error)
	GetLatest(ctx context.Context, userID uuid.UUID) (*models.MetricEntry, error)
}

type StatisticsService struct {
	users    userGetter
	weights  metricReader
	calories metricReader
	now      func() time.Time
}

func NewStatisticsService(users userGetter, weights, calories metricReader) *StatisticsService {
	return &StatisticsService{users: users, weights: weights, calories: calories, now: time.Now}
}

// Summarize reads the user's goals, baseline and entries inside period and
// hands them to Aggregate.
func (s *StatisticsService) Summarize(ctx context.Context, userID uuid.UUID, period models.Period) (*models.Statistics, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	since := period.Since(models.Today(s.now()))

	weights, err := s.weights.InRange(ctx, userID, since, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("loading weights: %w", err)
	}
	calories, err := s.calories.InRange(ctx, userID, since, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("loading calories: %w", err)
	}
	latest, err := s.weights.GetLatest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading latest weight: %w", err)
	}

	stats := Aggregate(user, period, weights, calories, latest)
	return &stats, nil
}

// Aggregate derives the summary figures without touching storage. The starting
// weight is the profile baseline (falling back to the stored current weight);
// the current weight is the latest entry overall, falling back to the baseline.
// AverageCalories is the unrounded mean and is 0 when there are no entries.
func Aggregate(user *models.User, period models.Period, weights, calories []models.MetricEntry, latest *models.MetricEntry) models.Statistics {
	stats := models.Statistics{
		Period:      period,
		CalorieGoal: user.CalorieGoal,
		WeightGoal:  user.WeightGoal,
		Weights:     toPoints(weights),
		Calories:    toPoints(calories),
	}

	stats.StartingWeight = user.StartingWeight
	if stats.StartingWeight == nil {
		stats.StartingWeight = user.Weight
	}

	stats.CurrentWeight = stats.StartingWeight
	if latest != nil {
		v := latest.Value
		stats.CurrentWeight = &v
	}

	if stats.StartingWeight != nil && stats.CurrentWeight != nil {
		delta := *stats.CurrentWeight - *stats.StartingWeight
		stats.WeightDelta = &delta
	}

	if len(calories) > 0 {
		var total float64
		for _, c := range calories {
			total += c.Value
		}
		stats.AverageCalories = total / float64(len(calories))
	}

	return stats
}

// MonthlyData keys both metrics by day for every date in the given month.
func (s *StatisticsService) MonthlyData(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*models.MonthlyData, error) {
	if month < time.January || month > time.December {
		return nil, ErrInvalidMonth
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	weights, err := s.weights.InRange(ctx, userID, first, last)
	if err != nil {
		return nil, fmt.Errorf("loading weights: %w", err)
	}
	calories, err := s.calories.InRange(ctx, userID, first, last)
	if err != nil {
		return nil, fmt.Errorf("loading calories: %w", err)
	}

	return &models.MonthlyData{
		Weights:  byDay(weights),
		Calories: byDay(calories),
	}, nil
}

func toPoints(entries []models.MetricEntry) []models.MetricPoint {
	points := make([]models.MetricPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, models.MetricPoint{Date: e.Date, Value: e.Value})
	}
	return points
}

func byDay(entries []models.MetricEntry) map[string]float64 {
	out := make(map[string]float64, len(entries))
	for _, e := range entries {
		out[e.Day()] = e.Value
	}
	return out
}
