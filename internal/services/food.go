package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/fittrack/internal/models"
)

var ErrInvalidFood = errors.New("food needs a name and positive calories")

type FoodService struct {
	db DBConn
}

func NewFoodService(db DBConn) *FoodService {
	return &FoodService{db: db}
}

func (s *FoodService) List(ctx context.Context, userID uuid.UUID) ([]models.Food, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, name, calories, created_at FROM foods WHERE user_id = $1 ORDER BY name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing foods: %w", err)
	}
	defer rows.Close()

	foods := []models.Food{}
	for rows.Next() {
		var f models.Food
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Calories, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning food: %w", err)
		}
		foods = append(foods, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating foods: %w", err)
	}
	return foods, nil
}

func (s *FoodService) Create(ctx context.Context, userID uuid.UUID, name string, calories int) (*models.Food, error) {
	if name == "" || calories <= 0 || calories >= models.MaxCalories {
		return nil, ErrInvalidFood
	}

	food := &models.Food{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO foods (user_id, name, calories)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, name, calories, created_at`,
		userID, name, calories,
	).Scan(&food.ID, &food.UserID, &food.Name, &food.Calories, &food.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating food: %w", err)
	}
	return food, nil
}
