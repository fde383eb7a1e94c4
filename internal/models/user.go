package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	Age            *int       `json:"age"`
	DateOfBirth    *time.Time `json:"-"`
	Height         *float64   `json:"height"`
	Weight         *float64   `json:"weight"`
	StartingWeight *float64   `json:"startingWeight"`
	CalorieGoal    *int       `json:"calorieGoal"`
	WeightGoal     *float64   `json:"weightGoal"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
}

// UpdateProfileParams mirrors the profile form. Weight is both the new current
// weight and the baseline used for statistics, and is also logged as the weight
// entry for WeightDay.
type UpdateProfileParams struct {
	Age         *int
	DateOfBirth *time.Time
	Weight      *float64
	WeightDay   time.Time
	Height      *float64
	CalorieGoal *int
}

type UpdateGoalsParams struct {
	CalorieGoal *int
	WeightGoal  *float64
}
