package models

import (
	"time"

	"github.com/google/uuid"
)

// Food is a reusable calorie template owned by one user.
type Food struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	Calories  int       `json:"calories"`
	CreatedAt time.Time `json:"-"`
}
