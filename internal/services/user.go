package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/fittrack/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

const userColumns = `id, name, email, password_hash, age, date_of_birth, height, weight,
	starting_weight, calorie_goal, weight_goal, created_at, updated_at`

type UserService struct {
	db DB
}

func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

func scanUser(row Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Age, &user.DateOfBirth,
		&user.Height, &user.Weight, &user.StartingWeight, &user.CalorieGoal, &user.WeightGoal,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", params.Email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking email existence: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	user, err := scanUser(s.db.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		params.Name, params.Email, params.PasswordHash,
	))
	if isUniqueViolation(err) {
		// Lost a race with a concurrent registration for the same address.
		return nil, ErrEmailAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return user, nil
}

// UpdateProfile overwrites the profile form fields. A non-nil weight becomes both
// the current weight and the statistics baseline, and is logged as the weight
// entry for params.WeightDay in the same transaction; a nil weight leaves all of
// that alone.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, params models.UpdateProfileParams) error {
	if params.Weight == nil {
		return updateProfile(ctx, s.db, userID, params)
	}
	if !validMetricValue(models.MetricWeight, *params.Weight) {
		return ErrInvalidValue
	}

	table, err := models.MetricWeight.Table()
	if err != nil {
		return err
	}
	return withTx(ctx, s.db, func(tx Tx) error {
		if err := updateProfile(ctx, tx, userID, params); err != nil {
			return err
		}
		_, err := upsertEntry(ctx, tx, models.MetricWeight, table, userID, models.Today(params.WeightDay), *params.Weight)
		return err
	})
}

func updateProfile(ctx context.Context, q DBConn, userID uuid.UUID, params models.UpdateProfileParams) error {
	result, err := q.Exec(ctx,
		`UPDATE users
		 SET age = $1,
		     date_of_birth = $2,
		     height = $3,
		     calorie_goal = $4,
		     weight = COALESCE($5, weight),
		     starting_weight = COALESCE($5, starting_weight),
		     updated_at = NOW()
		 WHERE id = $6`,
		params.Age, params.DateOfBirth, params.Height, params.CalorieGoal, params.Weight, userID,
	)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (s *UserService) UpdateGoals(ctx context.Context, userID uuid.UUID, params models.UpdateGoalsParams) error {
	result, err := s.db.Exec(ctx,
		`UPDATE users SET calorie_goal = $1, weight_goal = $2, updated_at = NOW() WHERE id = $3`,
		params.CalorieGoal, params.WeightGoal, userID,
	)
	if err != nil {
		return fmt.Errorf("updating goals: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
