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
	ErrCannotFriendSelf      = errors.New("cannot send friend request to yourself")
	ErrFriendshipExists      = errors.New("friendship already exists or is pending")
	ErrFriendRequestNotFound = errors.New("friend request not found")
)

type FriendService struct {
	db DB
}

func NewFriendService(db DB) *FriendService {
	return &FriendService{db: db}
}

// Request creates a pending friendship from requesterID to the user registered
// under recipientEmail. Any existing row between the two users, in either
// direction and in any state, blocks the request.
func (s *FriendService) Request(ctx context.Context, requesterID uuid.UUID, recipientEmail string) (*models.Friendship, error) {
	var recipientID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, normalizeEmail(recipientEmail)).Scan(&recipientID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolving recipient: %w", err)
	}

	if recipientID == requesterID {
		return nil, ErrCannotFriendSelf
	}

	friendship := &models.Friendship{}
	err = withTx(ctx, s.db, func(tx Tx) error {
		if err := lockUserPairForUpdate(ctx, tx, requesterID, recipientID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}

		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS(
				SELECT 1 FROM friendships
				WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
			)`,
			requesterID, recipientID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking existing friendship: %w", err)
		}
		if exists {
			return ErrFriendshipExists
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO friendships (user_id, friend_id, status)
			 VALUES ($1, $2, $3)
			 RETURNING id, user_id, friend_id, status, created_at`,
			requesterID, recipientID, models.FriendshipStatusPending,
		).Scan(&friendship.ID, &friendship.UserID, &friendship.FriendID, &friendship.Status, &friendship.CreatedAt)
		if isUniqueViolation(err) {
			return ErrFriendshipExists
		}
		if err != nil {
			return fmt.Errorf("creating friend request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return friendship, nil
}

// Accept moves a pending request addressed to userID to accepted. A missing id,
// a request addressed to someone else and an already-resolved request all
// report ErrFriendRequestNotFound.
func (s *FriendService) Accept(ctx context.Context, friendshipID, userID uuid.UUID) error {
	result, err := s.db.Exec(ctx,
		`UPDATE friendships SET status = $1
		 WHERE id = $2 AND friend_id = $3 AND status = $4`,
		models.FriendshipStatusAccepted, friendshipID, userID, models.FriendshipStatusPending,
	)
	if err != nil {
		return fmt.Errorf("accepting friend request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrFriendRequestNotFound
	}

	return nil
}

// Reject deletes a pending request addressed to userID, freeing the pair for a
// later request. Preconditions match Accept.
func (s *FriendService) Reject(ctx context.Context, friendshipID, userID uuid.UUID) error {
	result, err := s.db.Exec(ctx,
		`DELETE FROM friendships WHERE id = $1 AND friend_id = $2 AND status = $3`,
		friendshipID, userID, models.FriendshipStatusPending,
	)
	if err != nil {
		return fmt.Errorf("rejecting friend request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrFriendRequestNotFound
	}

	return nil
}

// List returns every friendship touching userID with the other party's name and
// current weight, and the status as userID sees it.
func (s *FriendService) List(ctx context.Context, userID uuid.UUID) ([]models.FriendListEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT f.id, f.user_id, f.status, u.name, u.weight
		 FROM friendships f
		 JOIN users u ON u.id = CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
		 WHERE f.user_id = $1 OR f.friend_id = $1
		 ORDER BY f.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}
	defer rows.Close()

	friends := []models.FriendListEntry{}
	for rows.Next() {
		var (
			entry     models.FriendListEntry
			requester uuid.UUID
			status    models.FriendshipStatus
		)
		if err := rows.Scan(&entry.ID, &requester, &status, &entry.Name, &entry.CurrentWeight); err != nil {
			return nil, fmt.Errorf("scanning friend: %w", err)
		}
		entry.Status = models.ResolveViewerStatus(status, requester, userID)
		friends = append(friends, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating friends: %w", err)
	}
	return friends, nil
}
