package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// lockUserPairForUpdate row-locks both users in byte order of their ids so two
// transactions touching the same pair from opposite sides cannot deadlock.
func lockUserPairForUpdate(ctx context.Context, q DBConn, userA, userB uuid.UUID) error {
	first, second := userA, userB
	if bytes.Compare(first[:], second[:]) > 0 {
		first, second = second, first
	}

	if err := lockUserForUpdate(ctx, q, first); err != nil {
		return err
	}
	if first == second {
		return nil
	}
	return lockUserForUpdate(ctx, q, second)
}

func lockUserForUpdate(ctx context.Context, q DBConn, userID uuid.UUID) error {
	var lockedID uuid.UUID
	err := q.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&lockedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if err != nil {
		return fmt.Errorf("locking user: %w", err)
	}
	return nil
}
