package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/fittrack/internal/models"
)

var (
	ErrEntryNotFound = errors.New("entry not found")
	ErrInvalidValue  = errors.New("value must be a positive number within range")
)

// UpsertResult reports the stored entry and whether the write inserted it.
type UpsertResult struct {
	Entry   *models.MetricEntry
	Created bool
}

// MetricService stores one per-day metric keyed by (user, date). Weight and
// calorie entries share this implementation; only weight keeps users.weight in
// sync with its latest entry.
type MetricService struct {
	db    DB
	kind  models.MetricKind
	table string
	now   func() time.Time
}

func NewMetricService(db DB, kind models.MetricKind) *MetricService {
	table, err := kind.Table()
	if err != nil {
		panic(err)
	}
	return &MetricService{db: db, kind: kind, table: table, now: time.Now}
}

func (s *MetricService) Kind() models.MetricKind {
	return s.kind
}

// Upsert writes value for the calendar date of date in a single statement keyed
// on (user_id, date). A second write for the same day overwrites the value and
// keeps the row id.
func (s *MetricService) Upsert(ctx context.Context, userID uuid.UUID, date time.Time, value float64) (*UpsertResult, error) {
	if !validMetricValue(s.kind, value) {
		return nil, ErrInvalidValue
	}
	day := models.Today(date)

	if !s.kind.TracksCurrent() {
		return s.upsert(ctx, s.db, userID, day, value)
	}

	var result *UpsertResult
	err := withTx(ctx, s.db, func(tx Tx) error {
		r, err := s.upsert(ctx, tx, userID, day, value)
		if err != nil {
			return err
		}
		if err := syncCurrentWeight(ctx, tx, userID, day, value); err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func validMetricValue(kind models.MetricKind, value float64) bool {
	// NaN fails both comparisons.
	return value > 0 && value < kind.MaxValue()
}

func (s *MetricService) upsert(ctx context.Context, q DBConn, userID uuid.UUID, day time.Time, value float64) (*UpsertResult, error) {
	return upsertEntry(ctx, q, s.kind, s.table, userID, day, value)
}

// upsertEntry runs the keyed upsert against q, which may be an open transaction.
func upsertEntry(ctx context.Context, q DBConn, kind models.MetricKind, table string, userID uuid.UUID, day time.Time, value float64) (*UpsertResult, error) {
	entry := &models.MetricEntry{}
	var inserted bool
	err := q.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (user_id, date, value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, date) DO UPDATE SET value = EXCLUDED.value
		 RETURNING id, user_id, date, value, (xmax = 0) AS inserted`, table),
		userID, day, value,
	).Scan(&entry.ID, &entry.UserID, &entry.Date, &entry.Value, &inserted)
	if err != nil {
		return nil, fmt.Errorf("upserting %s: %w", kind, err)
	}
	return &UpsertResult{Entry: entry, Created: inserted}, nil
}

// syncCurrentWeight copies value onto users.weight unless a later-dated weight
// entry exists, so backfilling an old day never rewinds the current weight.
func syncCurrentWeight(ctx context.Context, q DBConn, userID uuid.UUID, day time.Time, value float64) error {
	_, err := q.Exec(ctx,
		`UPDATE users SET weight = $1, updated_at = NOW()
		 WHERE id = $2
		   AND NOT EXISTS (SELECT 1 FROM weights WHERE user_id = $2 AND date > $3)`,
		value, userID, day,
	)
	if err != nil {
		return fmt.Errorf("updating current weight: %w", err)
	}
	return nil
}

// refreshCurrentWeight points users.weight at the latest remaining entry. When
// no entries remain the stored weight is left as it was.
func refreshCurrentWeight(ctx context.Context, q DBConn, userID uuid.UUID) error {
	_, err := q.Exec(ctx,
		`UPDATE users SET weight = latest.value, updated_at = NOW()
		 FROM (SELECT value FROM weights WHERE user_id = $1 ORDER BY date DESC LIMIT 1) AS latest
		 WHERE users.id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("refreshing current weight: %w", err)
	}
	return nil
}

// GetByDate returns nil, nil when nothing was logged for that day.
func (s *MetricService) GetByDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.MetricEntry, error) {
	entry := &models.MetricEntry{}
	err := s.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT id, user_id, date, value FROM %s WHERE user_id = $1 AND date = $2`, s.table),
		userID, models.Today(date),
	).Scan(&entry.ID, &entry.UserID, &entry.Date, &entry.Value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s by date: %w", s.kind, err)
	}
	return entry, nil
}

// GetLatest returns the most recent entry by date, or nil, nil when none exist.
func (s *MetricService) GetLatest(ctx context.Context, userID uuid.UUID) (*models.MetricEntry, error) {
	entry := &models.MetricEntry{}
	err := s.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT id, user_id, date, value FROM %s WHERE user_id = $1 ORDER BY date DESC LIMIT 1`, s.table),
		userID,
	).Scan(&entry.ID, &entry.UserID, &entry.Date, &entry.Value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest %s: %w", s.kind, err)
	}
	return entry, nil
}

// GetRecent returns entries dated on or after today minus windowDays, oldest first.
func (s *MetricService) GetRecent(ctx context.Context, userID uuid.UUID, windowDays int) ([]models.MetricEntry, error) {
	since := models.Today(s.now()).AddDate(0, 0, -windowDays)
	return s.InRange(ctx, userID, since, time.Time{})
}

// List returns every entry, newest first.
func (s *MetricService) List(ctx context.Context, userID uuid.UUID) ([]models.MetricEntry, error) {
	rows, err := s.db.Query(ctx,
		fmt.Sprintf(`SELECT id, user_id, date, value FROM %s WHERE user_id = $1 ORDER BY date DESC`, s.table),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.kind, err)
	}
	return scanEntries(rows)
}

// InRange returns entries with from <= date <= to, oldest first. A zero bound
// leaves that side open.
func (s *MetricService) InRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.MetricEntry, error) {
	rows, err := s.db.Query(ctx,
		fmt.Sprintf(`SELECT id, user_id, date, value FROM %s
		 WHERE user_id = $1
		   AND ($2::date IS NULL OR date >= $2::date)
		   AND ($3::date IS NULL OR date <= $3::date)
		 ORDER BY date`, s.table),
		userID, dateBound(from), dateBound(to),
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s in range: %w", s.kind, err)
	}
	return scanEntries(rows)
}

// Delete removes an entry owned by userID. Entries owned by someone else are
// reported exactly like missing ones.
func (s *MetricService) Delete(ctx context.Context, entryID, userID uuid.UUID) error {
	del := func(q DBConn) error {
		result, err := q.Exec(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, s.table),
			entryID, userID,
		)
		if err != nil {
			return fmt.Errorf("deleting %s: %w", s.kind, err)
		}
		if result.RowsAffected() == 0 {
			return ErrEntryNotFound
		}
		return nil
	}

	if !s.kind.TracksCurrent() {
		return del(s.db)
	}
	return withTx(ctx, s.db, func(tx Tx) error {
		if err := del(tx); err != nil {
			return err
		}
		return refreshCurrentWeight(ctx, tx, userID)
	})
}

func scanEntries(rows Rows) ([]models.MetricEntry, error) {
	defer rows.Close()

	entries := []models.MetricEntry{}
	for rows.Next() {
		var e models.MetricEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.Value); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}

func dateBound(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return models.Today(t)
}
