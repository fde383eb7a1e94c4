package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// MetricKind selects which per-day metric table an operation targets.
type MetricKind string

const (
	MetricWeight  MetricKind = "weight"
	MetricCalorie MetricKind = "calorie"
)

// Table returns the backing table name. Only the two known kinds map to a table,
// so the result is safe to interpolate into SQL.
func (k MetricKind) Table() (string, error) {
	switch k {
	case MetricWeight:
		return "weights", nil
	case MetricCalorie:
		return "calories", nil
	default:
		return "", fmt.Errorf("unknown metric kind %q", k)
	}
}

// MaxValue is the exclusive upper bound the backing NUMERIC column can hold.
func (k MetricKind) MaxValue() float64 {
	if k == MetricCalorie {
		return MaxCalories
	}
	return MaxWeight
}

// TracksCurrent reports whether writes to this metric keep users.weight in sync.
func (k MetricKind) TracksCurrent() bool {
	return k == MetricWeight
}

// Exclusive upper bounds of the stored columns. Weights and heights are
// NUMERIC(6,2) and NUMERIC(5,2); calories are NUMERIC(8,2).
const (
	MaxWeight   = 10000
	MaxHeight   = 1000
	MaxCalories = 1000000
)

type MetricEntry struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"-"`
	Date   time.Time `json:"-"`
	Value  float64   `json:"value"`
}

// Day returns the entry's calendar date in DateLayout.
func (e MetricEntry) Day() string {
	return e.Date.Format(DateLayout)
}

// ParseDay parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// Today truncates now to its calendar date in UTC.
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
