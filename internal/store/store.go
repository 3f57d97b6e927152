// Package store holds the daily upsert engine and the aggregation queries over the metric tables.
//
// Every per-(owner, date) write is a single INSERT ... ON CONFLICT DO UPDATE statement backed by a
// UNIQUE constraint, so concurrent submissions converge on one row and accumulations never lose an
// update. Dates are calendar days; callers pass any time.Time and only its UTC date is used.
package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrInvalidNutritionInput = errors.New("invalid nutrition input")
	ErrInvalidSteps          = errors.New("steps must not be negative")
	ErrNotFound              = errors.New("not found")
)

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of t's month.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
