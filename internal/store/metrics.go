package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"alttabwell/internal/models"
)

// HistoryWindowDays is how far back the weekly queries look, inclusive of both ends.
const HistoryWindowDays = 7

const wellnessColumns = `id, user_id, date, mood_score, sleep_hours, water_intake, stress_level, notes, created_at, updated_at`
const stepColumns = `id, user_id, date, steps, goal, created_at, updated_at`

// UpsertSteps stores the step count for (userID, day), replacing any earlier value.
func (s *Store) UpsertSteps(ctx context.Context, userID int, day time.Time, steps int) (*models.StepRecord, error) {
	if steps < 0 {
		return nil, ErrInvalidSteps
	}
	var rec models.StepRecord
	err := s.db.QueryRowxContext(ctx, `INSERT INTO step_records (user_id, date, steps, updated_at)
	                      VALUES ($1, $2, $3, NOW())
	                      ON CONFLICT (user_id, date)
	                      DO UPDATE SET
	                        steps = EXCLUDED.steps,
	                        updated_at = NOW()
	                      RETURNING `+stepColumns, userID, Day(day), steps).StructScan(&rec)
	if err != nil {
		return nil, fmt.Errorf("upsert steps: %w", err)
	}
	return &rec, nil
}

// UpsertWellness applies patch to the (userID, day) record, creating it if needed.
// Fields not supplied in patch keep their stored value; fields supplied as null are cleared.
// Notes must already be encrypted.
func (s *Store) UpsertWellness(ctx context.Context, userID int, day time.Time, patch WellnessPatch) (*models.WellnessRecord, error) {
	var rec models.WellnessRecord
	err := s.db.QueryRowxContext(ctx, `INSERT INTO wellness_records (user_id, date, mood_score, sleep_hours, water_intake, stress_level, notes, updated_at)
	                      VALUES ($1, $2, $4, $6, $8, $10, $12, NOW())
	                      ON CONFLICT (user_id, date)
	                      DO UPDATE SET
	                        mood_score = CASE WHEN $3 THEN EXCLUDED.mood_score ELSE wellness_records.mood_score END,
	                        sleep_hours = CASE WHEN $5 THEN EXCLUDED.sleep_hours ELSE wellness_records.sleep_hours END,
	                        water_intake = CASE WHEN $7 THEN EXCLUDED.water_intake ELSE wellness_records.water_intake END,
	                        stress_level = CASE WHEN $9 THEN EXCLUDED.stress_level ELSE wellness_records.stress_level END,
	                        notes = CASE WHEN $11 THEN EXCLUDED.notes ELSE wellness_records.notes END,
	                        updated_at = NOW()
	                      RETURNING `+wellnessColumns,
		userID, Day(day),
		patch.MoodScore.Set, patch.MoodScore.arg(),
		patch.SleepHours.Set, patch.SleepHours.arg(),
		patch.WaterIntake.Set, patch.WaterIntake.arg(),
		patch.StressLevel.Set, patch.StressLevel.arg(),
		patch.Notes.Set, patch.Notes.arg(),
	).StructScan(&rec)
	if err != nil {
		return nil, fmt.Errorf("upsert wellness: %w", err)
	}
	return &rec, nil
}

// WellnessForDay returns nil without error when nothing was logged.
func (s *Store) WellnessForDay(ctx context.Context, userID int, day time.Time) (*models.WellnessRecord, error) {
	var rec models.WellnessRecord
	err := s.db.GetContext(ctx, &rec, `SELECT `+wellnessColumns+` FROM wellness_records WHERE user_id=$1 AND date=$2`, userID, Day(day))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// StepsForDay returns nil without error when nothing was logged.
func (s *Store) StepsForDay(ctx context.Context, userID int, day time.Time) (*models.StepRecord, error) {
	var rec models.StepRecord
	err := s.db.GetContext(ctx, &rec, `SELECT `+stepColumns+` FROM step_records WHERE user_id=$1 AND date=$2`, userID, Day(day))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// WeeklyWellness lists the user's records from day-7 through day, most recent first.
func (s *Store) WeeklyWellness(ctx context.Context, userID int, day time.Time) ([]models.WellnessRecord, error) {
	end := Day(day)
	start := end.AddDate(0, 0, -HistoryWindowDays)
	out := []models.WellnessRecord{}
	err := s.db.SelectContext(ctx, &out, `SELECT `+wellnessColumns+` FROM wellness_records
		WHERE user_id=$1 AND date >= $2 AND date <= $3
		ORDER BY date DESC`, userID, start, end)
	if err != nil {
		return nil, err
	}
	return out, nil
}
