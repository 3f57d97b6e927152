package store

import (
	"context"
	"time"
)

const DefaultLeaderboardSize = 10

// DailyCalories sums the user's logged calories for day.
func (s *Store) DailyCalories(ctx context.Context, userID int, day time.Time) (float64, error) {
	var total float64
	err := s.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(calories), 0) FROM nutrition_records WHERE user_id=$1 AND date=$2`, userID, Day(day))
	return total, err
}

// MonthlyCalories sums the user's calories from the first of day's month through day.
func (s *Store) MonthlyCalories(ctx context.Context, userID int, day time.Time) (float64, error) {
	var total float64
	err := s.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(calories), 0) FROM nutrition_records WHERE user_id=$1 AND date >= $2 AND date <= $3`,
		userID, MonthStart(day), Day(day))
	return total, err
}

type LeaderboardEntry struct {
	UserID     int    `db:"user_id" json:"user_id"`
	Name       string `db:"name" json:"name"`
	TotalSteps int64  `db:"total_steps" json:"total_steps"`
}

// WeeklyLeaderboard ranks users by steps logged from day-7 through day. Equal totals are
// ordered by user id so the ranking is stable between calls.
func (s *Store) WeeklyLeaderboard(ctx context.Context, day time.Time, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	end := Day(day)
	start := end.AddDate(0, 0, -HistoryWindowDays)
	out := []LeaderboardEntry{}
	err := s.db.SelectContext(ctx, &out, `
		SELECT u.id AS user_id, u.name AS name, SUM(s.steps) AS total_steps
		FROM step_records s
		JOIN users u ON u.id = s.user_id
		WHERE s.date >= $1 AND s.date <= $2
		GROUP BY u.id, u.name
		ORDER BY total_steps DESC, u.id ASC
		LIMIT $3`, start, end, limit)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type DepartmentTotal struct {
	DepartmentID  int     `db:"department_id" json:"department_id"`
	Name          string  `db:"name" json:"name"`
	TotalCalories float64 `db:"total_calories" json:"total_calories"`
}

// DepartmentTotals lists every department with its calorie total for day, zero when none was logged.
func (s *Store) DepartmentTotals(ctx context.Context, day time.Time) ([]DepartmentTotal, error) {
	out := []DepartmentTotal{}
	err := s.db.SelectContext(ctx, &out, `
		SELECT d.id AS department_id, d.name AS name, COALESCE(n.total_calories, 0) AS total_calories
		FROM departments d
		LEFT JOIN department_nutrition n ON n.department_id = d.id AND n.date = $1
		ORDER BY total_calories DESC, d.id ASC`, Day(day))
	if err != nil {
		return nil, err
	}
	return out, nil
}
