package store

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"alttabwell/internal/models"
)

type NutritionInput struct {
	UserID       int
	DepartmentID int
	Date         time.Time
	FoodName     string
	Calories     float64
	Protein      *float64
	Carbs        *float64
	Fat          *float64
	Fiber        *float64
	MealType     string
	ImagePath    *string
}

// Validate normalises the input in place. Errors wrap ErrInvalidNutritionInput.
func (in *NutritionInput) Validate() error {
	in.FoodName = strings.TrimSpace(in.FoodName)
	if in.FoodName == "" {
		return fmt.Errorf("%w: food name is required", ErrInvalidNutritionInput)
	}
	if math.IsNaN(in.Calories) || math.IsInf(in.Calories, 0) || in.Calories <= 0 {
		return fmt.Errorf("%w: calories must be positive", ErrInvalidNutritionInput)
	}
	for name, v := range map[string]*float64{"protein": in.Protein, "carbs": in.Carbs, "fat": in.Fat, "fiber": in.Fiber} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0) {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidNutritionInput, name)
		}
	}
	in.MealType = strings.ToLower(strings.TrimSpace(in.MealType))
	if in.MealType == "" {
		in.MealType = models.MealSnack
	}
	if !models.IsMealType(in.MealType) {
		return fmt.Errorf("%w: unknown meal type %q", ErrInvalidNutritionInput, in.MealType)
	}
	return nil
}

const nutritionColumns = `id, user_id, date, food_name, calories, protein, carbs, fat, fiber, meal_type, image_path, created_at`

// RecordNutritionEntry inserts the entry and adds its calories to the department's total for the
// same day. Both writes commit together or not at all.
func (s *Store) RecordNutritionEntry(ctx context.Context, in NutritionInput) (*models.NutritionEntry, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	day := Day(in.Date)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var entry models.NutritionEntry
	err = tx.QueryRowxContext(ctx, `INSERT INTO nutrition_records (user_id, date, food_name, calories, protein, carbs, fat, fiber, meal_type, image_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+nutritionColumns,
		in.UserID, day, in.FoodName, in.Calories, in.Protein, in.Carbs, in.Fat, in.Fiber, in.MealType, in.ImagePath).StructScan(&entry)
	if err != nil {
		return nil, fmt.Errorf("insert nutrition entry: %w", err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO department_nutrition (department_id, date, total_calories)
		VALUES ($1, $2, $3)
		ON CONFLICT (department_id, date)
		DO UPDATE SET total_calories = department_nutrition.total_calories + EXCLUDED.total_calories`,
		in.DepartmentID, day, in.Calories)
	if err != nil {
		return nil, fmt.Errorf("accumulate department nutrition: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &entry, nil
}

func (s *Store) NutritionForDay(ctx context.Context, userID int, day time.Time) ([]models.NutritionEntry, error) {
	out := []models.NutritionEntry{}
	err := s.db.SelectContext(ctx, &out, `SELECT `+nutritionColumns+` FROM nutrition_records
		WHERE user_id=$1 AND date=$2 ORDER BY created_at, id`, userID, Day(day))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DepartmentNutritionForDay(ctx context.Context, departmentID int, day time.Time) (float64, error) {
	var total float64
	err := s.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(total_calories), 0) FROM department_nutrition WHERE department_id=$1 AND date=$2`, departmentID, Day(day))
	return total, err
}
