package models

import "time"

type Department struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type User struct {
	ID             int       `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	Name           string    `db:"name" json:"name"`
	GoogleID       *string   `db:"google_id" json:"-"`
	ProfilePicture *string   `db:"profile_picture" json:"profile_picture,omitempty"`
	DepartmentID   *int      `db:"department_id" json:"department_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	LastLogin      time.Time `db:"last_login" json:"last_login"`
}

type WellnessRecord struct {
	ID          int       `db:"id" json:"id"`
	UserID      int       `db:"user_id" json:"user_id"`
	Date        time.Time `db:"date" json:"date"`
	MoodScore   *int      `db:"mood_score" json:"mood_score"`
	SleepHours  *float64  `db:"sleep_hours" json:"sleep_hours"`
	WaterIntake *float64  `db:"water_intake" json:"water_intake"`
	StressLevel *int      `db:"stress_level" json:"stress_level"`
	Notes       *string   `db:"notes" json:"notes"` // Encrypted in DB
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

const DefaultStepGoal = 10000

type StepRecord struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Date      time.Time `db:"date" json:"date"`
	Steps     int       `db:"steps" json:"steps"`
	Goal      int       `db:"goal" json:"goal"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Meal types accepted on nutrition entries.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

func IsMealType(s string) bool {
	switch s {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

type NutritionEntry struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Date      time.Time `db:"date" json:"date"`
	FoodName  string    `db:"food_name" json:"food_name"`
	Calories  float64   `db:"calories" json:"calories"`
	Protein   *float64  `db:"protein" json:"protein,omitempty"`
	Carbs     *float64  `db:"carbs" json:"carbs,omitempty"`
	Fat       *float64  `db:"fat" json:"fat,omitempty"`
	Fiber     *float64  `db:"fiber" json:"fiber,omitempty"`
	MealType  string    `db:"meal_type" json:"meal_type"`
	ImagePath *string   `db:"image_path" json:"image_path,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type DepartmentNutrition struct {
	ID            int       `db:"id" json:"id"`
	DepartmentID  int       `db:"department_id" json:"department_id"`
	Date          time.Time `db:"date" json:"date"`
	TotalCalories float64   `db:"total_calories" json:"total_calories"`
}
