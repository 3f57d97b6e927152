package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"alttabwell/internal/models"
	"alttabwell/internal/store"
)

const dateLayout = "2006-01-02"

var (
	errBadDate    = errors.New("invalid date format; expected YYYY-MM-DD")
	errFutureDate = errors.New("date must not be in the future")
)

// parseDay resolves an optional YYYY-MM-DD value against now. Empty means today (UTC).
func parseDay(raw string, now time.Time) (time.Time, error) {
	today := store.Day(now)
	if raw == "" {
		return today, nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, errBadDate
	}
	if d.After(today) {
		return time.Time{}, errFutureDate
	}
	return d, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type UserDTO struct {
	ID              int     `json:"id"`
	Email           string  `json:"email"`
	Name            string  `json:"name"`
	ProfilePicture  *string `json:"profile_picture,omitempty"`
	DepartmentID    *int    `json:"department_id,omitempty"`
	NeedsDepartment bool    `json:"needs_department"`
	CreatedAt       string  `json:"created_at"`
	LastLogin       string  `json:"last_login"`
}

func ToUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		ProfilePicture:  u.ProfilePicture,
		DepartmentID:    u.DepartmentID,
		NeedsDepartment: u.DepartmentID == nil,
		CreatedAt:       u.CreatedAt.Format(time.RFC3339),
		LastLogin:       u.LastLogin.Format(time.RFC3339),
	}
}

type WellnessDTO struct {
	Date        string   `json:"date"`
	MoodScore   *int     `json:"mood_score"`
	SleepHours  *float64 `json:"sleep_hours"`
	WaterIntake *float64 `json:"water_intake"`
	StressLevel *int     `json:"stress_level"`
	Notes       *string  `json:"notes"`
	UpdatedAt   string   `json:"updated_at"`
}

func ToWellnessDTO(r models.WellnessRecord) WellnessDTO {
	return WellnessDTO{
		Date:        r.Date.Format(dateLayout),
		MoodScore:   r.MoodScore,
		SleepHours:  r.SleepHours,
		WaterIntake: r.WaterIntake,
		StressLevel: r.StressLevel,
		Notes:       r.Notes,
		UpdatedAt:   r.UpdatedAt.Format(time.RFC3339),
	}
}

type StepsDTO struct {
	Date          string  `json:"date"`
	Steps         int     `json:"steps"`
	Goal          int     `json:"goal"`
	PercentOfGoal float64 `json:"percent_of_goal"`
}

// ToStepsDTO renders a missing record as zero steps against the default goal.
func ToStepsDTO(r *models.StepRecord, day time.Time) StepsDTO {
	if r == nil {
		return StepsDTO{Date: day.Format(dateLayout), Goal: models.DefaultStepGoal}
	}
	dto := StepsDTO{Date: r.Date.Format(dateLayout), Steps: r.Steps, Goal: r.Goal}
	if r.Goal > 0 {
		dto.PercentOfGoal = float64(r.Steps) * 100 / float64(r.Goal)
	}
	return dto
}

type NutritionDTO struct {
	ID        int      `json:"id"`
	Date      string   `json:"date"`
	FoodName  string   `json:"food_name"`
	Calories  float64  `json:"calories"`
	Protein   *float64 `json:"protein,omitempty"`
	Carbs     *float64 `json:"carbs,omitempty"`
	Fat       *float64 `json:"fat,omitempty"`
	Fiber     *float64 `json:"fiber,omitempty"`
	MealType  string   `json:"meal_type"`
	HasImage  bool     `json:"has_image"`
	CreatedAt string   `json:"created_at"`
}

func ToNutritionDTO(e models.NutritionEntry) NutritionDTO {
	return NutritionDTO{
		ID:        e.ID,
		Date:      e.Date.Format(dateLayout),
		FoodName:  e.FoodName,
		Calories:  e.Calories,
		Protein:   e.Protein,
		Carbs:     e.Carbs,
		Fat:       e.Fat,
		Fiber:     e.Fiber,
		MealType:  e.MealType,
		HasImage:  e.ImagePath != nil,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

func toNutritionDTOs(entries []models.NutritionEntry) []NutritionDTO {
	out := make([]NutritionDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToNutritionDTO(e))
	}
	return out
}
