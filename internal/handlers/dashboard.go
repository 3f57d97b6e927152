package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alttabwell/internal/middleware"
	"alttabwell/internal/models"
	"alttabwell/internal/services"
)

type DashboardStore interface {
	WellnessForDay(ctx context.Context, userID int, day time.Time) (*models.WellnessRecord, error)
	StepsForDay(ctx context.Context, userID int, day time.Time) (*models.StepRecord, error)
	NutritionForDay(ctx context.Context, userID int, day time.Time) ([]models.NutritionEntry, error)
	DailyCalories(ctx context.Context, userID int, day time.Time) (float64, error)
	MonthlyCalories(ctx context.Context, userID int, day time.Time) (float64, error)
}

type DashboardHandler struct {
	db     DashboardStore
	encSvc *services.EncryptionService
	logger *zap.Logger
	now    func() time.Time
}

func NewDashboardHandler(db DashboardStore, encSvc *services.EncryptionService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{db: db, encSvc: encSvc, logger: logger, now: time.Now}
}

type dashboardResponse struct {
	ReferenceDate   string         `json:"reference_date"`
	Wellness        *WellnessDTO   `json:"wellness"`
	Steps           StepsDTO       `json:"steps"`
	Nutrition       []NutritionDTO `json:"nutrition"`
	DailyCalories   float64        `json:"daily_calories"`
	MonthlyCalories float64        `json:"monthly_calories"`
}

// Get returns the day's wellness, steps and food together with calorie totals.
// Accepts optional query param: date=YYYY-MM-DD.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	day, err := parseDay(r.URL.Query().Get("date"), h.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var (
		wellness *models.WellnessRecord
		steps    *models.StepRecord
		entries  []models.NutritionEntry
		resp     = dashboardResponse{ReferenceDate: day.Format(dateLayout)}
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		wellness, err = h.db.WellnessForDay(ctx, userID, day)
		return err
	})
	g.Go(func() (err error) {
		steps, err = h.db.StepsForDay(ctx, userID, day)
		return err
	})
	g.Go(func() (err error) {
		entries, err = h.db.NutritionForDay(ctx, userID, day)
		return err
	})
	g.Go(func() (err error) {
		resp.DailyCalories, err = h.db.DailyCalories(ctx, userID, day)
		return err
	})
	g.Go(func() (err error) {
		resp.MonthlyCalories, err = h.db.MonthlyCalories(ctx, userID, day)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("load dashboard", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "could not load dashboard", http.StatusInternalServerError)
		return
	}

	if wellness != nil {
		if err := h.encSvc.DecryptWellness(wellness); err != nil {
			h.logger.Error("decrypt wellness notes", zap.Int("user_id", userID), zap.Error(err))
			http.Error(w, "could not decrypt notes", http.StatusInternalServerError)
			return
		}
		dto := ToWellnessDTO(*wellness)
		resp.Wellness = &dto
	}
	resp.Steps = ToStepsDTO(steps, day)
	resp.Nutrition = toNutritionDTOs(entries)

	writeJSON(w, http.StatusOK, resp)
}
