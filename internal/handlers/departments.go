package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"alttabwell/internal/models"
	"alttabwell/internal/store"
)

type DepartmentStore interface {
	ListDepartments(ctx context.Context) ([]models.Department, error)
	DepartmentTotals(ctx context.Context, day time.Time) ([]store.DepartmentTotal, error)
}

type DepartmentHandler struct {
	departments DepartmentStore
	logger      *zap.Logger
	now         func() time.Time
}

func NewDepartmentHandler(departments DepartmentStore, logger *zap.Logger) *DepartmentHandler {
	return &DepartmentHandler{departments: departments, logger: logger, now: time.Now}
}

func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	deps, err := h.departments.ListDepartments(r.Context())
	if err != nil {
		h.logger.Error("list departments", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, deps)
}

type departmentTotalsResponse struct {
	Date        string                  `json:"date"`
	Departments []store.DepartmentTotal `json:"departments"`
}

// NutritionTotals lists every department's calorie total for the day, highest first.
func (h *DepartmentHandler) NutritionTotals(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r.URL.Query().Get("date"), h.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	totals, err := h.departments.DepartmentTotals(r.Context(), day)
	if err != nil {
		h.logger.Error("department totals", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, departmentTotalsResponse{Date: day.Format(dateLayout), Departments: totals})
}
