package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"alttabwell/internal/middleware"
	"alttabwell/internal/models"
	"alttabwell/internal/store"
)

type StepStore interface {
	UpsertSteps(ctx context.Context, userID int, day time.Time, steps int) (*models.StepRecord, error)
}

type StepsHandler struct {
	records StepStore
	logger  *zap.Logger
	now     func() time.Time
}

func NewStepsHandler(records StepStore, logger *zap.Logger) *StepsHandler {
	return &StepsHandler{records: records, logger: logger, now: time.Now}
}

type stepsRequest struct {
	Date  string `json:"date"`
	Steps *int   `json:"steps"`
}

// Upsert sets the step count for the day. The new count replaces the old one.
func (h *StepsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	var req stepsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	day, err := parseDay(req.Date, h.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	steps := 0
	if req.Steps != nil {
		steps = *req.Steps
	}

	rec, err := h.records.UpsertSteps(r.Context(), userID, day, steps)
	if errors.Is(err, store.ErrInvalidSteps) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("upsert steps", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "could not save steps", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ToStepsDTO(rec, day))
}
