package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"alttabwell/internal/middleware"
	"alttabwell/internal/models"
	"alttabwell/internal/services"
	"alttabwell/internal/store"
)

type WellnessStore interface {
	UpsertWellness(ctx context.Context, userID int, day time.Time, patch store.WellnessPatch) (*models.WellnessRecord, error)
	WeeklyWellness(ctx context.Context, userID int, day time.Time) ([]models.WellnessRecord, error)
}

type WellnessHandler struct {
	records WellnessStore
	encSvc  *services.EncryptionService
	logger  *zap.Logger
	now     func() time.Time
}

func NewWellnessHandler(records WellnessStore, encSvc *services.EncryptionService, logger *zap.Logger) *WellnessHandler {
	return &WellnessHandler{records: records, encSvc: encSvc, logger: logger, now: time.Now}
}

type wellnessRequest struct {
	Date string `json:"date"` // YYYY-MM-DD, defaults to today
	store.WellnessPatch
}

// Upsert creates or patches the wellness record for the user and date. Fields left out of the body
// keep their stored value; fields sent as null are cleared.
func (h *WellnessHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	var req wellnessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Empty() {
		http.Error(w, "no wellness fields supplied", http.StatusBadRequest)
		return
	}
	day, err := parseDay(req.Date, h.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	patch := req.WellnessPatch
	if patch.Notes.Set && patch.Notes.Value != nil {
		enc, err := h.encSvc.EncryptNotes(patch.Notes.Value)
		if err != nil {
			h.logger.Error("encrypt wellness notes", zap.Error(err))
			http.Error(w, "could not encrypt notes", http.StatusInternalServerError)
			return
		}
		patch.Notes = store.Some(*enc)
	}

	rec, err := h.records.UpsertWellness(r.Context(), userID, day, patch)
	if err != nil {
		h.logger.Error("upsert wellness", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}
	if err := h.encSvc.DecryptWellness(rec); err != nil {
		h.logger.Error("decrypt wellness notes", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "could not decrypt notes", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ToWellnessDTO(*rec))
}

// History returns the records from date-7 through date, newest first.
func (h *WellnessHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	day, err := parseDay(r.URL.Query().Get("date"), h.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	recs, err := h.records.WeeklyWellness(r.Context(), userID, day)
	if err != nil {
		h.logger.Error("weekly wellness", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "could not fetch history", http.StatusInternalServerError)
		return
	}
	out := make([]WellnessDTO, 0, len(recs))
	for i := range recs {
		if err := h.encSvc.DecryptWellness(&recs[i]); err != nil {
			h.logger.Error("decrypt wellness notes", zap.Int("user_id", userID), zap.Error(err))
			http.Error(w, "could not decrypt notes", http.StatusInternalServerError)
			return
		}
		out = append(out, ToWellnessDTO(recs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}
