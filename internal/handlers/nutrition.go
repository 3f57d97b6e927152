package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alttabwell/internal/estimator"
	"alttabwell/internal/middleware"
	"alttabwell/internal/models"
	"alttabwell/internal/storage"
	"alttabwell/internal/store"
)

const (
	maxUploadBytes     = 10 << 20
	defaultUploadName  = "Food from image"
	uploadFormField    = "food_image"
	uploadMealFormName = "meal_type"
)

type NutritionStore interface {
	RecordNutritionEntry(ctx context.Context, in store.NutritionInput) (*models.NutritionEntry, error)
}

type CalorieEstimator interface {
	EstimateText(ctx context.Context, food string) (int, error)
	EstimateImage(ctx context.Context, mimeType string, data []byte) (int, error)
}

type NutritionHandler struct {
	entries   NutritionStore
	estimator CalorieEstimator
	images    storage.Storage
	logger    *zap.Logger
	now       func() time.Time
}

func NewNutritionHandler(entries NutritionStore, est CalorieEstimator, images storage.Storage, logger *zap.Logger) *NutritionHandler {
	return &NutritionHandler{entries: entries, estimator: est, images: images, logger: logger, now: time.Now}
}

type nutritionRequest struct {
	Date     string   `json:"date"`
	FoodName string   `json:"food_name"`
	Calories float64  `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
	Fiber    *float64 `json:"fiber"`
	MealType string   `json:"meal_type"`
}

// Add records a manually entered food and adds its calories to the department total.
func (h *NutritionHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req nutritionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	day, err := parseDay(req.Date, h.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.record(w, r, store.NutritionInput{
		Date:     day,
		FoodName: req.FoodName,
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fat:      req.Fat,
		Fiber:    req.Fiber,
		MealType: req.MealType,
	}, "")
}

type estimateResponse struct {
	FoodName    string `json:"food_name"`
	Calories    int    `json:"calories"`
	Description string `json:"description"`
}

// Estimate looks up the calories of a food description without recording anything.
func (h *NutritionHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	food := strings.TrimSpace(r.URL.Query().Get("food_name"))
	if food == "" {
		http.Error(w, "food_name is required", http.StatusBadRequest)
		return
	}
	calories, err := h.estimator.EstimateText(r.Context(), food)
	if err != nil {
		h.estimationFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, estimateResponse{
		FoodName:    food,
		Calories:    calories,
		Description: fmt.Sprintf("%s: %d calories", food, calories),
	})
}

// Upload estimates the calories in a food photo and records the result for today. The photo is
// archived only once an estimate exists.
func (h *NutritionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	mealType := strings.ToLower(strings.TrimSpace(r.FormValue(uploadMealFormName)))
	if mealType == "" {
		mealType = models.MealSnack
	}
	if !models.IsMealType(mealType) {
		http.Error(w, fmt.Sprintf("unknown meal type %q", mealType), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		http.Error(w, "food_image is required", http.StatusBadRequest)
		return
	}
	defer file.Close()
	if header.Filename == "" {
		http.Error(w, "no file selected", http.StatusBadRequest)
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil || len(data) == 0 {
		http.Error(w, "could not read food_image", http.StatusBadRequest)
		return
	}
	if len(data) > maxUploadBytes {
		http.Error(w, "food_image is too large", http.StatusRequestEntityTooLarge)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	calories, err := h.estimator.EstimateImage(r.Context(), mimeType, data)
	if err != nil {
		h.estimationFailed(w, err)
		return
	}

	path, err := h.images.Upload(r.Context(), uuid.New(), header.Filename, bytes.NewReader(data))
	if err != nil {
		h.logger.Error("archive food image", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "could not store image", http.StatusInternalServerError)
		return
	}

	h.record(w, r, store.NutritionInput{
		Date:      store.Day(h.now()),
		FoodName:  foodNameFromFilename(header.Filename),
		Calories:  float64(calories),
		MealType:  mealType,
		ImagePath: &path,
	}, path)
}

// record fills in the caller's identity and writes the entry. archived is removed again when the
// entry is not recorded.
func (h *NutritionHandler) record(w http.ResponseWriter, r *http.Request, in store.NutritionInput, archived string) {
	in.UserID, _ = middleware.UserIDFromContext(r.Context())
	in.DepartmentID, _ = middleware.DepartmentIDFromContext(r.Context())

	entry, err := h.entries.RecordNutritionEntry(r.Context(), in)
	if err != nil {
		if archived != "" {
			// the request context may already be gone
			if derr := h.images.Delete(context.WithoutCancel(r.Context()), archived); derr != nil {
				h.logger.Warn("remove orphaned food image", zap.String("path", archived), zap.Error(derr))
			}
		}
		if errors.Is(err, store.ErrInvalidNutritionInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("record nutrition entry", zap.Int("user_id", in.UserID), zap.Int("department_id", in.DepartmentID), zap.Error(err))
		http.Error(w, "could not save nutrition entry", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, ToNutritionDTO(*entry))
}

func (h *NutritionHandler) estimationFailed(w http.ResponseWriter, err error) {
	if errors.Is(err, estimator.ErrEstimationUnavailable) {
		h.logger.Warn("calorie estimation unavailable", zap.Error(err))
		http.Error(w, "calorie estimation unavailable", http.StatusBadGateway)
		return
	}
	h.logger.Error("estimate calories", zap.Error(err))
	http.Error(w, "server error", http.StatusInternalServerError)
}

func foodNameFromFilename(filename string) string {
	base := filepath.Base(filename)
	name := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" || name == "." {
		return defaultUploadName
	}
	return name
}
