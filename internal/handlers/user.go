package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"alttabwell/internal/middleware"
	"alttabwell/internal/models"
	"alttabwell/internal/store"
)

type UserStore interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
	SetDepartment(ctx context.Context, userID, departmentID int) error
}

type UserHandler struct {
	users  UserStore
	logger *zap.Logger
}

func NewUserHandler(users UserStore, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// GetMe returns the current user's profile
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	u, err := h.users.GetUser(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("get user", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ToUserDTO(*u))
}

// SelectDepartment assigns the current user to a department. Users may change department later;
// totals already accumulated stay with the old department.
func (h *UserHandler) SelectDepartment(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	var body struct {
		DepartmentID int `json:"department_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.DepartmentID <= 0 {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := h.users.SetDepartment(r.Context(), userID, body.DepartmentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "unknown department", http.StatusBadRequest)
			return
		}
		h.logger.Error("set department", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "could not save department", http.StatusInternalServerError)
		return
	}

	u, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("get user", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ToUserDTO(*u))
}
