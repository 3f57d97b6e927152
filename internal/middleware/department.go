package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"alttabwell/internal/models"
	"alttabwell/internal/store"
)

type UserLookup interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
}

// RequireDepartment rejects users that have not picked a department yet with 409 and otherwise
// stores the department id in the request context. It must run after RequireAuth.
func RequireDepartment(users UserLookup, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "not authenticated", http.StatusUnauthorized)
				return
			}
			user, err := users.GetUser(r.Context(), userID)
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "not authenticated", http.StatusUnauthorized)
				return
			}
			if err != nil {
				logger.Error("load user for department check", zap.Int("user_id", userID), zap.Error(err))
				http.Error(w, "server error", http.StatusInternalServerError)
				return
			}
			if user.DepartmentID == nil {
				http.Error(w, "department not selected", http.StatusConflict)
				return
			}
			ctx := context.WithValue(r.Context(), departmentIDKey, *user.DepartmentID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func DepartmentIDFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(departmentIDKey).(int)
	return id, ok
}
