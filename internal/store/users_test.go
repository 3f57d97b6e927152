package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "email", "name", "google_id", "profile_picture", "department_id", "created_at", "last_login"}

func TestStore_UpsertUserFromProfile(t *testing.T) {
	ctx := context.Background()
	profile := Profile{GoogleID: "g-123", Email: " Jane@Example.com", Name: "Jane", AvatarURL: "https://example.com/a.png"}

	t.Run("creates on first sight", func(t *testing.T) {
		s, mock := setupStore(t)

		mock.ExpectQuery(`(?s)INSERT INTO users .*ON CONFLICT \(google_id\)\s+DO UPDATE SET last_login = NOW\(\)`).
			WithArgs("jane@example.com", "Jane", "g-123", "https://example.com/a.png").
			WillReturnRows(sqlmock.NewRows(append(userCols, "created")).
				AddRow(5, "jane@example.com", "Jane", "g-123", "https://example.com/a.png", nil, stamp, stamp, true))

		u, created, err := s.UpsertUserFromProfile(ctx, profile)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, 5, u.ID)
		assert.Nil(t, u.DepartmentID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returning user keeps department", func(t *testing.T) {
		s, mock := setupStore(t)

		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnRows(sqlmock.NewRows(append(userCols, "created")).
				AddRow(5, "jane@example.com", "Jane", "g-123", nil, 2, stamp, stamp, false))

		u, created, err := s.UpsertUserFromProfile(ctx, profile)
		require.NoError(t, err)
		assert.False(t, created)
		require.NotNil(t, u.DepartmentID)
		assert.Equal(t, 2, *u.DepartmentID)
	})

	t.Run("requires google id and email", func(t *testing.T) {
		s, _ := setupStore(t)

		_, _, err := s.UpsertUserFromProfile(ctx, Profile{Email: "x@example.com"})
		assert.Error(t, err)
	})
}

func TestStore_GetUser(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectQuery(`FROM users WHERE id=\$1`).WithArgs(42).WillReturnRows(sqlmock.NewRows(userCols))

	_, err := s.GetUser(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SetDepartment(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns an existing department", func(t *testing.T) {
		s, mock := setupStore(t)

		mock.ExpectExec(`UPDATE users SET department_id = \$1`).
			WithArgs(3, 5).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.SetDepartment(ctx, 5, 3))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown department is not found", func(t *testing.T) {
		s, mock := setupStore(t)

		mock.ExpectExec(`UPDATE users SET department_id`).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.SetDepartment(ctx, 5, 99), ErrNotFound)
	})
}

func TestStore_ListDepartments(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectQuery(`SELECT id, name FROM departments ORDER BY name`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "Finance").AddRow(1, "IT"))

	deps, err := s.ListDepartments(context.Background())
	require.NoError(t, err)
	require.Len(t, deps, 2)
	assert.Equal(t, "Finance", deps[0].Name)
}
