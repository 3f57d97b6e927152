package store

import (
	"context"
	"fmt"
	"strings"

	"alttabwell/internal/models"
)

const userColumns = `id, email, name, google_id, profile_picture, department_id, created_at, last_login`

// Profile is what the identity provider tells us about a user.
type Profile struct {
	GoogleID  string
	Email     string
	Name      string
	AvatarURL string
}

// UpsertUserFromProfile maps a verified Google identity to a user, creating the user on first
// sight and refreshing last_login otherwise. created reports whether a row was inserted.
func (s *Store) UpsertUserFromProfile(ctx context.Context, p Profile) (user *models.User, created bool, err error) {
	if p.GoogleID == "" || p.Email == "" {
		return nil, false, fmt.Errorf("upsert user: google id and email are required")
	}
	var row struct {
		models.User
		Created bool `db:"created"`
	}
	var avatar *string
	if p.AvatarURL != "" {
		avatar = &p.AvatarURL
	}
	err = s.db.QueryRowxContext(ctx, `INSERT INTO users (email, name, google_id, profile_picture, last_login)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (google_id)
		DO UPDATE SET last_login = NOW()
		RETURNING `+userColumns+`, (xmax = 0) AS created`,
		strings.ToLower(strings.TrimSpace(p.Email)), p.Name, p.GoogleID, avatar).StructScan(&row)
	if err != nil {
		return nil, false, fmt.Errorf("upsert user: %w", err)
	}
	return &row.User, row.Created, nil
}

func (s *Store) GetUser(ctx context.Context, id int) (*models.User, error) {
	var u models.User
	if err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id=$1`, id); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// SetDepartment assigns the user to an existing department. ErrNotFound means either the user
// or the department does not exist.
func (s *Store) SetDepartment(ctx context.Context, userID, departmentID int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET department_id = $1
		WHERE id = $2 AND EXISTS (SELECT 1 FROM departments WHERE id = $1)`, departmentID, userID)
	if err != nil {
		return fmt.Errorf("set department: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListDepartments(ctx context.Context) ([]models.Department, error) {
	out := []models.Department{}
	if err := s.db.SelectContext(ctx, &out, `SELECT id, name FROM departments ORDER BY name`); err != nil {
		return nil, err
	}
	return out, nil
}
