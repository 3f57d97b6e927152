package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// DefaultDepartments are seeded on every migration run; existing names are left alone.
var DefaultDepartments = []string{"IT", "Marketing", "Finance", "Human Resources"}

func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS departments (
    id SERIAL PRIMARY KEY,
    name VARCHAR(100) UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    email VARCHAR(120) UNIQUE NOT NULL,
    name VARCHAR(100) NOT NULL,
    google_id VARCHAR(100) UNIQUE,
    profile_picture VARCHAR(500),
    department_id INTEGER REFERENCES departments(id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_login TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS wellness_records (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id),
    date DATE NOT NULL,
    mood_score INTEGER,
    sleep_hours DOUBLE PRECISION,
    water_intake DOUBLE PRECISION,
    stress_level INTEGER,
    notes TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE(user_id, date)
);

CREATE TABLE IF NOT EXISTS step_records (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id),
    date DATE NOT NULL,
    steps INTEGER NOT NULL DEFAULT 0 CHECK (steps >= 0),
    goal INTEGER NOT NULL DEFAULT 10000,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE(user_id, date)
);

CREATE TABLE IF NOT EXISTS nutrition_records (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id),
    date DATE NOT NULL,
    food_name VARCHAR(200) NOT NULL,
    calories DOUBLE PRECISION NOT NULL CHECK (calories > 0),
    protein DOUBLE PRECISION,
    carbs DOUBLE PRECISION,
    fat DOUBLE PRECISION,
    fiber DOUBLE PRECISION,
    meal_type VARCHAR(20) NOT NULL DEFAULT 'snack',
    image_path TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS nutrition_records_user_date_idx ON nutrition_records (user_id, date);

CREATE TABLE IF NOT EXISTS department_nutrition (
    id SERIAL PRIMARY KEY,
    department_id INTEGER NOT NULL REFERENCES departments(id),
    date DATE NOT NULL,
    total_calories DOUBLE PRECISION NOT NULL DEFAULT 0,
    UNIQUE(department_id, date)
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return err
	}

	for _, name := range DefaultDepartments {
		if _, err := db.ExecContext(ctx, `INSERT INTO departments (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
			return err
		}
	}
	return nil
}

// DropAll removes every table created by RunMigrations.
func DropAll(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
DROP TABLE IF EXISTS department_nutrition, nutrition_records, step_records, wellness_records, users, departments CASCADE`)
	return err
}
