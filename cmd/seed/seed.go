package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"alttabwell/internal/models"
	"alttabwell/internal/store"
)

const (
	minSampleSteps = 5000
	maxSampleSteps = 15000
)

type sampleUser struct {
	profile    store.Profile
	department string
}

var sampleUsers = []sampleUser{
	{store.Profile{GoogleID: "sample_google_id_1", Email: "john.doe@example.com", Name: "John Doe"}, "IT"},
	{store.Profile{GoogleID: "sample_google_id_2", Email: "jane.smith@example.com", Name: "Jane Smith"}, "Marketing"},
	{store.Profile{GoogleID: "sample_google_id_3", Email: "mike.johnson@example.com", Name: "Mike Johnson"}, "Finance"},
}

type seedStore interface {
	ListDepartments(ctx context.Context) ([]models.Department, error)
	UpsertUserFromProfile(ctx context.Context, p store.Profile) (*models.User, bool, error)
	SetDepartment(ctx context.Context, userID, departmentID int) error
	UpsertSteps(ctx context.Context, userID int, day time.Time, steps int) (*models.StepRecord, error)
}

type seeder struct {
	store  seedStore
	rng    *rand.Rand
	logger *zap.Logger
}

// seed is safe to re-run: users are matched by google id and step rows are replaced.
func (s *seeder) seed(ctx context.Context, today time.Time, days int) error {
	deps, err := s.store.ListDepartments(ctx)
	if err != nil {
		return fmt.Errorf("list departments: %w", err)
	}
	byName := make(map[string]int, len(deps))
	for _, d := range deps {
		byName[d.Name] = d.ID
	}

	for _, su := range sampleUsers {
		depID, ok := byName[su.department]
		if !ok {
			return fmt.Errorf("department %q has not been migrated", su.department)
		}
		user, created, err := s.store.UpsertUserFromProfile(ctx, su.profile)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", su.profile.Email, err)
		}
		if err := s.store.SetDepartment(ctx, user.ID, depID); err != nil {
			return fmt.Errorf("assign %s to %s: %w", su.profile.Email, su.department, err)
		}

		for i := 0; i < days; i++ {
			steps := minSampleSteps + s.rng.IntN(maxSampleSteps-minSampleSteps+1)
			if _, err := s.store.UpsertSteps(ctx, user.ID, today.AddDate(0, 0, -i), steps); err != nil {
				return fmt.Errorf("seed steps for %s: %w", su.profile.Email, err)
			}
		}
		s.logger.Info("sample user seeded",
			zap.Int("user_id", user.ID),
			zap.String("department", su.department),
			zap.Bool("created", created),
			zap.Int("days", days),
		)
	}
	return nil
}
