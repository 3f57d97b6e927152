package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alttabwell/internal/middleware"
	"alttabwell/internal/models"
	"alttabwell/internal/services"
	"alttabwell/internal/store"
)

var (
	testNow   = time.Date(2026, 3, 18, 15, 4, 5, 0, time.UTC)
	testToday = time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	testAuth  = middleware.NewAuthMiddleware([]byte("handler-test-secret")).WithClock(fixedNow)
)

func fixedNow() time.Time { return testNow }

// MockStore is a mock implementation of every store interface the handlers use.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) UpsertUserFromProfile(ctx context.Context, p store.Profile) (*models.User, bool, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}

func (m *MockStore) GetUser(ctx context.Context, id int) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) SetDepartment(ctx context.Context, userID, departmentID int) error {
	return m.Called(ctx, userID, departmentID).Error(0)
}

func (m *MockStore) ListDepartments(ctx context.Context) ([]models.Department, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Department), args.Error(1)
}

func (m *MockStore) DepartmentTotals(ctx context.Context, day time.Time) ([]store.DepartmentTotal, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.DepartmentTotal), args.Error(1)
}

func (m *MockStore) UpsertWellness(ctx context.Context, userID int, day time.Time, patch store.WellnessPatch) (*models.WellnessRecord, error) {
	args := m.Called(ctx, userID, day, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WellnessRecord), args.Error(1)
}

func (m *MockStore) WeeklyWellness(ctx context.Context, userID int, day time.Time) ([]models.WellnessRecord, error) {
	args := m.Called(ctx, userID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WellnessRecord), args.Error(1)
}

func (m *MockStore) UpsertSteps(ctx context.Context, userID int, day time.Time, steps int) (*models.StepRecord, error) {
	args := m.Called(ctx, userID, day, steps)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StepRecord), args.Error(1)
}

func (m *MockStore) RecordNutritionEntry(ctx context.Context, in store.NutritionInput) (*models.NutritionEntry, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NutritionEntry), args.Error(1)
}

func (m *MockStore) WellnessForDay(ctx context.Context, userID int, day time.Time) (*models.WellnessRecord, error) {
	args := m.Called(ctx, userID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WellnessRecord), args.Error(1)
}

func (m *MockStore) StepsForDay(ctx context.Context, userID int, day time.Time) (*models.StepRecord, error) {
	args := m.Called(ctx, userID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StepRecord), args.Error(1)
}

func (m *MockStore) NutritionForDay(ctx context.Context, userID int, day time.Time) ([]models.NutritionEntry, error) {
	args := m.Called(ctx, userID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NutritionEntry), args.Error(1)
}

func (m *MockStore) DailyCalories(ctx context.Context, userID int, day time.Time) (float64, error) {
	args := m.Called(ctx, userID, day)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockStore) MonthlyCalories(ctx context.Context, userID int, day time.Time) (float64, error) {
	args := m.Called(ctx, userID, day)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockStore) WeeklyLeaderboard(ctx context.Context, day time.Time, limit int) ([]store.LeaderboardEntry, error) {
	args := m.Called(ctx, day, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.LeaderboardEntry), args.Error(1)
}

// MockEstimator is a mock implementation of CalorieEstimator.
type MockEstimator struct {
	mock.Mock
}

func (m *MockEstimator) EstimateText(ctx context.Context, food string) (int, error) {
	args := m.Called(ctx, food)
	return args.Int(0), args.Error(1)
}

func (m *MockEstimator) EstimateImage(ctx context.Context, mimeType string, data []byte) (int, error) {
	args := m.Called(ctx, mimeType, data)
	return args.Int(0), args.Error(1)
}

// MockStorage is a mock implementation of storage.Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, fileID uuid.UUID, filename string, data io.Reader) (string, error) {
	args := m.Called(ctx, fileID, filename, data)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, storagePath string) error {
	return m.Called(ctx, storagePath).Error(0)
}

// departmentLookup satisfies middleware.UserLookup for requests that need a department.
type departmentLookup struct{ departmentID int }

func (d departmentLookup) GetUser(_ context.Context, id int) (*models.User, error) {
	return &models.User{ID: id, DepartmentID: &d.departmentID}, nil
}

func newEncSvc(t *testing.T) *services.EncryptionService {
	t.Helper()
	svc, err := services.NewEncryptionService("handler-test-encryption-secret")
	require.NoError(t, err)
	return svc
}

// serve runs h behind the real auth middleware for userID, and behind the department middleware
// when departmentID is non-zero.
func serve(t *testing.T, h http.HandlerFunc, userID, departmentID int, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	var handler http.Handler = h
	if departmentID != 0 {
		handler = middleware.RequireDepartment(departmentLookup{departmentID}, zap.NewNop())(handler)
	}
	handler = testAuth.RequireAuth(handler)

	token, err := testAuth.IssueToken(userID, testNow)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func ptr[T any](v T) *T { return &v }
