package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"alttabwell/internal/models"
	"alttabwell/internal/store"
)

var testSecret = []byte("test-secret")

func echoUser(w http.ResponseWriter, r *http.Request) {
	id, ok := UserIDFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.Header().Set("X-User", strconv.Itoa(id))
	w.WriteHeader(http.StatusOK)
}

func serveWithToken(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	auth := NewAuthMiddleware(testSecret)
	h := auth.RequireAuth(http.HandlerFunc(echoUser))

	t.Run("valid token sets the user id", func(t *testing.T) {
		token, err := auth.IssueToken(7, time.Now())
		require.NoError(t, err)

		rec := serveWithToken(h, token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "7", rec.Header().Get("X-User"))
	})

	t.Run("missing token", func(t *testing.T) {
		rec := serveWithToken(h, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := auth.IssueToken(7, time.Now().Add(-48*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, serveWithToken(h, token).Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		token, err := NewAuthMiddleware([]byte("other")).IssueToken(7, time.Now())
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, serveWithToken(h, token).Code)
	})

	t.Run("token without expiry", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": 7}).SignedString(testSecret)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, serveWithToken(h, token).Code)
	})

	t.Run("non numeric subject", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "seven",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString(testSecret)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, serveWithToken(h, token).Code)
	})
}

func TestRequireAuth_Clock(t *testing.T) {
	issuedAt := time.Date(2026, 3, 18, 15, 4, 5, 0, time.UTC)
	clock := issuedAt
	auth := NewAuthMiddleware(testSecret).WithClock(func() time.Time { return clock })
	h := auth.RequireAuth(http.HandlerFunc(echoUser))

	token, err := auth.IssueToken(7, issuedAt)
	require.NoError(t, err)

	t.Run("accepted within the ttl of the configured clock", func(t *testing.T) {
		clock = issuedAt.Add(TokenTTL - time.Minute)
		rec := serveWithToken(h, token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "7", rec.Header().Get("X-User"))
	})

	t.Run("rejected once the configured clock passes the ttl", func(t *testing.T) {
		clock = issuedAt.Add(TokenTTL + time.Minute)
		assert.Equal(t, http.StatusUnauthorized, serveWithToken(h, token).Code)
	})
}

type fakeUsers struct {
	user *models.User
	err  error
}

func (f fakeUsers) GetUser(context.Context, int) (*models.User, error) {
	return f.user, f.err
}

func TestRequireDepartment(t *testing.T) {
	auth := NewAuthMiddleware(testSecret)
	token, err := auth.IssueToken(3, time.Now())
	require.NoError(t, err)

	depID := 2
	cases := []struct {
		name   string
		users  fakeUsers
		status int
	}{
		{"department selected", fakeUsers{user: &models.User{ID: 3, DepartmentID: &depID}}, http.StatusOK},
		{"department missing", fakeUsers{user: &models.User{ID: 3}}, http.StatusConflict},
		{"user deleted", fakeUsers{err: store.ErrNotFound}, http.StatusUnauthorized},
		{"lookup failure", fakeUsers{err: errors.New("db down")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var reached bool
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				got, ok := DepartmentIDFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, depID, got)
			})
			h := auth.RequireAuth(RequireDepartment(tc.users, zap.NewNop())(inner))

			rec := serveWithToken(h, token)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.status == http.StatusOK, reached)
		})
	}
}

func TestZapRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	auth := NewAuthMiddleware(testSecret)
	token, err := auth.IssueToken(5, time.Now())
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(ZapRequestLogger(zap.New(core)))
	r.With(auth.RequireAuth).Get("/api/me", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	})

	serveWithToken(r, token)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "/api/me", first["path"])
	assert.EqualValues(t, http.StatusOK, first["status"])
	assert.EqualValues(t, 5, first["user_id"])
	assert.NotEmpty(t, first["request_id"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.NotContains(t, entries[1].ContextMap(), "user_id")
}

func TestZapRecoverer(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := ZapRecoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/steps", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}
