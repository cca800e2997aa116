package middlewares

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rakhulsr/go-tours/app/apperrors"
	"github.com/Rakhulsr/go-tours/app/auth"
	"github.com/Rakhulsr/go-tours/app/helpers"
	"github.com/Rakhulsr/go-tours/app/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	users map[string]*models.User
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, userID string, issuedAt int64) (*models.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, apperrors.ErrUserGone
	}
	if user.IsPasswordChangedAfter(issuedAt) {
		return nil, apperrors.ErrPasswordChanged
	}
	return user, nil
}

type memSessions struct {
	token string
}

func (m *memSessions) GetToken(*http.Request) string { return m.token }

func (m *memSessions) SetToken(_ http.ResponseWriter, _ *http.Request, token string, _ time.Duration) error {
	m.token = token
	return nil
}

func (m *memSessions) ClearSession(http.ResponseWriter, *http.Request) error {
	m.token = ""
	return nil
}

func respondStatus(w http.ResponseWriter, _ *http.Request, err error) {
	http.Error(w, err.Error(), apperrors.StatusCode(err))
}

type fixture struct {
	mw       *AuthMiddleware
	tokens   *auth.TokenService
	sessions *memSessions
	users    *fakeAuthenticator
}

func newFixture() *fixture {
	tokens := auth.NewTokenService("middleware-test-secret", time.Hour)
	users := &fakeAuthenticator{users: map[string]*models.User{
		"u1": {ID: "u1", Name: "Leo Gillespie", Role: models.RoleUser},
		"a1": {ID: "a1", Name: "Jonas", Role: models.RoleAdmin},
	}}
	store := &memSessions{}
	return &fixture{
		mw:       NewAuthMiddleware(tokens, users, store, respondStatus),
		tokens:   tokens,
		sessions: store,
		users:    users,
	}
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := helpers.CurrentUser(r); user != nil {
			_, _ = w.Write([]byte(user.ID))
			return
		}
		_, _ = w.Write([]byte("anonymous"))
	})
}

func (f *fixture) bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := f.tokens.Issue(userID)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRequireLogin(t *testing.T) {
	f := newFixture()
	h := f.mw.RequireLogin(echoUser())

	t.Run("no token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "you are not logged in")
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", f.bearer(t, "u1"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u1", rec.Body.String())
	})

	t.Run("session cookie", func(t *testing.T) {
		token, err := f.tokens.Issue("a1")
		require.NoError(t, err)
		f.sessions.token = token
		defer func() { f.sessions.token = "" }()

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "a1", rec.Body.String())
	})

	t.Run("tampered token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", f.bearer(t, "u1")+"x")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("deleted user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", f.bearer(t, "ghost"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "no longer exists")
	})

	t.Run("password changed after issue", func(t *testing.T) {
		header := f.bearer(t, "u1")
		changed := time.Now().Add(time.Hour)
		f.users.users["u1"].PasswordChangedAt = &changed
		defer func() { f.users.users["u1"].PasswordChangedAt = nil }()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "recently changed password")
	})
}

func TestRestrictTo(t *testing.T) {
	f := newFixture()
	h := f.mw.RequireLogin(f.mw.RestrictTo(models.RoleAdmin, models.RoleLeadGuide)(echoUser()))

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req.Header.Set("Authorization", f.bearer(t, "u1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/", nil)
	req.Header.Set("Authorization", f.bearer(t, "a1"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	f.mw.RestrictTo(models.RoleAdmin)(echoUser()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIsLoggedInNeverRejects(t *testing.T) {
	f := newFixture()
	h := f.mw.IsLoggedIn(echoUser())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "anonymous", rec.Body.String())

	f.sessions.token = "garbage"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	token, err := f.tokens.Issue("u1")
	require.NoError(t, err)
	f.sessions.token = token
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "u1", rec.Body.String())
}

func TestRecoveryTurnsPanicIntoServerError(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "boom")
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/api/v1/tours"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"http://localhost:3000"})(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tours", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
