package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/database"
	"github.com/iliyamo/study-room-reservation/internal/handler"
	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/repository"
	"github.com/iliyamo/study-room-reservation/internal/utils"
)

const secret = "router-secret"

type users map[uint64]*model.User

func (u users) GetByID(_ context.Context, id uint64) (*model.User, error) {
	if v, ok := u[id]; ok {
		return v, nil
	}
	return nil, repository.ErrUserNotFound
}

type upProbe struct{}

func (upProbe) State() database.State      { return database.StateConnected }
func (upProbe) Ping(context.Context) error { return nil }

func newServer() *echo.Echo {
	e := echo.New()
	e.Validator = handler.NewValidator()
	o := Options{
		JWTSecret: secret,
		UserAuth:  users{1: {ID: 1, Role: model.RoleUser}, 2: {ID: 2, Role: model.RoleAdmin}},
		Probe:     upProbe{},
		Log:       zap.NewNop(),
	}
	RegisterRoutes(e, o)
	RegisterAPI(e, Handlers{
		Auth:         &handler.AuthHandler{},
		Users:        &handler.UserHandler{},
		Catalog:      &handler.CatalogHandler{},
		Reservations: &handler.ReservationHandler{},
		CheckIns:     &handler.CheckInHandler{},
		Feedbacks:    &handler.FeedbackHandler{},
		Violations:   &handler.ViolationHandler{},
		Statistics:   &handler.StatisticsHandler{},
	}, o)
	return e
}

func call(t *testing.T, e *echo.Echo, method, path string, userID uint64, role string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if userID != 0 {
		at, err := utils.NewAccessToken(secret, userID, role, time.Minute, time.Now())
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+at.Token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestOperationalRoutes(t *testing.T) {
	e := newServer()
	assert.Equal(t, http.StatusOK, call(t, e, http.MethodGet, "/health", 0, ""))
	assert.Equal(t, http.StatusOK, call(t, e, http.MethodGet, "/ready", 0, ""))
	assert.Equal(t, http.StatusOK, call(t, e, http.MethodGet, "/metrics", 0, ""))
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	e := newServer()
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/v1/me"},
		{http.MethodPost, "/v1/reservations"},
		{http.MethodPost, "/v1/checkins"},
		{http.MethodGet, "/v1/statistics/user"},
		{http.MethodPost, "/v1/rooms"},
	} {
		assert.Equal(t, http.StatusUnauthorized, call(t, e, r.method, r.path, 0, ""), r.path)
	}
	assert.Equal(t, http.StatusUnauthorized, call(t, e, http.MethodGet, "/v1/me", 99, model.RoleUser))
}

func TestAdminRoutesNeedRole(t *testing.T) {
	e := newServer()
	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/v1/rooms"},
		{http.MethodDelete, "/v1/seats/1"},
		{http.MethodGet, "/v1/feedbacks"},
		{http.MethodPost, "/v1/violations"},
		{http.MethodGet, "/v1/statistics/system"},
		{http.MethodGet, "/v1/users"},
		{http.MethodPost, "/v1/reservations/1/confirm"},
		{http.MethodDelete, "/v1/reservations/1"},
	} {
		assert.Equal(t, http.StatusForbidden, call(t, e, r.method, r.path, 1, model.RoleUser), r.path)
	}
}

func TestRoleComesFromStoredUser(t *testing.T) {
	e := newServer()
	// The token claims admin but the stored role is user.
	assert.Equal(t, http.StatusForbidden, call(t, e, http.MethodGet, "/v1/users", 1, model.RoleAdmin))
}
