package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/repository"
)

type memViolations struct {
	rows      map[uint64]model.Violation
	gotFilter repository.ViolationFilter
}

func (m *memViolations) Create(_ context.Context, v *model.Violation) error {
	v.ID = uint64(len(m.rows) + 1)
	m.rows[v.ID] = *v
	return nil
}

func (m *memViolations) GetByID(_ context.Context, id uint64) (*model.Violation, error) {
	v, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrViolationNotFound
	}
	return &v, nil
}

func (m *memViolations) ListByUser(_ context.Context, userID uint64) ([]model.Violation, error) {
	var out []model.Violation
	for _, v := range m.rows {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memViolations) List(_ context.Context, filter repository.ViolationFilter, _ repository.Page) ([]model.Violation, int, error) {
	m.gotFilter = filter
	return nil, 0, nil
}

func (m *memViolations) Update(_ context.Context, v *model.Violation) error {
	m.rows[v.ID] = *v
	return nil
}

func (m *memViolations) Delete(_ context.Context, id uint64) error {
	if _, ok := m.rows[id]; !ok {
		return repository.ErrViolationNotFound
	}
	delete(m.rows, id)
	return nil
}

type reservationSet map[uint64]bool

func (r reservationSet) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	if !r[id] {
		return nil, repository.ErrReservationNotFound
	}
	return &model.Reservation{ID: id}, nil
}

func violationFixture(t *testing.T) (*ViolationHandler, *memViolations) {
	t.Helper()
	users := newMemUsers()
	require.NoError(t, users.Create(context.Background(), &model.User{Name: "A", StudentID: "S1", Role: model.RoleUser}))
	store := &memViolations{rows: map[uint64]model.Violation{}}
	h := NewViolationHandler(store, users, reservationSet{5: true}, zap.NewNop())
	h.Now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return h, store
}

func TestViolationCreate(t *testing.T) {
	h, store := violationFixture(t)
	e := newEcho()
	e.POST("/violations", h.Create, as(9, model.RoleAdmin))

	rec := do(e, http.MethodPost, "/violations", map[string]any{"user_id": 1, "reservation_id": 5, "type": "no_show", "penalty": "warning"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, model.ViolationNoShow, store.rows[1].Type)
	assert.Nil(t, store.rows[1].Description)

	rec = do(e, http.MethodPost, "/violations", map[string]any{"user_id": 2, "reservation_id": 5, "type": "no_show"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, repository.ErrUserNotFound.Error(), decode(t, rec)["message"])

	rec = do(e, http.MethodPost, "/violations", map[string]any{"user_id": 1, "reservation_id": 6, "type": "no_show"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/violations", map[string]any{"user_id": 1, "reservation_id": 5, "type": "noise"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestViolationResolve(t *testing.T) {
	h, store := violationFixture(t)
	store.rows[1] = model.Violation{ID: 1, UserID: 1, ReservationID: 5, Type: model.ViolationLateCheckIn, Penalty: model.PenaltyWarning}
	e := newEcho()
	e.PUT("/violations/:id", h.Update, as(9, model.RoleAdmin))

	rec := do(e, http.MethodPut, "/violations/1", map[string]any{"is_resolved": true})
	require.Equal(t, http.StatusOK, rec.Code)
	got := store.rows[1]
	assert.True(t, got.IsResolved)
	require.NotNil(t, got.ResolvedAt)
	assert.Equal(t, h.Now(), *got.ResolvedAt)

	h.Now = func() time.Time { return time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC) }
	rec = do(e, http.MethodPut, "/violations/1", map[string]any{"is_resolved": true, "penalty": "suspend", "penalty_duration_days": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	got = store.rows[1]
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), *got.ResolvedAt)
	assert.Equal(t, model.PenaltySuspend, got.Penalty)
	assert.EqualValues(t, 3, got.PenaltyDurationDays)

	rec = do(e, http.MethodPut, "/violations/1", map[string]any{"is_resolved": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, store.rows[1].IsResolved)
	assert.Nil(t, store.rows[1].ResolvedAt)
}

func TestViolationListAndOwnership(t *testing.T) {
	h, store := violationFixture(t)
	store.rows[1] = model.Violation{ID: 1, UserID: 1, ReservationID: 5, Type: model.ViolationOther}
	e := newEcho()
	e.GET("/violations", h.List, as(9, model.RoleAdmin))
	e.GET("/violations/:id", h.Get, as(2, model.RoleUser))
	e.GET("/violations/my", h.Mine, as(1, model.RoleUser))

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/violations?is_resolved=maybe", nil).Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/violations?is_resolved=false&type=other", nil).Code)
	require.NotNil(t, store.gotFilter.IsResolved)
	assert.False(t, *store.gotFilter.IsResolved)
	assert.Equal(t, model.ViolationOther, store.gotFilter.Type)

	assert.Equal(t, http.StatusForbidden, do(e, http.MethodGet, "/violations/1", nil).Code)
	assert.EqualValues(t, 1, decode(t, do(e, http.MethodGet, "/violations/my", nil))["count"])
}
