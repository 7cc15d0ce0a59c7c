package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/repository"
)

type memRooms map[uint64]model.Room

func (m memRooms) Create(_ context.Context, rm *model.Room) error {
	for _, r := range m {
		if r.Name == rm.Name {
			return repository.ErrRoomNameExists
		}
	}
	rm.ID = uint64(len(m) + 1)
	m[rm.ID] = *rm
	return nil
}

func (m memRooms) GetByID(_ context.Context, id uint64) (*model.Room, error) {
	r, ok := m[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	return &r, nil
}

func (m memRooms) List(context.Context) ([]model.Room, error) {
	out := make([]model.Room, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	return out, nil
}

func (m memRooms) Update(_ context.Context, rm *model.Room) error {
	m[rm.ID] = *rm
	return nil
}

func (m memRooms) Delete(_ context.Context, id uint64) error {
	if _, ok := m[id]; !ok {
		return repository.ErrRoomNotFound
	}
	delete(m, id)
	return nil
}

type memSeats struct {
	rows      map[uint64]model.Seat
	gotRoomID *uint64
}

func (m *memSeats) Create(_ context.Context, s *model.Seat) error {
	s.ID = uint64(len(m.rows) + 1)
	m.rows[s.ID] = *s
	return nil
}

func (m *memSeats) GetByID(_ context.Context, id uint64) (*model.Seat, error) {
	s, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrSeatNotFound
	}
	return &s, nil
}

func (m *memSeats) List(_ context.Context, roomID *uint64) ([]model.Seat, error) {
	m.gotRoomID = roomID
	return nil, nil
}

func (m *memSeats) Update(_ context.Context, s *model.Seat) error {
	m.rows[s.ID] = *s
	return nil
}

func (m *memSeats) Delete(_ context.Context, id uint64) error {
	delete(m.rows, id)
	return nil
}

func TestRoomCreateDefaultsAndValidation(t *testing.T) {
	rooms := memRooms{}
	h := NewCatalogHandler(rooms, &memSeats{rows: map[uint64]model.Seat{}}, zap.NewNop())
	e := newEcho()
	e.POST("/rooms", h.CreateRoom)
	e.PUT("/rooms/:id", h.UpdateRoom)

	rec := do(e, http.MethodPost, "/rooms", map[string]any{"name": "Quiet Room", "capacity": 40})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "08:00", rooms[1].OpenTime)
	assert.Equal(t, "22:00", rooms[1].CloseTime)
	assert.Equal(t, model.RoomOpen, rooms[1].Status)

	rec = do(e, http.MethodPost, "/rooms", map[string]any{"name": "Quiet Room"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, repository.ErrRoomNameExists.Error(), decode(t, rec)["message"])

	rec = do(e, http.MethodPost, "/rooms", map[string]any{"capacity": 10})
	assert.Equal(t, "name is required", decode(t, rec)["message"])

	rec = do(e, http.MethodPost, "/rooms", map[string]any{"name": "Late", "open_time": "23:00"})
	assert.Equal(t, "open_time must be before close_time", decode(t, rec)["message"])

	rec = do(e, http.MethodPut, "/rooms/1", map[string]any{"status": "maintenance"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.RoomMaintenance, rooms[1].Status)
	assert.Equal(t, "Quiet Room", rooms[1].Name)
}

func TestSeatCreateRequiresRoom(t *testing.T) {
	rooms := memRooms{1: {ID: 1, Name: "A", OpenTime: "08:00", CloseTime: "22:00", Status: model.RoomOpen}}
	seats := &memSeats{rows: map[uint64]model.Seat{}}
	h := NewCatalogHandler(rooms, seats, zap.NewNop())
	e := newEcho()
	e.POST("/seats", h.CreateSeat)
	e.GET("/seats", h.ListSeats)

	rec := do(e, http.MethodPost, "/seats", map[string]any{"room_id": 1, "seat_number": " A-01 "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "A-01", seats.rows[1].SeatNumber)
	assert.Equal(t, model.SeatAvailable, seats.rows[1].Status)

	rec = do(e, http.MethodPost, "/seats", map[string]any{"room_id": 7, "seat_number": "B-01"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/seats", map[string]any{"seat_number": "B-01"})
	assert.Equal(t, "room_id and seat_number are required", decode(t, rec)["message"])

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/seats?room_id=1", nil).Code)
	require.NotNil(t, seats.gotRoomID)
	assert.Equal(t, uint64(1), *seats.gotRoomID)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/seats?room_id=x", nil).Code)
}
