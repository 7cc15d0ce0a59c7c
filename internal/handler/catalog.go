package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

// RoomStore persists rooms.
type RoomStore interface {
	Create(ctx context.Context, rm *model.Room) error
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
	List(ctx context.Context) ([]model.Room, error)
	Update(ctx context.Context, rm *model.Room) error
	Delete(ctx context.Context, id uint64) error
}

// SeatStore persists seats.
type SeatStore interface {
	Create(ctx context.Context, s *model.Seat) error
	GetByID(ctx context.Context, id uint64) (*model.Seat, error)
	List(ctx context.Context, roomID *uint64) ([]model.Seat, error)
	Update(ctx context.Context, s *model.Seat) error
	Delete(ctx context.Context, id uint64) error
}

// CatalogHandler serves rooms and seats. Reads are public; writes are
// admin only.
type CatalogHandler struct {
	Rooms RoomStore
	Seats SeatStore
	Log   *zap.Logger
}

func NewCatalogHandler(rooms RoomStore, seats SeatStore, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{Rooms: rooms, Seats: seats, Log: log}
}

type roomReq struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
	Capacity    *uint32 `json:"capacity"`
	OpenTime    *string `json:"open_time" validate:"omitempty,hhmm"`
	CloseTime   *string `json:"close_time" validate:"omitempty,hhmm"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Status      *string `json:"status" validate:"omitempty,oneof=open closed maintenance"`
}

func (r *roomReq) apply(rm *model.Room) {
	if r.Name != nil {
		rm.Name = strings.TrimSpace(*r.Name)
	}
	if r.Location != nil {
		rm.Location = strings.TrimSpace(*r.Location)
	}
	if r.Capacity != nil {
		rm.Capacity = *r.Capacity
	}
	if r.OpenTime != nil {
		rm.OpenTime = *r.OpenTime
	}
	if r.CloseTime != nil {
		rm.CloseTime = *r.CloseTime
	}
	if r.Description != nil {
		rm.Description = r.Description
	}
	if r.Status != nil {
		rm.Status = *r.Status
	}
}

func (h *CatalogHandler) ListRooms(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return okList(c, rooms)
}

func (h *CatalogHandler) GetRoom(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid room id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	rm, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, rm)
}

func (h *CatalogHandler) CreateRoom(c echo.Context) error {
	var req roomReq
	if msg, valid := bind(c, &req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	rm := &model.Room{OpenTime: "08:00", CloseTime: "22:00", Status: model.RoomOpen}
	req.apply(rm)
	if rm.Name == "" {
		return fail(c, http.StatusBadRequest, "name is required")
	}
	if rm.OpenTime >= rm.CloseTime {
		return fail(c, http.StatusBadRequest, "open_time must be before close_time")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Rooms.Create(ctx, rm); err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusCreated, rm)
}

func (h *CatalogHandler) UpdateRoom(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid room id")
	}
	var req roomReq
	if msg, valid := bind(c, &req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	rm, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	req.apply(rm)
	if rm.Name == "" {
		return fail(c, http.StatusBadRequest, "name is required")
	}
	if rm.OpenTime >= rm.CloseTime {
		return fail(c, http.StatusBadRequest, "open_time must be before close_time")
	}
	if err := h.Rooms.Update(ctx, rm); err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, rm)
}

// DeleteRoom removes the room and, through the foreign key, its seats.
func (h *CatalogHandler) DeleteRoom(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid room id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Rooms.Delete(ctx, id); err != nil {
		return respond(c, h.Log, err)
	}
	return okMessage(c, "room and its seats deleted")
}

type seatReq struct {
	RoomID     *uint64 `json:"room_id"`
	SeatNumber *string `json:"seat_number" validate:"omitempty,min=1,max=20"`
	Status     *string `json:"status" validate:"omitempty,oneof=available occupied maintenance"`
}

// ListSeats lists all seats, or one room's with ?room_id=.
func (h *CatalogHandler) ListSeats(c echo.Context) error {
	var roomID *uint64
	if raw := c.QueryParam("room_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid room_id")
		}
		roomID = &id
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	seats, err := h.Seats.List(ctx, roomID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return okList(c, seats)
}

func (h *CatalogHandler) GetSeat(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid seat id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	s, err := h.Seats.GetByID(ctx, id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, s)
}

func (h *CatalogHandler) CreateSeat(c echo.Context) error {
	var req seatReq
	if msg, valid := bind(c, &req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	if req.RoomID == nil || req.SeatNumber == nil {
		return fail(c, http.StatusBadRequest, "room_id and seat_number are required")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if _, err := h.Rooms.GetByID(ctx, *req.RoomID); err != nil {
		return respond(c, h.Log, err)
	}
	s := &model.Seat{RoomID: *req.RoomID, SeatNumber: strings.TrimSpace(*req.SeatNumber), Status: model.SeatAvailable}
	if req.Status != nil {
		s.Status = *req.Status
	}
	if err := h.Seats.Create(ctx, s); err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusCreated, s)
}

func (h *CatalogHandler) UpdateSeat(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid seat id")
	}
	var req seatReq
	if msg, valid := bind(c, &req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	s, err := h.Seats.GetByID(ctx, id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if req.RoomID != nil && *req.RoomID != s.RoomID {
		if _, err := h.Rooms.GetByID(ctx, *req.RoomID); err != nil {
			return respond(c, h.Log, err)
		}
		s.RoomID = *req.RoomID
	}
	if req.SeatNumber != nil {
		s.SeatNumber = strings.TrimSpace(*req.SeatNumber)
	}
	if req.Status != nil {
		s.Status = *req.Status
	}
	if err := h.Seats.Update(ctx, s); err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, s)
}

func (h *CatalogHandler) DeleteSeat(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid seat id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Seats.Delete(ctx, id); err != nil {
		return respond(c, h.Log, err)
	}
	return okMessage(c, "seat deleted")
}
