package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/service"
)

// ReservationHandler exposes the reservation lifecycle.
type ReservationHandler struct {
	Svc *service.ReservationService
	Log *zap.Logger
}

func NewReservationHandler(svc *service.ReservationService, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{Svc: svc, Log: log}
}

type createReservationReq struct {
	SeatID    uint64 `json:"seat_id" validate:"required"`
	RoomID    uint64 `json:"room_id"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
}

type updateReservationReq struct {
	Date      *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime *string `json:"start_time" validate:"omitempty,hhmm"`
	EndTime   *string `json:"end_time" validate:"omitempty,hhmm"`
	Status    *string `json:"status"`
}

func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if msg, valid := bind(c, &req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	r, err := h.Svc.Create(ctx, caller(c), service.CreateInput{
		SeatID:    req.SeatID,
		RoomID:    req.RoomID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusCreated, r)
}

// List returns the caller's reservations; admins see all unless
// ?mine=true.
func (h *ReservationHandler) List(c echo.Context) error {
	mine, _ := strconv.ParseBool(c.QueryParam("mine"))
	ctx, cancel := withTimeout(c)
	defer cancel()
	items, err := h.Svc.List(ctx, caller(c), mine)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return okList(c, items)
}

func (h *ReservationHandler) Get(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid reservation id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	d, err := h.Svc.Get(ctx, caller(c), id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, d)
}

func (h *ReservationHandler) Update(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid reservation id")
	}
	var req updateReservationReq
	if msg, valid := bind(c, &req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	r, err := h.Svc.Update(ctx, caller(c), id, service.UpdateInput{
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    req.Status,
	})
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, r)
}

func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid reservation id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	r, err := h.Svc.Cancel(ctx, caller(c), id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, r)
}

func (h *ReservationHandler) Confirm(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid reservation id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	r, err := h.Svc.Confirm(ctx, caller(c), id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, r)
}

func (h *ReservationHandler) Delete(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid reservation id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Svc.Delete(ctx, caller(c), id); err != nil {
		return respond(c, h.Log, err)
	}
	return okMessage(c, "reservation deleted")
}
