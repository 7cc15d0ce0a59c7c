package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/repository"
)

// ViolationStore persists violations.
type ViolationStore interface {
	Create(ctx context.Context, v *model.Violation) error
	GetByID(ctx context.Context, id uint64) (*model.Violation, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Violation, error)
	List(ctx context.Context, filter repository.ViolationFilter, page repository.Page) ([]model.Violation, int, error)
	Update(ctx context.Context, v *model.Violation) error
	Delete(ctx context.Context, id uint64) error
}

// ReservationLookup checks that a reservation exists.
type ReservationLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
}

type ViolationHandler struct {
	Violations   ViolationStore
	Users        UserStore
	Reservations ReservationLookup
	Log          *zap.Logger
	Now          func() time.Time
}

func NewViolationHandler(v ViolationStore, u UserStore, r ReservationLookup, log *zap.Logger) *ViolationHandler {
	return &ViolationHandler{Violations: v, Users: u, Reservations: r, Log: log, Now: time.Now}
}

type createViolationReq struct {
	UserID              uint64 `json:"user_id" validate:"required"`
	ReservationID       uint64 `json:"reservation_id" validate:"required"`
	Type                string `json:"type" validate:"required,oneof=late_check_in early_check_out no_show occupy_overtime other"`
	Description         string `json:"description" validate:"omitempty,max=200"`
	Penalty             string `json:"penalty" validate:"omitempty,oneof=warning suspend ban none"`
	PenaltyDurationDays uint32 `json:"penalty_duration_days"`
}

type updateViolationReq struct {
	Type                *string `json:"type" validate:"omitempty,oneof=late_check_in early_check_out no_show occupy_overtime other"`
	Description         *string `json:"description" validate:"omitempty,max=200"`
	Penalty             *string `json:"penalty" validate:"omitempty,oneof=warning suspend ban none"`
	PenaltyDurationDays *uint32 `json:"penalty_duration_days"`
	IsResolved          *bool   `json:"is_resolved"`
}

// Create records a violation against an existing user and reservation.
func (h *ViolationHandler) Create(c echo.Context) error {
	var req createViolationReq
	if msg, valid := bind(c, &req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if _, err := h.Users.GetByID(ctx, req.UserID); err != nil {
		return respond(c, h.Log, err)
	}
	if _, err := h.Reservations.GetByID(ctx, req.ReservationID); err != nil {
		return respond(c, h.Log, err)
	}
	v := &model.Violation{
		UserID:              req.UserID,
		ReservationID:       req.ReservationID,
		Type:                req.Type,
		Penalty:             req.Penalty,
		PenaltyDurationDays: req.PenaltyDurationDays,
	}
	if d := strings.TrimSpace(req.Description); d != "" {
		v.Description = &d
	}
	if err := h.Violations.Create(ctx, v); err != nil {
		return respond(c, h.Log, err)
	}
	h.Log.Info("violation recorded", zap.Uint64("violation_id", v.ID), zap.Uint64("user_id", v.UserID),
		zap.String("type", v.Type))
	return ok(c, http.StatusCreated, v)
}

func (h *ViolationHandler) Mine(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	items, err := h.Violations.ListByUser(ctx, caller(c).UserID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return okList(c, items)
}

// List pages violations for admins, filtered by ?type=, ?penalty= and
// ?is_resolved=.
func (h *ViolationHandler) List(c echo.Context) error {
	filter := repository.ViolationFilter{Type: c.QueryParam("type"), Penalty: c.QueryParam("penalty")}
	if raw := c.QueryParam("is_resolved"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fail(c, http.StatusBadRequest, "is_resolved must be true or false")
		}
		filter.IsResolved = &b
	}
	page := queryPage(c)
	ctx, cancel := withTimeout(c)
	defer cancel()
	items, total, err := h.Violations.List(ctx, filter, page)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return okPage(c, items, total, page)
}

func (h *ViolationHandler) Get(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid violation id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	v, err := h.Violations.GetByID(ctx, id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if cl := caller(c); !cl.IsAdmin() && cl.UserID != v.UserID {
		return fail(c, http.StatusForbidden, "not authorized to access this resource")
	}
	return ok(c, http.StatusOK, v)
}

// Update edits a violation. resolved_at follows is_resolved.
func (h *ViolationHandler) Update(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid violation id")
	}
	var req updateViolationReq
	if msg, valid := bind(c, &req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	v, err := h.Violations.GetByID(ctx, id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if req.Type != nil {
		v.Type = *req.Type
	}
	if req.Description != nil {
		v.Description = req.Description
	}
	if req.Penalty != nil {
		v.Penalty = *req.Penalty
	}
	if req.PenaltyDurationDays != nil {
		v.PenaltyDurationDays = *req.PenaltyDurationDays
	}
	if req.IsResolved != nil {
		switch {
		case *req.IsResolved && !v.IsResolved:
			now := h.Now().UTC()
			v.ResolvedAt = &now
		case !*req.IsResolved:
			v.ResolvedAt = nil
		}
		v.IsResolved = *req.IsResolved
	}
	if err := h.Violations.Update(ctx, v); err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, v)
}

func (h *ViolationHandler) Delete(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid violation id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Violations.Delete(ctx, id); err != nil {
		return respond(c, h.Log, err)
	}
	return okMessage(c, "violation deleted")
}
