package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/service"
)

type StatisticsHandler struct {
	Svc *service.StatisticsService
	Log *zap.Logger
}

func NewStatisticsHandler(svc *service.StatisticsService, log *zap.Logger) *StatisticsHandler {
	return &StatisticsHandler{Svc: svc, Log: log}
}

// Me returns the caller's study statistics.
func (h *StatisticsHandler) Me(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	st, err := h.Svc.ForUser(ctx, caller(c).UserID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, st)
}

// User returns one user's study statistics. Admin only.
func (h *StatisticsHandler) User(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid user id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	st, err := h.Svc.ForUser(ctx, id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, st)
}

func (h *StatisticsHandler) System(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	st, err := h.Svc.System(ctx)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, st)
}
