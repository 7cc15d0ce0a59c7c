package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/service"
)

// CheckInHandler exposes check-in, QR verification and check-out.
type CheckInHandler struct {
	Svc *service.CheckInService
	Log *zap.Logger
}

func NewCheckInHandler(svc *service.CheckInService, log *zap.Logger) *CheckInHandler {
	return &CheckInHandler{Svc: svc, Log: log}
}

type checkInReq struct {
	ReservationID uint64 `json:"reservation_id" validate:"required"`
	QRCodeData    string `json:"qr_code_data"`
}

type verifyQRReq struct {
	QRCodeData string `json:"qr_code_data" validate:"required"`
}

type checkOutReq struct {
	CheckInID uint64 `json:"checkin_id" validate:"required"`
}

// QRCode issues a signed check-in token for a confirmed reservation.
func (h *CheckInHandler) QRCode(c echo.Context) error {
	id, valid := pathID(c, "reservationId")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid reservation id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	code, err := h.Svc.IssueQR(ctx, caller(c), id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, code)
}

// CheckIn checks in directly, or through a QR token when qr_code_data
// is present.
func (h *CheckInHandler) CheckIn(c echo.Context) error {
	var req checkInReq
	if msg, valid := bind(c, &req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if req.QRCodeData != "" {
		ci, err := h.Svc.VerifyQR(ctx, caller(c), req.QRCodeData, req.ReservationID)
		if err != nil {
			return respond(c, h.Log, err)
		}
		return ok(c, http.StatusCreated, ci)
	}
	ci, err := h.Svc.CheckIn(ctx, caller(c), req.ReservationID, "")
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusCreated, ci)
}

// VerifyQR checks in with a scanned token alone.
func (h *CheckInHandler) VerifyQR(c echo.Context) error {
	var req verifyQRReq
	if msg, valid := bind(c, &req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	ci, err := h.Svc.VerifyQR(ctx, caller(c), req.QRCodeData, 0)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusCreated, ci)
}

func (h *CheckInHandler) CheckOut(c echo.Context) error {
	var req checkOutReq
	if msg, valid := bind(c, &req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	ci, err := h.Svc.CheckOut(ctx, caller(c), req.CheckInID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, ci)
}

// Mine lists the caller's sessions.
func (h *CheckInHandler) Mine(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	items, err := h.Svc.ListMine(ctx, caller(c))
	if err != nil {
		return respond(c, h.Log, err)
	}
	return okList(c, items)
}
