// Package handler holds the echo handlers. Every handler converts its
// errors to the {success:false, message} envelope at its own boundary.
package handler

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/middleware"
	"github.com/iliyamo/study-room-reservation/internal/repository"
	"github.com/iliyamo/study-room-reservation/internal/service"
)

// requestTimeout bounds the storage work of one request.
const requestTimeout = 5 * time.Second

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// Validator adapts validator/v10 to echo.Validator.
type Validator struct{ v *validator.Validate }

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != 5 {
			return false
		}
		_, err := time.Parse("15:04", s)
		return err == nil
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string { return jsonName(f.Tag.Get("json")) })
	return &Validator{v: v}
}

func (cv *Validator) Validate(i any) error { return cv.v.Struct(i) }

// bind decodes and validates the body into dst. The returned message is
// safe to send to the client.
func bind(c echo.Context, dst any) (string, bool) {
	if err := c.Bind(dst); err != nil {
		return "invalid request body", false
	}
	if err := c.Validate(dst); err != nil {
		return validationMessage(err), false
	}
	return "", true
}

func validationMessage(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return "invalid request"
	}
	fe := ves[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "hhmm":
		return fe.Field() + " must be formatted HH:MM"
	case "datetime":
		return fe.Field() + " must be formatted YYYY-MM-DD"
	}
	return fe.Field() + " is invalid"
}

func jsonName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	return name
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func okList[T any](c echo.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(items), "data": items})
}

func okPage[T any](c echo.Context, items []T, total int, page repository.Page) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"count":   len(items),
		"total":   total,
		"page":    page.Page,
		"pages":   page.Pages(total),
		"data":    items,
	})
}

func okMessage(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": msg})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "message": msg})
}

var notFound = []error{
	repository.ErrUserNotFound,
	repository.ErrRoomNotFound,
	repository.ErrSeatNotFound,
	repository.ErrReservationNotFound,
	repository.ErrCheckInNotFound,
	repository.ErrFeedbackNotFound,
	repository.ErrViolationNotFound,
}

var badRequest = []error{
	repository.ErrStudentIDExists,
	repository.ErrRoomNameExists,
	repository.ErrSeatNumberExists,
}

// respond maps err to a status. Unclassified errors are logged and
// reported as a generic 500.
func respond(c echo.Context, log *zap.Logger, err error) error {
	switch service.KindOf(err) {
	case service.KindValidation, service.KindConflict:
		return fail(c, http.StatusBadRequest, err.Error())
	case service.KindForbidden:
		return fail(c, http.StatusForbidden, err.Error())
	case service.KindNotFound:
		return fail(c, http.StatusNotFound, err.Error())
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			return fail(c, http.StatusNotFound, target.Error())
		}
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return fail(c, http.StatusBadRequest, target.Error())
		}
	}
	log.Error("request failed",
		zap.String("request_id", middleware.RequestID(c)),
		zap.String("route", c.Path()),
		zap.Error(err))
	return fail(c, http.StatusInternalServerError, "internal server error")
}

func caller(c echo.Context) service.Caller {
	id, _ := middleware.UserID(c)
	return service.Caller{UserID: id, Role: middleware.Role(c)}
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func queryPage(c echo.Context) repository.Page {
	p, _ := strconv.Atoi(c.QueryParam("page"))
	l, _ := strconv.Atoi(c.QueryParam("limit"))
	return repository.Page{Page: p, Limit: l}.Normalize()
}
