package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/study-room-reservation/internal/database"
)

// Health reports that the process is serving.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "status": "ok"})
}

// Probe reports the storage connection state.
type Probe interface {
	State() database.State
	Ping(ctx context.Context) error
}

// Ready answers 200 only while the database is reachable.
func Ready(p Probe) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{
				"success":  false,
				"database": string(p.State()),
			})
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true, "database": string(p.State())})
	}
}
