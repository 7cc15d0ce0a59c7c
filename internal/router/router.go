// Package router registers the HTTP routes.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/config"
	"github.com/iliyamo/study-room-reservation/internal/handler"
	"github.com/iliyamo/study-room-reservation/internal/middleware"
	"github.com/iliyamo/study-room-reservation/internal/model"
)

// Handlers are the route targets.
type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Catalog      *handler.CatalogHandler
	Reservations *handler.ReservationHandler
	CheckIns     *handler.CheckInHandler
	Feedbacks    *handler.FeedbackHandler
	Violations   *handler.ViolationHandler
	Statistics   *handler.StatisticsHandler
}

// Options carry what the middleware stack needs.
type Options struct {
	JWTSecret string
	UserAuth  middleware.UserLookup
	Probe     handler.Probe
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Log       *zap.Logger
}

// RegisterRoutes registers the operational endpoints.
func RegisterRoutes(e *echo.Echo, o Options) {
	e.GET("/health", handler.Health)
	e.GET("/ready", handler.Ready(o.Probe))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAPI registers the /v1 surface. Catalogue reads are public and
// cached; every other route needs a valid access token and admin
// routes additionally need the admin role.
func RegisterAPI(e *echo.Echo, h Handlers, o Options) {
	v1 := e.Group("/v1",
		middleware.NewTokenBucket(o.RateLimit, o.Redis, o.Log),
		middleware.InvalidateCache(o.Cache, o.Redis))

	auth := v1.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	cached := middleware.NewRedisCache(o.Cache, o.Redis)
	v1.GET("/rooms", h.Catalog.ListRooms, cached)
	v1.GET("/rooms/:id", h.Catalog.GetRoom, cached)
	v1.GET("/seats", h.Catalog.ListSeats, cached)
	v1.GET("/seats/:id", h.Catalog.GetSeat, cached)

	jwt := middleware.JWTAuth(o.JWTSecret, o.UserAuth, o.Log)
	admin := middleware.RequireRole(model.RoleAdmin)
	p := v1.Group("", jwt)

	p.GET("/me", h.Auth.Me)
	p.PUT("/me", h.Auth.UpdateMe)

	p.POST("/reservations", h.Reservations.Create)
	p.GET("/reservations", h.Reservations.List)
	p.GET("/reservations/:id", h.Reservations.Get)
	p.PUT("/reservations/:id", h.Reservations.Update)
	p.POST("/reservations/:id/cancel", h.Reservations.Cancel)
	p.POST("/reservations/:id/confirm", h.Reservations.Confirm, admin)
	p.DELETE("/reservations/:id", h.Reservations.Delete, admin)

	p.GET("/checkins/qrcode/:reservationId", h.CheckIns.QRCode)
	p.POST("/checkins", h.CheckIns.CheckIn)
	p.POST("/checkins/verify", h.CheckIns.VerifyQR)
	p.POST("/checkins/checkout", h.CheckIns.CheckOut)
	p.GET("/checkins/user", h.CheckIns.Mine)

	p.POST("/feedbacks", h.Feedbacks.Create)
	p.GET("/feedbacks/user", h.Feedbacks.Mine)
	p.GET("/feedbacks/:id", h.Feedbacks.Get)

	p.GET("/violations/user", h.Violations.Mine)
	p.GET("/violations/:id", h.Violations.Get)

	p.GET("/statistics/user", h.Statistics.Me)

	a := p.Group("", admin)
	a.POST("/rooms", h.Catalog.CreateRoom)
	a.PUT("/rooms/:id", h.Catalog.UpdateRoom)
	a.DELETE("/rooms/:id", h.Catalog.DeleteRoom)
	a.POST("/seats", h.Catalog.CreateSeat)
	a.PUT("/seats/:id", h.Catalog.UpdateSeat)
	a.DELETE("/seats/:id", h.Catalog.DeleteSeat)

	a.GET("/feedbacks", h.Feedbacks.List)
	a.PUT("/feedbacks/:id", h.Feedbacks.Update)
	a.DELETE("/feedbacks/:id", h.Feedbacks.Delete)

	a.POST("/violations", h.Violations.Create)
	a.GET("/violations", h.Violations.List)
	a.PUT("/violations/:id", h.Violations.Update)
	a.DELETE("/violations/:id", h.Violations.Delete)

	a.GET("/statistics/system", h.Statistics.System)
	a.GET("/statistics/users/:id", h.Statistics.User)

	a.GET("/users", h.Users.List)
	a.POST("/users", h.Users.Create)
	a.GET("/users/:id", h.Users.Get)
	a.PUT("/users/:id", h.Users.Update)
	a.DELETE("/users/:id", h.Users.Delete)
}
