package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/config"
	"github.com/iliyamo/study-room-reservation/internal/database"
	"github.com/iliyamo/study-room-reservation/internal/handler"
	"github.com/iliyamo/study-room-reservation/internal/logger"
	"github.com/iliyamo/study-room-reservation/internal/middleware"
	"github.com/iliyamo/study-room-reservation/internal/queue"
	"github.com/iliyamo/study-room-reservation/internal/repository"
	"github.com/iliyamo/study-room-reservation/internal/router"
	"github.com/iliyamo/study-room-reservation/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional
	cfg := config.Load()

	logg, err := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.Service)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	logg = logg.With(zap.String("env", cfg.Env))
	defer func() { _ = logg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	mgr := database.NewManager(func(ctx context.Context) (*sql.DB, error) {
		return database.Open(ctx, dsn)
	}, cfg.DBConnectAttempts, cfg.DBConnectBackoff, logg)
	db, err := mgr.Connect(ctx)
	if err != nil {
		logg.Fatal("database connect failed", zap.Error(err))
	}
	defer func() { _ = mgr.Close() }()

	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logg.Fatal("schema migration failed", zap.Error(err))
		}
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	seats := repository.NewSeatRepo(db)
	reservations := repository.NewReservationRepo(db)
	checkIns := repository.NewCheckInRepo(db)
	feedbacks := repository.NewFeedbackRepo(db)
	violations := repository.NewViolationRepo(db)
	stats := repository.NewStatisticsRepo(db)

	rdb := config.NewRedisClient()
	var replay service.ReplayGuard
	if rdb != nil {
		replay = repository.NewQRReplayRepo(rdb, "")
		defer func() { _ = rdb.Close() }()
	} else {
		logg.Warn("redis unavailable: rate limiting, caching and QR replay guard disabled")
	}

	var events service.EventPublisher = queue.Nop{}
	if cfg.RabbitURL != "" {
		pub := queue.NewPublisher(cfg.RabbitURL, config.NewCircuitBreaker("rabbitmq", 30*time.Second, logg), logg)
		defer pub.Close()
		events = pub

		consumer := &queue.Consumer{URL: cfg.RabbitURL, LogDir: cfg.EventLogDir, Log: logg}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error("event consumer stopped", zap.Error(err))
			}
		}()
	}

	deps := service.Deps{
		Store:    repository.NewStore(db),
		Events:   events,
		Log:      logg,
		Now:      time.Now,
		Location: cfg.Location,
	}
	reservationSvc := service.NewReservationService(deps, reservations, cfg.DefaultReservationStatus)
	checkInSvc := service.NewCheckInService(deps, checkIns, service.NewQRIssuer(cfg.QRSecret, cfg.QRTTL), replay)
	statsSvc := service.NewStatisticsService(stats, users, time.Now, cfg.Location)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(middleware.RequestLogger(logg))

	opts := router.Options{
		JWTSecret: cfg.JWTSecret,
		UserAuth:  users,
		Probe:     mgr,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Log:       logg,
	}
	router.RegisterRoutes(e, opts)
	router.RegisterAPI(e, router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens, logg),
		Users:        handler.NewUserHandler(users, cfg.BcryptCost, logg),
		Catalog:      handler.NewCatalogHandler(rooms, seats, logg),
		Reservations: handler.NewReservationHandler(reservationSvc, logg),
		CheckIns:     handler.NewCheckInHandler(checkInSvc, logg),
		Feedbacks:    handler.NewFeedbackHandler(feedbacks, logg),
		Violations:   handler.NewViolationHandler(violations, users, reservations, logg),
		Statistics:   handler.NewStatisticsHandler(statsSvc, logg),
	}, opts)

	addr := ":" + cfg.Port
	go func() {
		logg.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logg.Error("graceful shutdown failed", zap.Error(err))
	}
}
