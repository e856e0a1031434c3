package main

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/uniraum/room-booking/internal/config"
	"github.com/uniraum/room-booking/internal/database"
	"github.com/uniraum/room-booking/internal/handler"
	"github.com/uniraum/room-booking/internal/logging"
	"github.com/uniraum/room-booking/internal/queue"
	"github.com/uniraum/room-booking/internal/repository"
	"github.com/uniraum/room-booking/internal/router"
	"github.com/uniraum/room-booking/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Env)
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(startupCtx, db); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	bookings := repository.NewBookingRepo(db)
	reports := repository.NewDamageReportRepo(db)

	if cfg.SeedData {
		if err := service.SeedInitialData(startupCtx, users, rooms, cfg.EmailDomain, cfg.BcryptCost, logger); err != nil {
			logger.Fatal("seed data", zap.Error(err))
		}
	}

	rdb := config.NewRedisClient() // nil when redis is unreachable

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))

	router.Register(e, router.Handlers{
		Health:        handler.NewHealth(db),
		Auth:          handler.NewAuthHandler(cfg, users, tokens),
		Users:         handler.NewUserHandler(cfg, users, tokens),
		Rooms:         handler.NewRoomHandler(rooms, bookings),
		Bookings:      handler.NewBookingHandler(rooms, bookings, users, logger),
		AdminBookings: handler.NewAdminBookingHandler(bookings),
		Reports:       handler.NewDamageReportHandler(rooms, reports),
	}, cfg, rdb)

	// Background consumer for booking.created events; it reconnects on
	// its own and never takes the API down.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			logger.Warn("booking consumer stopped", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
