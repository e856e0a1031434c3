// Package router wires handlers, auth guards and the Redis-backed
// middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/uniraum/room-booking/internal/config"
	"github.com/uniraum/room-booking/internal/handler"
	"github.com/uniraum/room-booking/internal/middleware"
)

// Handlers bundles every handler the API needs.
type Handlers struct {
	Health        *handler.Health
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Rooms         *handler.RoomHandler
	Bookings      *handler.BookingHandler
	AdminBookings *handler.AdminBookingHandler
	Reports       *handler.DamageReportHandler
}

// Register mounts all routes.  The rate limiter wraps the whole API;
// the response cache covers only the room listing GETs.  Both become
// pass-throughs when rdb is nil.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e.GET("/healthz", h.Health.Check)

	// Session management, no token required.
	auth := e.Group("/api/auth")
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/signin", h.Auth.Signin)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	// Everything below requires a valid access token.
	api := e.Group("/api", middleware.JWTAuth(cfg.JWTSecret))

	user := api.Group("/user")
	user.GET("/profile", h.Users.Profile)
	user.PUT("/profile", h.Users.UpdateProfile)
	user.POST("/profile/picture", h.Users.UploadPicture)
	user.DELETE("/profile/picture", h.Users.DeletePicture)

	rooms := api.Group("/rooms")
	rooms.GET("", h.Rooms.List, cache)
	rooms.GET("/available", h.Rooms.Available, cache)
	rooms.GET("/:id", h.Rooms.Get, cache)
	rooms.GET("/:id/bookings", h.Rooms.RoomBookings)

	bookings := api.Group("/bookings")
	bookings.POST("", h.Bookings.Create)
	bookings.GET("/user", h.Bookings.ListMine)
	bookings.PUT("/:id/cancel", h.Bookings.Cancel)

	api.POST("/damage-reports", h.Reports.Create)

	// Admin-only surface.
	adminOnly := middleware.RequireRole("admin")

	rooms.POST("", h.Rooms.Create, adminOnly)
	rooms.PUT("/:id", h.Rooms.Update, adminOnly)
	rooms.DELETE("/:id", h.Rooms.Delete, adminOnly)

	users := api.Group("/users", adminOnly)
	users.GET("", h.Users.ListUsers)
	users.POST("", h.Users.CreateUser)
	users.GET("/:id", h.Users.GetUser)
	users.PUT("/:id", h.Users.UpdateUser)
	users.DELETE("/:id", h.Users.DeleteUser)
	users.PUT("/:id/role", h.Users.UpdateRole)

	admin := api.Group("/admin", adminOnly)
	admin.GET("/bookings", h.AdminBookings.ListAll)
	admin.PUT("/bookings/:id", h.AdminBookings.Update)
	admin.DELETE("/bookings/:id", h.AdminBookings.Delete)
	admin.GET("/damage-reports", h.Reports.ListAll)
	admin.PUT("/damage-reports/:id/status", h.Reports.UpdateStatus)
	admin.DELETE("/damage-reports/:id", h.Reports.Delete)
}
