package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health reports liveness plus database reachability.
type Health struct {
	DB *sql.DB
}

func NewHealth(db *sql.DB) *Health { return &Health{DB: db} }

func (h *Health) Check(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	dbStatus := "up"
	if err := h.DB.PingContext(ctx); err != nil {
		dbStatus = "down"
	}
	status := http.StatusOK
	if dbStatus != "up" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, echo.Map{
		"status": "ok",
		"db":     dbStatus,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
