// Package handler contains the HTTP endpoints of the room booking API.
// Handlers bind request bodies, delegate to the repositories and the
// schedule package, and translate repository sentinel errors into HTTP
// status codes.
package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

// dbTimeout bounds every repository call made from a handler.
const dbTimeout = 5 * time.Second

// reqCtx derives a bounded context from the incoming request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// currentUser returns the authenticated user's ID and role as stored by
// the JWT middleware.
func currentUser(c echo.Context) (id, role string) {
	id, _ = c.Get("user_id").(string)
	role, _ = c.Get("role").(string)
	return id, role
}
