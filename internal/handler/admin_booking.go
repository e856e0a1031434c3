package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/uniraum/room-booking/internal/repository"
	"github.com/uniraum/room-booking/internal/schedule"
)

// AdminBookingHandler serves the admin-only booking surface.
type AdminBookingHandler struct {
	Bookings *repository.BookingRepo
}

func NewAdminBookingHandler(b *repository.BookingRepo) *AdminBookingHandler {
	return &AdminBookingHandler{Bookings: b}
}

// ListAll returns every booking, enriched with room fields and the
// owner's username, newest first.
func (h *AdminBookingHandler) ListAll(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	bookings, err := h.Bookings.ListAllEnriched(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, bookings)
}

type adminUpdateBookingReq struct {
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Purpose   *string `json:"purpose"`
	Status    *string `json:"status"`
}

// Update applies a partial admin edit.  Interval ordering and conflict
// freedom are deliberately not re-checked here; admins can move a
// booking anywhere, including on top of another one.
func (h *AdminBookingHandler) Update(c echo.Context) error {
	id := c.Param("id")
	var req adminUpdateBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.StartTime == nil && req.EndTime == nil && req.Purpose == nil && req.Status == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	patch := repository.BookingPatch{Purpose: req.Purpose}
	if req.StartTime != nil {
		t, err := schedule.ParseTimestamp(*req.StartTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid startTime"})
		}
		patch.StartTime = &t
	}
	if req.EndTime != nil {
		t, err := schedule.ParseTimestamp(*req.EndTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid endTime"})
		}
		patch.EndTime = &t
	}
	if req.Status != nil {
		s := strings.ToLower(strings.TrimSpace(*req.Status))
		if s != repository.BookingStatusConfirmed && s != repository.BookingStatusCancelled {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be confirmed or cancelled"})
		}
		patch.Status = &s
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Bookings.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Bookings.Update(ctx, id, patch); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	booking, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toBookingResp(booking))
}

// Delete hard-deletes a booking.
func (h *AdminBookingHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Bookings.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "booking deleted"})
}
