package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/uniraum/room-booking/internal/queue"
	"github.com/uniraum/room-booking/internal/repository"
	"github.com/uniraum/room-booking/internal/schedule"
	"github.com/uniraum/room-booking/internal/service"
)

// BookingHandler serves the booking lifecycle endpoints.
type BookingHandler struct {
	Rooms    *repository.RoomRepo
	Bookings *repository.BookingRepo
	Users    *repository.UserRepo
	Log      *zap.Logger
}

func NewBookingHandler(r *repository.RoomRepo, b *repository.BookingRepo, u *repository.UserRepo, log *zap.Logger) *BookingHandler {
	return &BookingHandler{Rooms: r, Bookings: b, Users: u, Log: log}
}

type createBookingReq struct {
	RoomID                 string `json:"roomId"`
	StartTime              string `json:"startTime"`
	EndTime                string `json:"endTime"`
	Purpose                string `json:"purpose"`
	ResponsibilityAccepted bool   `json:"responsibilityAccepted"`
}

type bookingResp struct {
	ID                     string `json:"id"`
	RoomID                 string `json:"roomId"`
	UserID                 string `json:"userId"`
	StartTime              string `json:"startTime"`
	EndTime                string `json:"endTime"`
	Purpose                string `json:"purpose"`
	Status                 string `json:"status"`
	ResponsibilityAccepted bool   `json:"responsibilityAccepted"`
	CreatedAt              string `json:"createdAt"`
}

func toBookingResp(b *repository.Booking) bookingResp {
	return bookingResp{
		ID:                     b.ID,
		RoomID:                 b.RoomID,
		UserID:                 b.UserID,
		StartTime:              b.StartTime.UTC().Format(time.RFC3339),
		EndTime:                b.EndTime.UTC().Format(time.RFC3339),
		Purpose:                b.Purpose,
		Status:                 b.Status,
		ResponsibilityAccepted: b.ResponsibilityAccepted,
		CreatedAt:              b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Create books a room for the authenticated user.  The proposed window
// is checked against the user's own confirmed bookings only; two users
// may hold overlapping confirmed bookings for the same room.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, _ := currentUser(c)

	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.RoomID = strings.TrimSpace(req.RoomID)
	if req.RoomID == "" || req.StartTime == "" || req.EndTime == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "roomId, startTime and endTime required"})
	}
	if !req.ResponsibilityAccepted {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "responsibility must be accepted"})
	}
	window, err := schedule.ParseInterval(req.StartTime, req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time range"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	existing, err := h.Bookings.ConfirmedIntervalsByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if schedule.HasConflict(existing, window) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "you already have a booking in this time window"})
	}

	booking := &repository.Booking{
		RoomID:                 room.ID,
		UserID:                 uid,
		StartTime:              window.Start,
		EndTime:                window.End,
		Purpose:                strings.TrimSpace(req.Purpose),
		ResponsibilityAccepted: true,
	}
	if err := h.Bookings.Create(ctx, booking); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}

	// Best-effort side effects: the booking stands even when the
	// last-used stamp or the event publish fails.
	if err := h.Rooms.StampLastUsed(ctx, room.ID, uid, window.End); err != nil {
		h.Log.Warn("stamp last used failed", zap.String("room_id", room.ID), zap.Error(err))
	}
	h.publishCreated(booking, room)

	return c.JSON(http.StatusCreated, toBookingResp(booking))
}

// publishCreated emits the booking.created event in the background.
func (h *BookingHandler) publishCreated(b *repository.Booking, room *repository.Room) {
	username := ""
	if u, err := h.Users.GetByID(context.Background(), b.UserID); err == nil {
		username = u.Username
	}
	ev := queue.BookingCreatedEvent{
		BookingID: b.ID,
		UserID:    b.UserID,
		Username:  username,
		RoomID:    room.ID,
		RoomName:  room.Name,
		Building:  room.Building,
		Purpose:   b.Purpose,
		StartsAt:  b.StartTime.UTC().Format(time.RFC3339),
		EndsAt:    b.EndTime.UTC().Format(time.RFC3339),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = service.PublishBookingCreated(ctx, ev)
	}()
}

// ListMine returns all of the caller's bookings, any status, enriched
// with room display fields.
func (h *BookingHandler) ListMine(c echo.Context) error {
	uid, _ := currentUser(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	bookings, err := h.Bookings.ListByUserEnriched(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, bookings)
}

// Cancel sets a booking to cancelled.  Only the owner or an admin may
// cancel; cancelling an already-cancelled booking succeeds.
func (h *BookingHandler) Cancel(c echo.Context) error {
	uid, role := currentUser(c)
	id := c.Param("id")

	ctx, cancel := reqCtx(c)
	defer cancel()

	booking, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if booking.UserID != uid && role != "admin" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	}

	if err := h.Bookings.UpdateStatus(ctx, id, repository.BookingStatusCancelled); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	booking.Status = repository.BookingStatusCancelled
	return c.JSON(http.StatusOK, toBookingResp(booking))
}
