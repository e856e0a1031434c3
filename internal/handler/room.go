package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/uniraum/room-booking/internal/repository"
	"github.com/uniraum/room-booking/internal/schedule"
)

// RoomHandler serves room listing, availability resolution and the
// admin room CRUD.
type RoomHandler struct {
	Rooms    *repository.RoomRepo
	Bookings *repository.BookingRepo
}

func NewRoomHandler(r *repository.RoomRepo, b *repository.BookingRepo) *RoomHandler {
	return &RoomHandler{Rooms: r, Bookings: b}
}

type roomResp struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Building     string `json:"building"`
	Floor        int    `json:"floor"`
	Capacity     int    `json:"capacity"`
	Type         string `json:"type"`
	HasComputers bool   `json:"hasComputers"`
	HasProjector bool   `json:"hasProjector"`
	Description  string `json:"description,omitempty"`
	LastUsedAt   string `json:"lastUsedAt,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

func toRoomResp(r *repository.Room) roomResp {
	out := roomResp{
		ID:           r.ID,
		Name:         r.Name,
		Building:     r.Building,
		Floor:        r.Floor,
		Capacity:     r.Capacity,
		Type:         r.Type,
		HasComputers: r.HasComputers,
		HasProjector: r.HasProjector,
		Description:  r.Description.String,
		CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if r.LastUsedAt.Valid {
		out.LastUsedAt = r.LastUsedAt.Time.UTC().Format(time.RFC3339)
	}
	return out
}

// List returns every room.
func (h *RoomHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]roomResp, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toRoomResp(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one room by ID.
func (h *RoomHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toRoomResp(room))
}

// Available resolves the rooms free for the requested window, after
// applying the optional attribute filters.  Query parameters:
// startTime, endTime (required), capacity, type, building,
// hasComputers, hasProjector.
func (h *RoomHandler) Available(c echo.Context) error {
	startStr := c.QueryParam("startTime")
	endStr := c.QueryParam("endTime")
	if startStr == "" || endStr == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "startTime and endTime are required"})
	}
	window, err := schedule.ParseInterval(startStr, endStr)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time range"})
	}

	filter, err := filterFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	confirmed, err := h.Bookings.ConfirmedRoomBookings(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	byID := make(map[string]*repository.Room, len(rooms))
	candidates := make([]schedule.Room, 0, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
		candidates = append(candidates, schedule.Room{
			ID:           r.ID,
			Capacity:     r.Capacity,
			Type:         r.Type,
			Building:     r.Building,
			HasComputers: r.HasComputers,
			HasProjector: r.HasProjector,
		})
	}

	free := schedule.AvailableRooms(candidates, confirmed, window, filter)
	out := make([]roomResp, 0, len(free))
	for _, f := range free {
		if r, ok := byID[f.ID]; ok {
			out = append(out, toRoomResp(r))
		}
	}
	return c.JSON(http.StatusOK, out)
}

func filterFromQuery(c echo.Context) (schedule.RoomFilter, error) {
	var f schedule.RoomFilter
	if v := c.QueryParam("capacity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, errors.New("capacity must be a non-negative integer")
		}
		f.MinCapacity = &n
	}
	if v := c.QueryParam("type"); v != "" {
		f.Type = &v
	}
	if v := c.QueryParam("building"); v != "" {
		f.Building = &v
	}
	if v := c.QueryParam("hasComputers"); v != "" {
		b := v == "true"
		f.HasComputers = &b
	}
	if v := c.QueryParam("hasProjector"); v != "" {
		b := v == "true"
		f.HasProjector = &b
	}
	return f, nil
}

type roomBookingResp struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Purpose   string `json:"purpose"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// RoomBookings lists the confirmed bookings of one room, optionally
// restricted to a closed date range via startDate/endDate.
func (h *RoomHandler) RoomBookings(c echo.Context) error {
	roomID := c.Param("id")
	var from, to time.Time
	if s, e := c.QueryParam("startDate"), c.QueryParam("endDate"); s != "" && e != "" {
		win, err := schedule.ParseInterval(s, e)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time range"})
		}
		from, to = win.Start, win.End
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Rooms.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	bookings, err := h.Bookings.ConfirmedByRoom(ctx, roomID, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]roomBookingResp, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, roomBookingResp{
			ID:        b.ID,
			UserID:    b.UserID,
			Purpose:   b.Purpose,
			StartTime: b.StartTime.UTC().Format(time.RFC3339),
			EndTime:   b.EndTime.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// ----- admin room CRUD -----

type createRoomReq struct {
	Name         string  `json:"name"`
	Building     string  `json:"building"`
	Floor        int     `json:"floor"`
	Capacity     int     `json:"capacity"`
	Type         string  `json:"type"`
	HasComputers bool    `json:"hasComputers"`
	HasProjector bool    `json:"hasProjector"`
	Description  *string `json:"description"`
}

func validRoomType(t string) bool {
	switch t {
	case "lecture", "lab", "meeting":
		return true
	}
	return false
}

// Create adds a room (admin only).
func (h *RoomHandler) Create(c echo.Context) error {
	var req createRoomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Building = strings.TrimSpace(req.Building)
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	if req.Name == "" || req.Building == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and building required"})
	}
	if req.Capacity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}
	if !validRoomType(req.Type) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be lecture, lab or meeting"})
	}

	room := &repository.Room{
		Name:         req.Name,
		Building:     req.Building,
		Floor:        req.Floor,
		Capacity:     req.Capacity,
		Type:         req.Type,
		HasComputers: req.HasComputers,
		HasProjector: req.HasProjector,
	}
	if req.Description != nil {
		room.Description = sql.NullString{String: *req.Description, Valid: true}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Rooms.Create(ctx, room); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room failed"})
	}
	return c.JSON(http.StatusCreated, toRoomResp(room))
}

type updateRoomReq struct {
	Name         *string `json:"name"`
	Building     *string `json:"building"`
	Floor        *int    `json:"floor"`
	Capacity     *int    `json:"capacity"`
	Type         *string `json:"type"`
	HasComputers *bool   `json:"hasComputers"`
	HasProjector *bool   `json:"hasProjector"`
	Description  *string `json:"description"`
}

// Update applies a partial room update (admin only).
func (h *RoomHandler) Update(c echo.Context) error {
	id := c.Param("id")
	var req updateRoomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Capacity != nil && *req.Capacity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}
	if req.Type != nil {
		t := strings.ToLower(strings.TrimSpace(*req.Type))
		if !validRoomType(t) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be lecture, lab or meeting"})
		}
		req.Type = &t
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Rooms.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	patch := repository.RoomPatch{
		Name:         req.Name,
		Building:     req.Building,
		Floor:        req.Floor,
		Capacity:     req.Capacity,
		Type:         req.Type,
		HasComputers: req.HasComputers,
		HasProjector: req.HasProjector,
		Description:  req.Description,
	}
	if err := h.Rooms.Update(ctx, id, patch); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toRoomResp(room))
}

// Delete removes a room (admin only).  Rooms with any booking, past or
// future, cannot be deleted.
func (h *RoomHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	err := h.Rooms.Delete(ctx, c.Param("id"))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "room deleted"})
	case errors.Is(err, repository.ErrRoomHasBookings):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room has existing bookings"})
	case errors.Is(err, repository.ErrRoomNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
}
