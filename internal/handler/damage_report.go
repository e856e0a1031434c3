package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/uniraum/room-booking/internal/repository"
)

// DamageReportHandler serves damage report submission and the admin
// review surface.
type DamageReportHandler struct {
	Rooms   *repository.RoomRepo
	Reports *repository.DamageReportRepo
}

func NewDamageReportHandler(r *repository.RoomRepo, d *repository.DamageReportRepo) *DamageReportHandler {
	return &DamageReportHandler{Rooms: r, Reports: d}
}

type createReportReq struct {
	RoomID      string  `json:"roomId"`
	Description string  `json:"description"`
	ImageURL    *string `json:"imageUrl"`
}

type reportResp struct {
	ID          string `json:"id"`
	RoomID      string `json:"roomId"`
	UserID      string `json:"userId"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
}

// Create files a damage report against an existing room.  New reports
// start in the pending state.
func (h *DamageReportHandler) Create(c echo.Context) error {
	uid, _ := currentUser(c)

	var req createReportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.RoomID = strings.TrimSpace(req.RoomID)
	req.Description = strings.TrimSpace(req.Description)
	if req.RoomID == "" || req.Description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "roomId and description required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Rooms.GetByID(ctx, req.RoomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	report := &repository.DamageReport{
		RoomID:      req.RoomID,
		UserID:      uid,
		Description: req.Description,
	}
	if req.ImageURL != nil && strings.TrimSpace(*req.ImageURL) != "" {
		report.ImageURL = sql.NullString{String: strings.TrimSpace(*req.ImageURL), Valid: true}
	}
	if err := h.Reports.Create(ctx, report); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create report failed"})
	}

	return c.JSON(http.StatusCreated, reportResp{
		ID:          report.ID,
		RoomID:      report.RoomID,
		UserID:      report.UserID,
		Description: report.Description,
		ImageURL:    report.ImageURL.String,
		Status:      report.Status,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListAll returns every report enriched with room and reporter display
// fields, newest first (admin only).
func (h *DamageReportHandler) ListAll(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	reports, err := h.Reports.ListEnriched(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, reports)
}

type updateReportStatusReq struct {
	Status string `json:"status"`
}

// UpdateStatus moves a report between pending, resolved and rejected
// (admin only).
func (h *DamageReportHandler) UpdateStatus(c echo.Context) error {
	id := c.Param("id")
	var req updateReportStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	switch status {
	case repository.ReportStatusPending, repository.ReportStatusResolved, repository.ReportStatusRejected:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be pending, resolved or rejected"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Reports.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "damage report not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}

// Delete removes a report (admin only).
func (h *DamageReportHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Reports.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "damage report not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "damage report deleted"})
}
