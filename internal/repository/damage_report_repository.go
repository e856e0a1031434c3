package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Damage report statuses.
const (
	ReportStatusPending  = "pending"
	ReportStatusResolved = "resolved"
	ReportStatusRejected = "rejected"
)

// DamageReport mirrors the 'damage_reports' table.
type DamageReport struct {
	ID          string
	RoomID      string
	UserID      string
	Description string
	ImageURL    sql.NullString
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ErrReportNotFound is returned when a damage report lookup fails.
var ErrReportNotFound = errors.New("damage report not found")

// DamageReportRepo provides persistence for damage reports.
type DamageReportRepo struct {
	db *sql.DB
}

// NewDamageReportRepo constructs a DamageReportRepo.
func NewDamageReportRepo(db *sql.DB) *DamageReportRepo {
	return &DamageReportRepo{db: db}
}

// Create inserts a new pending report and returns its generated ID.
func (r *DamageReportRepo) Create(ctx context.Context, rep *DamageReport) error {
	rep.ID = uuid.NewString()
	rep.Status = ReportStatusPending
	const q = `INSERT INTO damage_reports (id, room_id, user_id, description, image_url, status)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, rep.ID, rep.RoomID, rep.UserID,
		rep.Description, rep.ImageURL, rep.Status)
	return err
}

// exists reports whether a report row is present.
func (r *DamageReportRepo) exists(ctx context.Context, id string) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM damage_reports WHERE id=?", id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return ErrReportNotFound
	}
	return nil
}

// UpdateStatus changes a report's status, returning ErrReportNotFound
// when the report is absent.
func (r *DamageReportRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if err := r.exists(ctx, id); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		"UPDATE damage_reports SET status=? WHERE id=?", status, id)
	return err
}

// Delete removes a report permanently.
func (r *DamageReportRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM damage_reports WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrReportNotFound)
}

// EnrichedReport joins a report with room and reporter display fields,
// degrading to placeholders when either record has been deleted.
type EnrichedReport struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"roomId"`
	RoomName    string    `json:"roomName"`
	Building    string    `json:"building"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	UserEmail   string    `json:"userEmail"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ListEnriched returns all reports with room and reporter details,
// newest first.
func (r *DamageReportRepo) ListEnriched(ctx context.Context) ([]EnrichedReport, error) {
	const q = `SELECT d.id, d.room_id,
	                  COALESCE(rm.name, 'Unknown Room'),
	                  COALESCE(rm.building, ''),
	                  d.user_id,
	                  COALESCE(u.username, 'Unknown User'),
	                  COALESCE(u.email, ''),
	                  d.description, COALESCE(d.image_url, ''), d.status, d.created_at
	           FROM damage_reports d
	           LEFT JOIN rooms rm ON rm.id = d.room_id
	           LEFT JOIN users u ON u.id = d.user_id
	           ORDER BY d.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]EnrichedReport, 0)
	for rows.Next() {
		var e EnrichedReport
		if err := rows.Scan(&e.ID, &e.RoomID, &e.RoomName, &e.Building,
			&e.UserID, &e.UserName, &e.UserEmail,
			&e.Description, &e.ImageURL, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
