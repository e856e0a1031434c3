package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/uniraum/room-booking/internal/schedule"
)

// Booking statuses.  Only confirmed bookings constrain availability and
// future bookings; cancelled ones do not.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking mirrors the 'bookings' table.  Start/end form a half-open
// interval [StartTime, EndTime).
type Booking struct {
	ID                     string
	RoomID                 string
	UserID                 string
	StartTime              time.Time
	EndTime                time.Time
	Purpose                string
	Status                 string
	ResponsibilityAccepted bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// ErrBookingNotFound is returned when a booking lookup fails.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepo provides persistence for bookings.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

const bookingColumns = `id, room_id, user_id, start_time, end_time, purpose, status,
	responsibility_accepted, created_at, updated_at`

func scanBooking(scan func(dest ...any) error) (*Booking, error) {
	var b Booking
	var purpose sql.NullString
	err := scan(&b.ID, &b.RoomID, &b.UserID, &b.StartTime, &b.EndTime, &purpose,
		&b.Status, &b.ResponsibilityAccepted, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Purpose = purpose.String
	return &b, nil
}

// Create inserts a new confirmed booking.  The generated UUID and the
// server-set timestamps are read back onto the struct.
func (r *BookingRepo) Create(ctx context.Context, b *Booking) error {
	b.ID = uuid.NewString()
	b.Status = BookingStatusConfirmed
	const q = `INSERT INTO bookings (id, room_id, user_id, start_time, end_time, purpose, status, responsibility_accepted)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, b.ID, b.RoomID, b.UserID,
		b.StartTime.UTC(), b.EndTime.UTC(), b.Purpose, b.Status, b.ResponsibilityAccepted)
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, b.ID)
	if err != nil {
		return err
	}
	*b = *created
	return nil
}

// GetByID retrieves a booking, returning ErrBookingNotFound when absent.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*Booking, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id)
	b, err := scanBooking(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// ConfirmedIntervalsByUser returns the intervals of all of a user's
// confirmed bookings, as input for the conflict check.
func (r *BookingRepo) ConfirmedIntervalsByUser(ctx context.Context, userID string) ([]schedule.Interval, error) {
	const q = `SELECT start_time, end_time FROM bookings WHERE user_id = ? AND status = ?`
	rows, err := r.db.QueryContext(ctx, q, userID, BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]schedule.Interval, 0)
	for rows.Next() {
		var iv schedule.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

// ConfirmedRoomBookings returns (roomID, interval) pairs for every
// confirmed booking, as input for the availability resolver.
func (r *BookingRepo) ConfirmedRoomBookings(ctx context.Context) ([]schedule.RoomBooking, error) {
	const q = `SELECT room_id, start_time, end_time FROM bookings WHERE status = ?`
	rows, err := r.db.QueryContext(ctx, q, BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]schedule.RoomBooking, 0)
	for rows.Next() {
		var rb schedule.RoomBooking
		if err := rows.Scan(&rb.RoomID, &rb.Interval.Start, &rb.Interval.End); err != nil {
			return nil, err
		}
		out = append(out, rb)
	}
	return out, rows.Err()
}

// ConfirmedByRoom returns a room's confirmed bookings.  When both range
// bounds are non-zero the closed-range filter start_time <= to AND
// end_time >= from is applied, mirroring the range query the clients
// rely on.
func (r *BookingRepo) ConfirmedByRoom(ctx context.Context, roomID string, from, to time.Time) ([]*Booking, error) {
	q := "SELECT " + bookingColumns + " FROM bookings WHERE room_id = ? AND status = ?"
	args := []any{roomID, BookingStatusConfirmed}
	if !from.IsZero() && !to.IsZero() {
		q += " AND start_time <= ? AND end_time >= ?"
		args = append(args, to.UTC(), from.UTC())
	}
	q += " ORDER BY start_time"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateStatus sets a booking's status.  Setting cancelled on an
// already-cancelled booking succeeds and re-sets the status.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE bookings SET status=? WHERE id=?", status, id)
	return err
}

// BookingPatch lists the fields an administrator may rewrite.  No
// re-validation of interval ordering or conflict-freedom happens on
// admin edits; the update is applied as requested.
type BookingPatch struct {
	StartTime *time.Time
	EndTime   *time.Time
	Purpose   *string
	Status    *string
}

// Update applies a partial admin update.
func (r *BookingRepo) Update(ctx context.Context, id string, p BookingPatch) error {
	set := []string{}
	args := []any{}
	if p.StartTime != nil {
		set = append(set, "start_time=?")
		args = append(args, p.StartTime.UTC())
	}
	if p.EndTime != nil {
		set = append(set, "end_time=?")
		args = append(args, p.EndTime.UTC())
	}
	if p.Purpose != nil {
		set = append(set, "purpose=?")
		args = append(args, *p.Purpose)
	}
	if p.Status != nil {
		set = append(set, "status=?")
		args = append(args, *p.Status)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
	return err
}

// Delete removes a booking permanently.
func (r *BookingRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM bookings WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrBookingNotFound)
}

// EnrichedBooking is a booking joined with display fields from the
// related room (and, for the admin listing, the owning user).  When the
// room or user record has since been deleted the placeholders
// "Unknown Room" / "Unknown User" are returned instead of an error.
type EnrichedBooking struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	RoomName  string    `json:"roomName"`
	Building  string    `json:"building"`
	Floor     int       `json:"floor"`
	UserID    string    `json:"userId,omitempty"`
	Username  string    `json:"username,omitempty"`
	Purpose   string    `json:"purpose"`
	Status    string    `json:"status"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListByUserEnriched returns all of a user's bookings (any status) with
// room display fields resolved at read time.  A booking whose room was
// deleted still comes back, carrying placeholder room fields.
func (r *BookingRepo) ListByUserEnriched(ctx context.Context, userID string) ([]EnrichedBooking, error) {
	const q = `SELECT b.id, b.room_id,
	                  COALESCE(rm.name, 'Unknown Room'),
	                  COALESCE(rm.building, ''),
	                  COALESCE(rm.floor, 0),
	                  COALESCE(b.purpose, ''), b.status, b.start_time, b.end_time, b.created_at
	           FROM bookings b
	           LEFT JOIN rooms rm ON rm.id = b.room_id
	           WHERE b.user_id = ?
	           ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]EnrichedBooking, 0)
	for rows.Next() {
		var e EnrichedBooking
		var start, end time.Time
		if err := rows.Scan(&e.ID, &e.RoomID, &e.RoomName, &e.Building, &e.Floor,
			&e.Purpose, &e.Status, &start, &end, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.StartTime = start.UTC().Format(time.RFC3339)
		e.EndTime = end.UTC().Format(time.RFC3339)
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListAllEnriched returns every booking with room display fields plus
// the owning user's name, newest first.  It backs the admin overview.
func (r *BookingRepo) ListAllEnriched(ctx context.Context) ([]EnrichedBooking, error) {
	const q = `SELECT b.id, b.room_id,
	                  COALESCE(rm.name, 'Unknown Room'),
	                  COALESCE(rm.building, ''),
	                  COALESCE(rm.floor, 0),
	                  b.user_id,
	                  COALESCE(u.username, 'Unknown User'),
	                  COALESCE(b.purpose, ''), b.status, b.start_time, b.end_time, b.created_at
	           FROM bookings b
	           LEFT JOIN rooms rm ON rm.id = b.room_id
	           LEFT JOIN users u ON u.id = b.user_id
	           ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]EnrichedBooking, 0)
	for rows.Next() {
		var e EnrichedBooking
		var start, end time.Time
		if err := rows.Scan(&e.ID, &e.RoomID, &e.RoomName, &e.Building, &e.Floor,
			&e.UserID, &e.Username, &e.Purpose, &e.Status, &start, &end, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.StartTime = start.UTC().Format(time.RFC3339)
		e.EndTime = end.UTC().Format(time.RFC3339)
		out = append(out, e)
	}
	return out, rows.Err()
}
