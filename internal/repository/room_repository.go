package repository

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"errors"       // errors package allows sentinel error definitions
	"strings"
	"time"

	"github.com/google/uuid"
)

// Room represents a bookable university room.  LastUserID and
// LastUsedAt are a denormalized cache of the most recent booking,
// refreshed on booking creation.
type Room struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Building     string         `json:"building"`
	Floor        int            `json:"floor"`
	Capacity     int            `json:"capacity"`
	Type         string         `json:"type"` // lecture | lab | meeting
	HasComputers bool           `json:"hasComputers"`
	HasProjector bool           `json:"hasProjector"`
	Description  sql.NullString `json:"-"`
	LastUserID   sql.NullString `json:"-"`
	LastUsedAt   sql.NullTime   `json:"-"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// ErrRoomNotFound is returned when a room lookup fails.
var ErrRoomNotFound = errors.New("room not found")

// RoomRepo provides methods to create and retrieve rooms.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomColumns = `id, name, building, floor, capacity, type, has_computers, has_projector,
	description, last_user_id, last_used_at, created_at, updated_at`

func scanRoom(scan func(dest ...any) error) (*Room, error) {
	var r Room
	err := scan(&r.ID, &r.Name, &r.Building, &r.Floor, &r.Capacity, &r.Type,
		&r.HasComputers, &r.HasProjector, &r.Description, &r.LastUserID, &r.LastUsedAt,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a new room.  The generated UUID and the server-set
// timestamps are read back onto the struct.
func (r *RoomRepo) Create(ctx context.Context, room *Room) error {
	room.ID = uuid.NewString()
	const q = `INSERT INTO rooms (id, name, building, floor, capacity, type, has_computers, has_projector, description)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, room.ID, room.Name, room.Building, room.Floor,
		room.Capacity, room.Type, room.HasComputers, room.HasProjector, room.Description)
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, room.ID)
	if err != nil {
		return err
	}
	*room = *created
	return nil
}

// GetByID retrieves a room by its ID.  It returns ErrRoomNotFound when
// no row is found.
func (r *RoomRepo) GetByID(ctx context.Context, id string) (*Room, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id = ?", id)
	room, err := scanRoom(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	return room, err
}

// List returns every room ordered by building then name.
func (r *RoomRepo) List(ctx context.Context) ([]*Room, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+roomColumns+" FROM rooms ORDER BY building, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// RoomPatch lists optional field updates for a room.  Nil fields are
// left untouched.
type RoomPatch struct {
	Name         *string
	Building     *string
	Floor        *int
	Capacity     *int
	Type         *string
	HasComputers *bool
	HasProjector *bool
	Description  *string
}

// Update applies a partial update built from the non-nil patch fields.
func (r *RoomRepo) Update(ctx context.Context, id string, p RoomPatch) error {
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		set = append(set, col+"=?")
		args = append(args, v)
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Building != nil {
		add("building", *p.Building)
	}
	if p.Floor != nil {
		add("floor", *p.Floor)
	}
	if p.Capacity != nil {
		add("capacity", *p.Capacity)
	}
	if p.Type != nil {
		add("type", *p.Type)
	}
	if p.HasComputers != nil {
		add("has_computers", *p.HasComputers)
	}
	if p.HasProjector != nil {
		add("has_projector", *p.HasProjector)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.db.ExecContext(ctx,
		"UPDATE rooms SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
	return err
}

// StampLastUsed refreshes the denormalized last-user cache after a
// booking is created.  The caller treats failures as non-fatal.
func (r *RoomRepo) StampLastUsed(ctx context.Context, roomID, userID string, usedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE rooms SET last_user_id=?, last_used_at=? WHERE id=?",
		userID, usedAt, roomID)
	return err
}

// Delete removes a room, but only when no booking of any status
// references it.  It returns ErrRoomHasBookings otherwise and
// ErrRoomNotFound when the room does not exist.
func (r *RoomRepo) Delete(ctx context.Context, id string) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE room_id=?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrRoomHasBookings
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM rooms WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrRoomNotFound)
}
