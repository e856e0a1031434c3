// Package repository provides *sql.DB persistence for users, refresh
// tokens, rooms, bookings and damage reports.  Lookups that find no row
// return per-entity sentinel errors so handlers can map them to HTTP
// status codes without inspecting SQL errors.
package repository

import "errors"

// ErrRoomHasBookings is returned when a room delete cannot proceed
// because at least one booking references the room.
var ErrRoomHasBookings = errors.New("room has existing bookings")
