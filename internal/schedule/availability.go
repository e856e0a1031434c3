package schedule

// Room is the resolver's view of a room: the identifier plus the
// attributes a filter can constrain.  Handlers map stored rooms into
// this shape before calling AvailableRooms.
type Room struct {
	ID           string
	Capacity     int
	Type         string
	Building     string
	HasComputers bool
	HasProjector bool
}

// RoomBooking pairs a confirmed booking's room with its interval.
type RoomBooking struct {
	RoomID   string
	Interval Interval
}

// RoomFilter constrains the candidate room set.  Nil fields mean no
// constraint.  Capacity is a minimum; the rest are exact matches.
type RoomFilter struct {
	MinCapacity  *int
	Type         *string
	Building     *string
	HasComputers *bool
	HasProjector *bool
}

// Matches reports whether a room satisfies every set constraint.
func (f RoomFilter) Matches(r Room) bool {
	if f.MinCapacity != nil && r.Capacity < *f.MinCapacity {
		return false
	}
	if f.Type != nil && r.Type != *f.Type {
		return false
	}
	if f.Building != nil && r.Building != *f.Building {
		return false
	}
	if f.HasComputers != nil && r.HasComputers != *f.HasComputers {
		return false
	}
	if f.HasProjector != nil && r.HasProjector != *f.HasProjector {
		return false
	}
	return true
}

// AvailableRooms computes the rooms free for the requested window.  It
// applies the filter, collects the IDs of rooms holding at least one
// confirmed booking that overlaps the window, and returns the filtered
// rooms minus that set.  A room with zero bookings is always available.
// Callers must pass confirmed bookings only.
func AvailableRooms(rooms []Room, confirmed []RoomBooking, window Interval, f RoomFilter) []Room {
	booked := make(map[string]struct{})
	for _, b := range confirmed {
		if Overlaps(b.Interval, window) {
			booked[b.RoomID] = struct{}{}
		}
	}
	out := make([]Room, 0, len(rooms))
	for _, r := range rooms {
		if !f.Matches(r) {
			continue
		}
		if _, taken := booked[r.ID]; taken {
			continue
		}
		out = append(out, r)
	}
	return out
}
