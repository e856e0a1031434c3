package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }

func testRooms() []Room {
	return []Room{
		{ID: "r1", Capacity: 30, Type: "lab", Building: "Tech", HasComputers: true, HasProjector: false},
		{ID: "r2", Capacity: 120, Type: "lecture", Building: "Main Campus", HasComputers: false, HasProjector: true},
		{ID: "r3", Capacity: 12, Type: "meeting", Building: "Tech", HasComputers: false, HasProjector: false},
	}
}

func TestRoomFilterMatches(t *testing.T) {
	r1 := testRooms()[0]
	cases := []struct {
		name string
		f    RoomFilter
		want bool
	}{
		{"empty filter matches everything", RoomFilter{}, true},
		{"capacity is a minimum", RoomFilter{MinCapacity: intPtr(30)}, true},
		{"capacity above excludes", RoomFilter{MinCapacity: intPtr(31)}, false},
		{"exact type", RoomFilter{Type: strPtr("lab")}, true},
		{"wrong type", RoomFilter{Type: strPtr("lecture")}, false},
		{"exact building", RoomFilter{Building: strPtr("Tech")}, true},
		{"computers flag", RoomFilter{HasComputers: boolPtr(true)}, true},
		{"projector flag excludes", RoomFilter{HasProjector: boolPtr(true)}, false},
		{"combined", RoomFilter{MinCapacity: intPtr(20), Building: strPtr("Tech"), HasComputers: boolPtr(true)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.f.Matches(r1))
		})
	}
}

func TestAvailableRooms(t *testing.T) {
	rooms := testRooms()
	// u1 holds r1 from 09:00 to 10:00
	confirmed := []RoomBooking{{RoomID: "r1", Interval: iv(t, 9, 10)}}

	t.Run("overlapping window excludes booked room", func(t *testing.T) {
		window := Interval{Start: at(9, 30), End: at(10, 30)}
		got := AvailableRooms(rooms, confirmed, window, RoomFilter{HasComputers: boolPtr(true)})
		assert.Empty(t, got, "r1 is booked and it is the only room with computers")
	})

	t.Run("half-open boundary frees the room", func(t *testing.T) {
		got := AvailableRooms(rooms, confirmed, iv(t, 10, 11), RoomFilter{HasComputers: boolPtr(true)})
		require.Len(t, got, 1)
		assert.Equal(t, "r1", got[0].ID)
	})

	t.Run("room with zero bookings is always available", func(t *testing.T) {
		for _, window := range []Interval{iv(t, 0, 23), iv(t, 9, 10), iv(t, 9, 11)} {
			got := AvailableRooms(rooms, confirmed, window, RoomFilter{})
			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Contains(t, ids, "r2")
			assert.Contains(t, ids, "r3")
		}
	})

	t.Run("no confirmed bookings leaves every room free", func(t *testing.T) {
		got := AvailableRooms(rooms, nil, iv(t, 9, 10), RoomFilter{})
		assert.Len(t, got, 3)
	})

	t.Run("filter applies before subtraction", func(t *testing.T) {
		got := AvailableRooms(rooms, confirmed, iv(t, 9, 10), RoomFilter{Building: strPtr("Tech")})
		require.Len(t, got, 1)
		assert.Equal(t, "r3", got[0].ID)
	})
}

// Cancelling a booking drops it from the confirmed set, so the room
// becomes available again for the very window it used to hold.
func TestCancelledBookingFreesRoom(t *testing.T) {
	rooms := testRooms()
	window := iv(t, 9, 10)
	held := []RoomBooking{{RoomID: "r1", Interval: window}}

	got := AvailableRooms(rooms, held, window, RoomFilter{HasComputers: boolPtr(true)})
	assert.Empty(t, got, "r1 is held for the window")

	// Booking cancelled: the confirmed set no longer carries it.
	got = AvailableRooms(rooms, nil, window, RoomFilter{HasComputers: boolPtr(true)})
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
}
