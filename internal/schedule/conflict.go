package schedule

// HasConflict reports whether the proposed interval overlaps any of the
// user's existing intervals.  Callers must pass only confirmed
// bookings: cancelled ones do not constrain future bookings.
//
// The check is user-scoped, not room-scoped.  A user cannot hold two
// simultaneous bookings even in different rooms.  Room-level double
// booking is prevented by the availability listing, not by this check;
// the creation path does not re-verify against other users' bookings
// for the same room before committing.
func HasConflict(existing []Interval, proposed Interval) bool {
	for _, iv := range existing {
		if Overlaps(iv, proposed) {
			return true
		}
	}
	return false
}
