// Package schedule implements the booking interval and availability
// logic: half-open time intervals, overlap detection, the user-scoped
// conflict check and the room availability resolver.  Everything in
// this package is pure; loading bookings and rooms is the caller's job.
package schedule

import (
	"errors"
	"time"
)

// ErrInvalidInterval is returned when an interval's start is not
// strictly before its end.
var ErrInvalidInterval = errors.New("invalid interval: start must be before end")

// ErrInvalidTimeRange is returned when wire timestamps cannot be parsed
// into an interval.  Handlers translate it into a 400 response before
// any filtering happens.
var ErrInvalidTimeRange = errors.New("invalid time range")

// Interval is a half-open time range [Start, End).  The start instant
// is included and the end instant excluded, so back-to-back bookings do
// not register as overlapping.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds an interval and enforces strict ordering.  It
// returns ErrInvalidInterval when start >= end.
func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: end}, nil
}

// ParseInterval parses two wire timestamps into an interval.  It accepts
// RFC3339 with or without an explicit offset ("2025-03-01T09:00:00Z" or
// "2025-03-01T09:00:00"); bare timestamps are taken as UTC.  It returns
// ErrInvalidTimeRange when either value is missing or unparseable and
// ErrInvalidInterval when ordering is violated.
func ParseInterval(startStr, endStr string) (Interval, error) {
	start, err := ParseTimestamp(startStr)
	if err != nil {
		return Interval{}, ErrInvalidTimeRange
	}
	end, err := ParseTimestamp(endStr)
	if err != nil {
		return Interval{}, ErrInvalidTimeRange
	}
	return NewInterval(start, end)
}

// ParseTimestamp tries RFC3339 first and falls back to a zone-less
// layout interpreted as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrInvalidTimeRange
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Overlaps reports whether two half-open intervals intersect.  The
// single predicate a.Start < b.End && b.Start < a.End subsumes the
// three disjunctive cases (starts inside, ends inside, fully contains).
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}
