package schedule

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	return time.Date(2025, 3, 1, hour, min, 0, 0, time.UTC)
}

func iv(t *testing.T, startHour, endHour int) Interval {
	t.Helper()
	in, err := NewInterval(at(startHour, 0), at(endHour, 0))
	require.NoError(t, err)
	return in
}

func TestNewInterval(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		in, err := NewInterval(at(9, 0), at(10, 0))
		require.NoError(t, err)
		assert.Equal(t, at(9, 0), in.Start)
		assert.Equal(t, at(10, 0), in.End)
	})
	t.Run("start equals end", func(t *testing.T) {
		_, err := NewInterval(at(9, 0), at(9, 0))
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})
	t.Run("start after end", func(t *testing.T) {
		_, err := NewInterval(at(10, 0), at(9, 0))
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})
}

func TestParseInterval(t *testing.T) {
	t.Run("rfc3339", func(t *testing.T) {
		in, err := ParseInterval("2025-03-01T09:00:00Z", "2025-03-01T10:00:00Z")
		require.NoError(t, err)
		assert.Equal(t, at(9, 0), in.Start)
		assert.Equal(t, at(10, 0), in.End)
	})
	t.Run("no zone means UTC", func(t *testing.T) {
		in, err := ParseInterval("2025-03-01T09:00:00", "2025-03-01T10:00:00")
		require.NoError(t, err)
		assert.Equal(t, at(9, 0), in.Start)
	})
	t.Run("garbage start", func(t *testing.T) {
		_, err := ParseInterval("not-a-date", "2025-03-01T10:00:00Z")
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})
	t.Run("missing end", func(t *testing.T) {
		_, err := ParseInterval("2025-03-01T09:00:00Z", "")
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})
	t.Run("reversed ordering", func(t *testing.T) {
		_, err := ParseInterval("2025-03-01T10:00:00Z", "2025-03-01T09:00:00Z")
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical", iv(t, 9, 10), iv(t, 9, 10), true},
		{"b starts inside a", iv(t, 9, 11), iv(t, 10, 12), true},
		{"b ends inside a", iv(t, 10, 12), iv(t, 9, 11), true},
		{"b contains a", iv(t, 10, 11), iv(t, 9, 12), true},
		{"a contains b", iv(t, 9, 12), iv(t, 10, 11), true},
		{"back to back", iv(t, 9, 10), iv(t, 10, 11), false},
		{"disjoint", iv(t, 9, 10), iv(t, 11, 12), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.a, tc.b))
			assert.Equal(t, tc.want, Overlaps(tc.b, tc.a), "overlap must be symmetric")
		})
	}
}

func TestOverlapsSelf(t *testing.T) {
	assert.True(t, Overlaps(iv(t, 9, 10), iv(t, 9, 10)))
}

// TestOverlapsEquivalence checks that the single predicate agrees with
// the three disjunctive cases (new starts inside existing, new ends
// inside existing, new contains existing) on randomized interval pairs.
func TestOverlapsEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	randIv := func() Interval {
		start := rng.Intn(1000)
		length := 1 + rng.Intn(200)
		return Interval{
			Start: base.Add(time.Duration(start) * time.Minute),
			End:   base.Add(time.Duration(start+length) * time.Minute),
		}
	}
	for i := 0; i < 10000; i++ {
		existing, proposed := randIv(), randIv()
		startsInside := !proposed.Start.Before(existing.Start) && proposed.Start.Before(existing.End)
		endsInside := proposed.End.After(existing.Start) && !proposed.End.After(existing.End)
		contains := !proposed.Start.After(existing.Start) && !proposed.End.Before(existing.End)
		disjunctive := startsInside || endsInside || contains
		assert.Equal(t, disjunctive, Overlaps(proposed, existing),
			"proposed=%v existing=%v", proposed, existing)
	}
}
