package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMidnightNormalizes(t *testing.T) {
	in := time.Date(2026, time.August, 1, 17, 45, 12, 999, time.FixedZone("CEST", 2*3600))
	got := Midnight(in)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 0, got.Hour())
	assert.True(t, SameDay(got, Midnight(got)))
}

func TestNewStayEndExclusive(t *testing.T) {
	stay, err := NewStay(day(2026, time.August, 1), day(2026, time.August, 3))
	require.NoError(t, err)
	assert.False(t, stay.EndInclusive)

	assert.True(t, stay.Contains(day(2026, time.August, 1)))
	assert.True(t, stay.Contains(day(2026, time.August, 2)))
	assert.False(t, stay.Contains(day(2026, time.August, 3)), "checkout day is free")

	assert.Equal(t, 2, stay.Nights())
	assert.Equal(t, []time.Time{day(2026, time.August, 1), day(2026, time.August, 2)}, stay.Days())
}

func TestNewStayRejectsInvertedRange(t *testing.T) {
	_, err := NewStay(day(2026, time.August, 3), day(2026, time.August, 1))
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestNewStaySameDayIsZeroNights(t *testing.T) {
	stay, err := NewStay(day(2026, time.August, 1), day(2026, time.August, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, stay.Nights())
	assert.Empty(t, stay.Days())
	assert.False(t, stay.Contains(day(2026, time.August, 1)))
}

func TestNewDayIsInclusive(t *testing.T) {
	blk := NewDay(day(2026, time.August, 5))
	assert.True(t, blk.EndInclusive)
	assert.True(t, blk.Contains(day(2026, time.August, 5)))
	assert.Equal(t, []time.Time{day(2026, time.August, 5)}, blk.Days())
}

func TestOverlapsMixedInclusivity(t *testing.T) {
	stay, err := NewStay(day(2026, time.August, 1), day(2026, time.August, 3))
	require.NoError(t, err)

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"block on first night", NewDay(day(2026, time.August, 1)), true},
		{"block on last night", NewDay(day(2026, time.August, 2)), true},
		{"block on checkout day", NewDay(day(2026, time.August, 3)), false},
		{"back to back stay", mustStay(t, day(2026, time.August, 3), day(2026, time.August, 5)), false},
		{"overlapping stay", mustStay(t, day(2026, time.August, 2), day(2026, time.August, 4)), true},
		{"identical stay", mustStay(t, day(2026, time.August, 1), day(2026, time.August, 3)), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stay.Overlaps(tc.other))
			assert.Equal(t, tc.want, tc.other.Overlaps(stay), "overlap must be symmetric")
		})
	}
}

func TestNewDaySpan(t *testing.T) {
	span, err := NewDaySpan(day(2026, time.August, 1), day(2026, time.August, 3))
	require.NoError(t, err)
	assert.True(t, span.EndInclusive)
	assert.Len(t, span.Days(), 3)

	_, err = NewDaySpan(day(2026, time.August, 3), day(2026, time.August, 1))
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func mustStay(t *testing.T, start, end time.Time) Interval {
	t.Helper()
	stay, err := NewStay(start, end)
	require.NoError(t, err)
	return stay
}
