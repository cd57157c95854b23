package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestNew(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		iv, err := New(at(9, 0), at(10, 30))
		require.NoError(t, err)
		assert.Equal(t, 90, iv.Minutes())
	})

	t.Run("start equals end", func(t *testing.T) {
		_, err := New(at(9, 0), at(9, 0))
		require.ErrorIs(t, err, ErrInvalidInterval)
	})

	t.Run("start after end", func(t *testing.T) {
		_, err := New(at(10, 0), at(9, 0))
		require.ErrorIs(t, err, ErrInvalidInterval)
	})
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", Interval{at(9, 0), at(10, 0)}, Interval{at(11, 0), at(12, 0)}, false},
		{"touching endpoints", Interval{at(9, 0), at(10, 0)}, Interval{at(10, 0), at(11, 0)}, false},
		{"partial overlap", Interval{at(9, 0), at(10, 30)}, Interval{at(10, 0), at(11, 0)}, true},
		{"contained", Interval{at(9, 0), at(12, 0)}, Interval{at(10, 0), at(11, 0)}, true},
		{"identical", Interval{at(9, 0), at(10, 0)}, Interval{at(9, 0), at(10, 0)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestGap(t *testing.T) {
	t.Run("ordered disjoint", func(t *testing.T) {
		a := Interval{at(9, 0), at(10, 0)}
		b := Interval{at(10, 45), at(11, 0)}
		gap, ok := a.Gap(b)
		require.True(t, ok)
		assert.Equal(t, 45*time.Minute, gap)
	})

	t.Run("touching", func(t *testing.T) {
		a := Interval{at(9, 0), at(10, 0)}
		b := Interval{at(10, 0), at(11, 0)}
		gap, ok := a.Gap(b)
		require.True(t, ok)
		assert.Equal(t, time.Duration(0), gap)
	})

	t.Run("overlapping", func(t *testing.T) {
		a := Interval{at(9, 0), at(10, 30)}
		_, ok := a.Gap(Interval{at(10, 0), at(11, 0)})
		assert.False(t, ok)
	})

	t.Run("out of order", func(t *testing.T) {
		a := Interval{at(11, 0), at(12, 0)}
		_, ok := a.Gap(Interval{at(9, 0), at(10, 0)})
		assert.False(t, ok)
	})
}

func TestClip(t *testing.T) {
	bound := Interval{at(9, 0), at(17, 0)}

	t.Run("inside bound", func(t *testing.T) {
		got, ok := Interval{at(10, 0), at(11, 0)}.Clip(bound)
		require.True(t, ok)
		assert.Equal(t, Interval{at(10, 0), at(11, 0)}, got)
	})

	t.Run("spills over both ends", func(t *testing.T) {
		got, ok := Interval{at(8, 0), at(18, 0)}.Clip(bound)
		require.True(t, ok)
		assert.Equal(t, bound, got)
	})

	t.Run("outside bound", func(t *testing.T) {
		_, ok := Interval{at(7, 0), at(8, 30)}.Clip(bound)
		assert.False(t, ok)
	})

	t.Run("touching bound start", func(t *testing.T) {
		_, ok := Interval{at(7, 0), at(9, 0)}.Clip(bound)
		assert.False(t, ok)
	})
}

func TestNewFreeSlot(t *testing.T) {
	slot := NewFreeSlot(at(11, 0), at(17, 0))
	assert.Equal(t, 360, slot.DurationMinutes)
	assert.Equal(t, slot.Minutes(), slot.DurationMinutes)
}
