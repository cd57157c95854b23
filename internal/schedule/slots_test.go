package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timewise-backend/internal/interval"
)

func day(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
}

func busyAt(id string, start, end time.Time) interval.BusyInterval {
	return interval.BusyInterval{
		Interval: interval.Interval{Start: start, End: end},
		EventID:  id,
	}
}

func workOpts(minMinutes int) SlotOptions {
	return SlotOptions{
		WorkStartHour:      9,
		WorkEndHour:        17,
		MinDurationMinutes: minMinutes,
		Location:           time.UTC,
	}
}

func TestFindFreeSlotsSplitsAroundBusy(t *testing.T) {
	d := day(t)
	busy := []interval.BusyInterval{
		busyAt("ev1", d.Add(10*time.Hour), d.Add(11*time.Hour)),
	}

	slots := FindFreeSlots(d, d.AddDate(0, 0, 1), busy, workOpts(30))

	require.Len(t, slots, 2)
	assert.Equal(t, d.Add(9*time.Hour), slots[0].Start)
	assert.Equal(t, d.Add(10*time.Hour), slots[0].End)
	assert.Equal(t, 60, slots[0].DurationMinutes)
	assert.Equal(t, d.Add(11*time.Hour), slots[1].Start)
	assert.Equal(t, d.Add(17*time.Hour), slots[1].End)
	assert.Equal(t, 360, slots[1].DurationMinutes)
}

func TestFindFreeSlotsEmptyCalendar(t *testing.T) {
	d := day(t)

	slots := FindFreeSlots(d, d.AddDate(0, 0, 1), nil, workOpts(480))

	require.Len(t, slots, 1)
	assert.Equal(t, d.Add(9*time.Hour), slots[0].Start)
	assert.Equal(t, d.Add(17*time.Hour), slots[0].End)
}

func TestFindFreeSlotsFullyBooked(t *testing.T) {
	d := day(t)
	busy := []interval.BusyInterval{
		busyAt("ev1", d.Add(8*time.Hour), d.Add(18*time.Hour)),
	}

	slots := FindFreeSlots(d, d.AddDate(0, 0, 1), busy, workOpts(30))

	assert.Empty(t, slots)
}

func TestFindFreeSlotsDropsNarrowGaps(t *testing.T) {
	d := day(t)
	// 20-minute gap between the two events, below the 30-minute minimum.
	busy := []interval.BusyInterval{
		busyAt("ev1", d.Add(9*time.Hour), d.Add(12*time.Hour)),
		busyAt("ev2", d.Add(12*time.Hour).Add(20*time.Minute), d.Add(17*time.Hour)),
	}

	slots := FindFreeSlots(d, d.AddDate(0, 0, 1), busy, workOpts(30))

	assert.Empty(t, slots)
}

func TestFindFreeSlotsUnsortedInput(t *testing.T) {
	d := day(t)
	busy := []interval.BusyInterval{
		busyAt("late", d.Add(14*time.Hour), d.Add(15*time.Hour)),
		busyAt("early", d.Add(10*time.Hour), d.Add(11*time.Hour)),
	}

	slots := FindFreeSlots(d, d.AddDate(0, 0, 1), busy, workOpts(30))

	require.Len(t, slots, 3)
	assert.Equal(t, d.Add(9*time.Hour), slots[0].Start)
	assert.Equal(t, d.Add(11*time.Hour), slots[1].Start)
	assert.Equal(t, d.Add(15*time.Hour), slots[2].Start)
}

func TestFindFreeSlotsOverlappingEvents(t *testing.T) {
	d := day(t)
	busy := []interval.BusyInterval{
		busyAt("a", d.Add(10*time.Hour), d.Add(12*time.Hour)),
		busyAt("b", d.Add(11*time.Hour), d.Add(13*time.Hour)),
	}

	slots := FindFreeSlots(d, d.AddDate(0, 0, 1), busy, workOpts(30))

	require.Len(t, slots, 2)
	assert.Equal(t, d.Add(9*time.Hour), slots[0].Start)
	assert.Equal(t, d.Add(10*time.Hour), slots[0].End)
	assert.Equal(t, d.Add(13*time.Hour), slots[1].Start)
	assert.Equal(t, d.Add(17*time.Hour), slots[1].End)
}

func TestFindFreeSlotsNoOverlapWithBusy(t *testing.T) {
	d := day(t)
	busy := []interval.BusyInterval{
		busyAt("a", d.Add(9*time.Hour+30*time.Minute), d.Add(10*time.Hour)),
		busyAt("b", d.Add(12*time.Hour), d.Add(13*time.Hour+15*time.Minute)),
		busyAt("c", d.Add(16*time.Hour), d.Add(16*time.Hour+45*time.Minute)),
	}

	slots := FindFreeSlots(d, d.AddDate(0, 0, 1), busy, workOpts(30))

	for _, s := range slots {
		for _, b := range busy {
			assert.False(t, s.Overlaps(b.Interval),
				"slot %v-%v overlaps busy %v-%v", s.Start, s.End, b.Start, b.End)
		}
	}
	for i := 1; i < len(slots); i++ {
		assert.False(t, slots[i].Overlaps(slots[i-1].Interval))
	}
	for _, s := range slots {
		assert.GreaterOrEqual(t, s.DurationMinutes, 30)
	}
}

func TestFindFreeSlotsDeterministic(t *testing.T) {
	d := day(t)
	busy := []interval.BusyInterval{
		busyAt("b", d.Add(13*time.Hour), d.Add(14*time.Hour)),
		busyAt("a", d.Add(13*time.Hour), d.Add(14*time.Hour)),
	}

	first := FindFreeSlots(d, d.AddDate(0, 0, 1), busy, workOpts(30))
	second := FindFreeSlots(d, d.AddDate(0, 0, 1), busy, workOpts(30))

	assert.Equal(t, first, second)
}

func TestFindFreeSlotsMultipleDays(t *testing.T) {
	d := day(t)
	next := d.AddDate(0, 0, 1)
	busy := []interval.BusyInterval{
		busyAt("d1", d.Add(9*time.Hour), d.Add(16*time.Hour)),
		busyAt("d2", next.Add(10*time.Hour), next.Add(17*time.Hour)),
	}

	slots := FindFreeSlots(d, d.AddDate(0, 0, 2), busy, workOpts(30))

	require.Len(t, slots, 2)
	assert.Equal(t, d.Add(16*time.Hour), slots[0].Start)
	assert.Equal(t, next.Add(9*time.Hour), slots[1].Start)
}

func TestFindFreeSlotsOvernightEventKeepsNextMorning(t *testing.T) {
	d := day(t)
	next := d.AddDate(0, 0, 1)
	// Starts the evening before and runs into the next day's work window.
	busy := []interval.BusyInterval{
		busyAt("night", d.Add(22*time.Hour), next.Add(10*time.Hour)),
	}

	slots := FindFreeSlots(next, next.AddDate(0, 0, 1), busy, workOpts(30))

	// Attributed to its start day, so the next morning stays open.
	require.Len(t, slots, 1)
	assert.Equal(t, next.Add(9*time.Hour), slots[0].Start)
	assert.Equal(t, next.Add(17*time.Hour), slots[0].End)
}

func TestFindFreeSlotsClipOvernight(t *testing.T) {
	d := day(t)
	next := d.AddDate(0, 0, 1)
	busy := []interval.BusyInterval{
		busyAt("night", d.Add(22*time.Hour), next.Add(10*time.Hour)),
	}

	opts := workOpts(30)
	opts.ClipOvernight = true
	slots := FindFreeSlots(next, next.AddDate(0, 0, 1), busy, opts)

	require.Len(t, slots, 1)
	assert.Equal(t, next.Add(10*time.Hour), slots[0].Start)
	assert.Equal(t, next.Add(17*time.Hour), slots[0].End)
}
