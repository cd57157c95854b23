package schedule

import (
	"sort"
	"time"

	"timewise-backend/internal/interval"
)

// SlotOptions controls the free-slot sweep.
type SlotOptions struct {
	WorkStartHour      int
	WorkEndHour        int
	MinDurationMinutes int
	Location           *time.Location

	// ClipOvernight clips busy intervals against each day's work window
	// instead of attributing them to the day they start on. Off by default:
	// the historical behavior is that an event spanning midnight does not
	// block the next morning.
	ClipOvernight bool
}

// FindFreeSlots computes the maximal free intervals of at least the minimum
// duration inside the work-hour window of every day in [rangeStart, rangeEnd).
//
// Pure function of its inputs; the result is recomputed on every call and is
// never cached, since the calendar may have changed between calls.
func FindFreeSlots(rangeStart, rangeEnd time.Time, busy []interval.BusyInterval, opts SlotOptions) []interval.FreeSlot {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	slots := []interval.FreeSlot{}
	day := startOfDay(rangeStart.In(loc))

	for day.Before(rangeEnd) {
		windowStart := time.Date(day.Year(), day.Month(), day.Day(), opts.WorkStartHour, 0, 0, 0, loc)
		windowEnd := time.Date(day.Year(), day.Month(), day.Day(), opts.WorkEndHour, 0, 0, 0, loc)
		if !windowStart.Before(windowEnd) {
			day = day.AddDate(0, 0, 1)
			continue
		}

		dayBusy := busyForDay(busy, day, windowStart, windowEnd, loc, opts.ClipOvernight)
		sort.SliceStable(dayBusy, func(i, j int) bool {
			if !dayBusy[i].Start.Equal(dayBusy[j].Start) {
				return dayBusy[i].Start.Before(dayBusy[j].Start)
			}
			if !dayBusy[i].End.Equal(dayBusy[j].End) {
				return dayBusy[i].End.Before(dayBusy[j].End)
			}
			return dayBusy[i].EventID < dayBusy[j].EventID
		})

		cursor := windowStart
		for _, b := range dayBusy {
			if b.Start.After(cursor) && fitsMinimum(cursor, b.Start, opts.MinDurationMinutes) {
				slots = append(slots, interval.NewFreeSlot(cursor, b.Start))
			}
			if b.End.After(cursor) {
				cursor = b.End
			}
		}
		if cursor.Before(windowEnd) && fitsMinimum(cursor, windowEnd, opts.MinDurationMinutes) {
			slots = append(slots, interval.NewFreeSlot(cursor, windowEnd))
		}

		day = day.AddDate(0, 0, 1)
	}

	return slots
}

func busyForDay(busy []interval.BusyInterval, day, windowStart, windowEnd time.Time, loc *time.Location, clip bool) []interval.BusyInterval {
	var out []interval.BusyInterval
	if clip {
		window := interval.Interval{Start: windowStart, End: windowEnd}
		for _, b := range busy {
			if clipped, ok := b.Interval.Clip(window); ok {
				out = append(out, interval.BusyInterval{Interval: clipped, EventID: b.EventID})
			}
		}
		return out
	}
	for _, b := range busy {
		if sameDay(b.Start.In(loc), day) {
			out = append(out, b)
		}
	}
	return out
}

func fitsMinimum(start, end time.Time, minMinutes int) bool {
	return end.Sub(start) >= time.Duration(minMinutes)*time.Minute
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
