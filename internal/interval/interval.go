package interval

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInterval is returned when an interval would have a non-positive width.
var ErrInvalidInterval = errors.New("invalid interval: start must be before end")

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// New builds an interval and enforces start < end.
func New(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("%w: [%s, %s)", ErrInvalidInterval,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{Start: start, End: end}, nil
}

// Duration returns the width of the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Minutes returns the width of the interval in whole minutes.
func (i Interval) Minutes() int {
	return int(i.Duration().Minutes())
}

// Overlaps reports whether two intervals share any time.
// Half-open semantics: intervals that only touch at an endpoint do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Gap returns the distance between i and a later, disjoint interval.
// The second return value is false when the intervals overlap or are out of order.
func (i Interval) Gap(other Interval) (time.Duration, bool) {
	if i.Overlaps(other) || other.Start.Before(i.End) {
		return 0, false
	}
	return other.Start.Sub(i.End), true
}

// Clip intersects the interval with bound.
// The second return value is false when the intersection is empty.
func (i Interval) Clip(bound Interval) (Interval, bool) {
	start := i.Start
	if bound.Start.After(start) {
		start = bound.Start
	}
	end := i.End
	if bound.End.Before(end) {
		end = bound.End
	}
	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// BusyInterval is a calendar-occupied interval tagged with its source event.
// Immutable once fetched for a query window.
type BusyInterval struct {
	Interval
	EventID string `json:"event_id"`
}

// FreeSlot is an unoccupied interval inside work hours.
// Produced only by the free-slot finder, consumed by the optimizer, never persisted.
type FreeSlot struct {
	Interval
	DurationMinutes int `json:"duration"`
}

// NewFreeSlot builds a free slot with its duration precomputed.
func NewFreeSlot(start, end time.Time) FreeSlot {
	iv := Interval{Start: start, End: end}
	return FreeSlot{Interval: iv, DurationMinutes: iv.Minutes()}
}
