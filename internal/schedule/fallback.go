package schedule

import (
	"fmt"
	"time"

	"timewise-backend/internal/interval"
	"timewise-backend/internal/users"
)

// Fallback pacing used when preferences carry no values of their own.
const (
	DefaultFocusBlockMinutes = 90
	DefaultBreakMinutes      = 15

	// FallbackWellnessScore is reported when no real quality signal exists.
	FallbackWellnessScore = 65

	// NeutralWellnessScore replaces an AI-reported score that is out of range.
	NeutralWellnessScore = 50
)

// FallbackPlan builds a deterministic schedule analysis: fixed focus blocks
// separated by short breaks across the work-hour window. It is used whenever
// the recommender is unreachable or returns invalid data, never calls out,
// and always returns a well-formed (possibly empty) result.
func FallbackPlan(prefs users.Preferences) Analysis {
	focus := prefs.FocusBlockMinutes
	if focus <= 0 {
		focus = DefaultFocusBlockMinutes
	}
	brk := prefs.BreakDurationMinutes
	if brk <= 0 {
		brk = DefaultBreakMinutes
	}

	cur := prefs.WorkStartHour * 60
	end := prefs.WorkEndHour * 60

	optimal := []PlanSlot{}
	breaks := []PlanSlot{}
	for cur < end {
		optimal = append(optimal, PlanSlot{
			Start: minutesToClock(cur),
			End:   minutesToClock(cur + focus),
			Type:  "deep_work",
		})
		cur += focus

		breaks = append(breaks, PlanSlot{
			Start: minutesToClock(cur),
			End:   minutesToClock(cur + brk),
			Type:  "break",
		})
		cur += brk
	}

	return Analysis{
		OptimalSlots:        optimal,
		SuggestedBreaks:     breaks,
		PriorityAdjustments: []PriorityAdjustment{},
		WellnessScore:       FallbackWellnessScore,
		Recommendations: []string{
			fmt.Sprintf("Alternate %d-minute focus blocks with %d-minute breaks", focus, brk),
			"Schedule high-priority tasks during morning hours",
			"Reserve afternoon for meetings and collaborative work",
		},
	}
}

// FallbackSuggestion picks the earliest free slot that can hold the task.
// The false return means the pool has no slot wide enough.
func FallbackSuggestion(pool []interval.FreeSlot, durationMinutes int) (SlotSuggestion, bool) {
	var (
		best  interval.FreeSlot
		found bool
	)
	for _, slot := range pool {
		if slot.DurationMinutes < durationMinutes {
			continue
		}
		if !found || slot.Start.Before(best.Start) {
			best = slot
			found = true
		}
	}
	if !found {
		return SlotSuggestion{}, false
	}
	return SlotSuggestion{
		StartTime: best.Start,
		EndTime:   best.Start.Add(time.Duration(durationMinutes) * time.Minute),
		Score:     FallbackWellnessScore,
		Reason:    "Earliest available free slot (deterministic fallback)",
	}, true
}

// minutesToClock formats minutes since midnight as "HH:MM", clamped to one day.
func minutesToClock(m int) string {
	if m < 0 {
		m = 0
	}
	if m >= 24*60 {
		m = 24*60 - 1
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
