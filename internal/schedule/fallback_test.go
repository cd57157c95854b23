package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timewise-backend/internal/interval"
	"timewise-backend/internal/users"
)

func TestFallbackPlanDefaultPacing(t *testing.T) {
	plan := FallbackPlan(users.DefaultPreferences())

	// 9:00-17:00 at 90-minute focus blocks with 15-minute breaks.
	require.NotEmpty(t, plan.OptimalSlots)
	assert.Equal(t, "09:00", plan.OptimalSlots[0].Start)
	assert.Equal(t, "10:30", plan.OptimalSlots[0].End)
	assert.Equal(t, "deep_work", plan.OptimalSlots[0].Type)

	require.NotEmpty(t, plan.SuggestedBreaks)
	assert.Equal(t, "10:30", plan.SuggestedBreaks[0].Start)
	assert.Equal(t, "10:45", plan.SuggestedBreaks[0].End)

	assert.Equal(t, len(plan.OptimalSlots), len(plan.SuggestedBreaks))
	assert.Equal(t, FallbackWellnessScore, plan.WellnessScore)
	assert.NotEmpty(t, plan.Recommendations)
	assert.Empty(t, plan.PriorityAdjustments)
}

func TestFallbackPlanCustomPacing(t *testing.T) {
	prefs := users.DefaultPreferences()
	prefs.WorkStartHour = 8
	prefs.WorkEndHour = 12
	prefs.FocusBlockMinutes = 60
	prefs.BreakDurationMinutes = 10

	plan := FallbackPlan(prefs)

	require.Len(t, plan.OptimalSlots, 4)
	assert.Equal(t, "08:00", plan.OptimalSlots[0].Start)
	assert.Equal(t, "09:00", plan.OptimalSlots[0].End)
	assert.Equal(t, "09:10", plan.OptimalSlots[1].Start)
}

func TestFallbackPlanZeroWidthWindow(t *testing.T) {
	prefs := users.DefaultPreferences()
	prefs.WorkStartHour = 9
	prefs.WorkEndHour = 9

	plan := FallbackPlan(prefs)

	assert.Empty(t, plan.OptimalSlots)
	assert.Empty(t, plan.SuggestedBreaks)
	assert.Equal(t, FallbackWellnessScore, plan.WellnessScore)
}

func TestFallbackPlanClampsToMidnight(t *testing.T) {
	prefs := users.DefaultPreferences()
	prefs.WorkStartHour = 22
	prefs.WorkEndHour = 24
	prefs.FocusBlockMinutes = 180

	plan := FallbackPlan(prefs)

	require.NotEmpty(t, plan.OptimalSlots)
	assert.Equal(t, "23:59", plan.OptimalSlots[0].End)
}

func TestFallbackSuggestionPicksEarliestFit(t *testing.T) {
	d := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	pool := []interval.FreeSlot{
		interval.NewFreeSlot(d.Add(14*time.Hour), d.Add(15*time.Hour)),
		interval.NewFreeSlot(d.Add(9*time.Hour), d.Add(9*time.Hour+45*time.Minute)),
		interval.NewFreeSlot(d.Add(11*time.Hour), d.Add(13*time.Hour)),
	}

	s, ok := FallbackSuggestion(pool, 60)

	require.True(t, ok)
	// The 9:00 slot is earlier but too narrow for 60 minutes.
	assert.Equal(t, d.Add(11*time.Hour), s.StartTime)
	assert.Equal(t, d.Add(12*time.Hour), s.EndTime)
	assert.Equal(t, float64(FallbackWellnessScore), s.Score)
	assert.NotEmpty(t, s.Reason)
}

func TestFallbackSuggestionNoFit(t *testing.T) {
	d := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	pool := []interval.FreeSlot{
		interval.NewFreeSlot(d.Add(9*time.Hour), d.Add(9*time.Hour+30*time.Minute)),
	}

	_, ok := FallbackSuggestion(pool, 45)
	assert.False(t, ok)

	_, ok = FallbackSuggestion(nil, 30)
	assert.False(t, ok)
}
