package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timewise-backend/internal/schedule"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around object", `Here you go: {"a":1} hope that helps`, `{"a":1}`},
		{"prose around array", `Result: [1,2,3].`, `[1,2,3]`},
		{"fence with prose before", "Sure!\n```json\n{\"a\":1}\n```\nDone.", `{"a":1}`},
		{"no json at all", "no structure here", "no structure here"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, extractJSON(c.in))
		})
	}
}

func suggestion(start, end time.Time, score float64) schedule.SlotSuggestion {
	return schedule.SlotSuggestion{StartTime: start, EndTime: end, Score: score}
}

func TestValidateSuggestionsTruncates(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	in := make([]schedule.SlotSuggestion, 5)
	for i := range in {
		in[i] = suggestion(base.Add(time.Duration(i)*time.Hour), base.Add(time.Duration(i+1)*time.Hour), 80)
	}

	out, err := validateSuggestions(in)

	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestValidateSuggestionsRejectsBadEntries(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   schedule.SlotSuggestion
	}{
		{"zero start", suggestion(time.Time{}, base, 80)},
		{"zero end", suggestion(base, time.Time{}, 80)},
		{"start equals end", suggestion(base, base, 80)},
		{"start after end", suggestion(base.Add(time.Hour), base, 80)},
		{"score too high", suggestion(base, base.Add(time.Hour), 101)},
		{"score negative", suggestion(base, base.Add(time.Hour), -1)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := validateSuggestions([]schedule.SlotSuggestion{c.in})
			require.Error(t, err)
			assert.ErrorIs(t, err, schedule.ErrRecommendationUnavailable)
		})
	}
}

func TestValidateSuggestionsEmptyIsValid(t *testing.T) {
	out, err := validateSuggestions(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestValidatePrioritized(t *testing.T) {
	require.NoError(t, validatePrioritized([]schedule.PrioritizedTask{
		{TaskID: 1, PriorityScore: 0},
		{TaskID: 2, PriorityScore: 100},
	}))

	err := validatePrioritized([]schedule.PrioritizedTask{{TaskID: 0, PriorityScore: 50}})
	require.Error(t, err)
	assert.ErrorIs(t, err, schedule.ErrRecommendationUnavailable)

	err = validatePrioritized([]schedule.PrioritizedTask{{TaskID: 1, PriorityScore: 130}})
	require.Error(t, err)
	assert.ErrorIs(t, err, schedule.ErrRecommendationUnavailable)
}

func TestParseAnalysis(t *testing.T) {
	raw := `{
		"optimal_slots": [{"start":"09:00","end":"10:30","type":"deep_work"}],
		"suggested_breaks": [{"start":"10:30","end":"10:45"}],
		"wellness_score": 82,
		"recommendations": ["front-load deep work"]
	}`

	a, err := parseAnalysis(raw)

	require.NoError(t, err)
	assert.Equal(t, 82, a.WellnessScore)
	require.Len(t, a.OptimalSlots, 1)
	assert.Equal(t, "09:00", a.OptimalSlots[0].Start)
	assert.NotNil(t, a.PriorityAdjustments)
}

func TestParseAnalysisClampsWellness(t *testing.T) {
	raw := `{"optimal_slots":[],"suggested_breaks":[],"wellness_score":250}`

	a, err := parseAnalysis(raw)

	require.NoError(t, err)
	assert.Equal(t, schedule.NeutralWellnessScore, a.WellnessScore)
}

func TestParseAnalysisMissingField(t *testing.T) {
	raw := `{"optimal_slots":[],"wellness_score":50}`

	_, err := parseAnalysis(raw)

	require.Error(t, err)
	assert.ErrorIs(t, err, schedule.ErrRecommendationUnavailable)
	assert.Contains(t, err.Error(), "suggested_breaks")
}

func TestParseAnalysisMalformed(t *testing.T) {
	_, err := parseAnalysis(`not json`)
	require.Error(t, err)
	assert.ErrorIs(t, err, schedule.ErrRecommendationUnavailable)
}

func TestParseRoadmap(t *testing.T) {
	raw := `{
		"weekly_goals": [{"goal_type":"productivity","description":"ship","suggested_actions":["plan"]}],
		"daily_schedule_template": {
			"work_blocks": [{"start_hour":9,"end_hour":12,"focus_type":"deep_work"}],
			"break_times": [{"start_hour":12,"duration_minutes":60,"break_type":"lunch"}]
		},
		"wellness_recommendations": ["walk daily"]
	}`

	c, err := parseRoadmap(raw)

	require.NoError(t, err)
	require.Len(t, c.WeeklyGoals, 1)
	assert.Equal(t, "productivity", c.WeeklyGoals[0].GoalType)
	require.Len(t, c.DailyScheduleTemplate.WorkBlocks, 1)
	assert.Equal(t, []string{"walk daily"}, c.WellnessRecommendations)
}

func TestParseRoadmapMissingSection(t *testing.T) {
	raw := `{"weekly_goals":[],"wellness_recommendations":[]}`

	_, err := parseRoadmap(raw)

	require.Error(t, err)
	assert.ErrorIs(t, err, schedule.ErrRecommendationUnavailable)
	assert.Contains(t, err.Error(), "daily_schedule_template")
}
