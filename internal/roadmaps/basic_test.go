package roadmaps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timewise-backend/internal/tasks"
)

func TestBasicContentWeekCount(t *testing.T) {
	c := BasicContent(30, nil)
	assert.Len(t, c.WeeklyGoals, 5) // 30 days round up to 5 weeks

	c = BasicContent(14, nil)
	assert.Len(t, c.WeeklyGoals, 2)

	c = BasicContent(1, nil)
	assert.Len(t, c.WeeklyGoals, 1)
}

func TestBasicContentDefaultsDays(t *testing.T) {
	c := BasicContent(0, nil)
	assert.Len(t, c.WeeklyGoals, 5)

	c = BasicContent(-7, nil)
	assert.Len(t, c.WeeklyGoals, 5)
}

func TestBasicContentAlternatesFocus(t *testing.T) {
	c := BasicContent(28, nil)

	require.Len(t, c.WeeklyGoals, 4)
	assert.Equal(t, GoalProductivity, c.WeeklyGoals[0].GoalType)
	assert.Equal(t, GoalWellness, c.WeeklyGoals[1].GoalType)
	assert.Equal(t, GoalProductivity, c.WeeklyGoals[2].GoalType)
	assert.Equal(t, GoalWellness, c.WeeklyGoals[3].GoalType)
}

func TestBasicContentIncludesTopTasks(t *testing.T) {
	pending := []tasks.Task{
		{ID: 1, Title: "Write report"},
		{ID: 2, Title: "Review budget"},
		{ID: 3, Title: "Plan sprint"},
		{ID: 4, Title: "Never included"},
	}

	c := BasicContent(7, pending)

	require.Len(t, c.WeeklyGoals, 1)
	actions := c.WeeklyGoals[0].SuggestedActions
	assert.Contains(t, actions, "Write report")
	assert.Contains(t, actions, "Plan sprint")
	assert.NotContains(t, actions, "Never included")
}

func TestBasicContentDailyTemplate(t *testing.T) {
	c := BasicContent(30, nil)

	require.Len(t, c.DailyScheduleTemplate.WorkBlocks, 2)
	assert.Equal(t, 9, c.DailyScheduleTemplate.WorkBlocks[0].StartHour)
	assert.Equal(t, 12, c.DailyScheduleTemplate.WorkBlocks[0].EndHour)
	require.Len(t, c.DailyScheduleTemplate.BreakTimes, 2)
	assert.Equal(t, "lunch", c.DailyScheduleTemplate.BreakTimes[0].BreakType)
	assert.NotEmpty(t, c.WellnessRecommendations)
}
