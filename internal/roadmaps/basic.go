package roadmaps

import (
	"fmt"

	"timewise-backend/internal/tasks"
)

var wellnessRotation = []string{
	"Take a 20-minute walk every third day",
	"Start one morning per week with meditation",
	"Keep one evening per week screen-free for reading",
	"Schedule two exercise sessions per week",
}

// BasicContent builds a deterministic roadmap used when the AI generator
// fails. Weeks alternate between productivity and wellness focus; the daily
// template is a plain two-block workday.
func BasicContent(days int, pending []tasks.Task) Content {
	if days <= 0 {
		days = 30
	}
	weeks := (days + 6) / 7

	topTasks := make([]string, 0, 3)
	for _, t := range pending {
		if len(topTasks) == 3 {
			break
		}
		topTasks = append(topTasks, t.Title)
	}

	goals := make([]WeeklyGoal, 0, weeks)
	for w := 1; w <= weeks; w++ {
		goalType := GoalProductivity
		if w%2 == 0 {
			goalType = GoalWellness
		}
		actions := []string{"Review and plan on Friday"}
		actions = append(actions, topTasks...)
		goals = append(goals, WeeklyGoal{
			GoalType:         goalType,
			Description:      fmt.Sprintf("Week %d: steady focus and recovery", w),
			SuggestedActions: actions,
		})
	}

	return Content{
		WeeklyGoals: goals,
		DailyScheduleTemplate: DailyTemplate{
			WorkBlocks: []WorkBlock{
				{StartHour: 9, EndHour: 12, FocusType: "deep_work"},
				{StartHour: 13, EndHour: 17, FocusType: "collaboration"},
			},
			BreakTimes: []BreakTime{
				{StartHour: 12, DurationMinutes: 60, BreakType: "lunch"},
				{StartHour: 15, DurationMinutes: 15, BreakType: "short"},
			},
		},
		WellnessRecommendations: wellnessRotation,
	}
}
