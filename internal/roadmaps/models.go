package roadmaps

import (
	"context"
	"time"

	"timewise-backend/internal/users"
)

// Goal types a roadmap week can focus on.
const (
	GoalProductivity = "productivity"
	GoalWellness     = "wellness"
	GoalLearning     = "learning"
	GoalPersonal     = "personal"
)

type WeeklyGoal struct {
	GoalType         string   `json:"goal_type"`
	Description      string   `json:"description"`
	SuggestedActions []string `json:"suggested_actions"`
}

type WorkBlock struct {
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
	FocusType string `json:"focus_type"`
}

type BreakTime struct {
	StartHour       int    `json:"start_hour"`
	DurationMinutes int    `json:"duration_minutes"`
	BreakType       string `json:"break_type"`
}

type DailyTemplate struct {
	WorkBlocks []WorkBlock `json:"work_blocks"`
	BreakTimes []BreakTime `json:"break_times"`
}

// Content is the structured plan inside a roadmap version.
type Content struct {
	WeeklyGoals             []WeeklyGoal  `json:"weekly_goals"`
	DailyScheduleTemplate   DailyTemplate `json:"daily_schedule_template"`
	WellnessRecommendations []string      `json:"wellness_recommendations"`
}

// Roadmap is one immutable plan version. A new optimization cycle creates the
// next version for the owner rather than mutating an old one.
type Roadmap struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Version   int       `json:"version"`
	Content   Content   `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile describes the user to the roadmap generator.
type Profile struct {
	Preferences      users.Preferences `json:"preferences"`
	CurrentTaskCount int               `json:"current_task_count"`
	TasksByType      map[string]int    `json:"tasks_by_type"`
}

// HistoryEvent is one past calendar event in the generator's input.
type HistoryEvent struct {
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"`
}

// History summarizes the last 30 days of calendar and task activity.
type History struct {
	Events             []HistoryEvent `json:"events"`
	CompletedTasks     int            `json:"completed_tasks"`
	AverageTasksPerDay float64        `json:"average_tasks_per_day"`
}

// Generator produces a roadmap plan from profile, history, and goals.
type Generator interface {
	GenerateRoadmap(ctx context.Context, profile Profile, history History, goals []string) (Content, error)
}
