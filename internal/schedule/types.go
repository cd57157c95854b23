package schedule

import (
	"context"
	"errors"
	"time"

	"timewise-backend/internal/interval"
	"timewise-backend/internal/tasks"
	"timewise-backend/internal/users"
)

// ErrRecommendationUnavailable marks recommender calls that failed, timed out,
// or returned output that did not survive schema validation. The optimizer
// absorbs it per task by switching to the deterministic fallback.
var ErrRecommendationUnavailable = errors.New("recommendation unavailable")

// Event is a calendar event as the engine sees it.
type Event struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	ColorTag string    `json:"color_tag,omitempty"`
}

// PrioritizedTask is one row of the prioritizer's output.
type PrioritizedTask struct {
	TaskID         int     `json:"task_id"`
	PriorityScore  float64 `json:"priority_score"`
	SuggestedOrder int     `json:"suggested_order"`
	Reason         string  `json:"reason"`
}

// Deadline pairs a task with its currently scheduled time.
type Deadline struct {
	TaskID   int       `json:"task_id"`
	Deadline time.Time `json:"deadline"`
}

// SlotSuggestion is one scored candidate slot for a task.
type SlotSuggestion struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Score     float64   `json:"score"`
	Reason    string    `json:"reason"`
}

// PlanSlot is a clock-time block ("HH:MM") inside a single day.
type PlanSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Type  string `json:"type,omitempty"`
}

// PriorityAdjustment is a reprioritization hint from schedule analysis.
type PriorityAdjustment struct {
	TaskID            int    `json:"task_id"`
	SuggestedPriority int    `json:"suggested_priority"`
	Reason            string `json:"reason"`
}

// Analysis is the result of a whole-schedule review: suggested deep-work
// blocks, breaks, and an overall wellness score in [0, 100].
type Analysis struct {
	OptimalSlots        []PlanSlot           `json:"optimal_slots"`
	SuggestedBreaks     []PlanSlot           `json:"suggested_breaks"`
	PriorityAdjustments []PriorityAdjustment `json:"priority_adjustments"`
	WellnessScore       int                  `json:"wellness_score"`
	Recommendations     []string             `json:"recommendations"`
}

// Snapshot is the input handed to the recommender for schedule analysis.
type Snapshot struct {
	Events      []Event           `json:"events"`
	Tasks       []tasks.Task      `json:"tasks"`
	Preferences users.Preferences `json:"preferences"`
	TaskBacklog int               `json:"task_backlog"`
}

// CalendarReader fetches busy intervals from the external calendar.
type CalendarReader interface {
	GetEvents(ctx context.Context, start, end time.Time) ([]Event, error)
}

// CalendarWriter creates calendar events. Writes are fire-and-forget from the
// optimizer's perspective: a failure is logged and reported, never fatal.
type CalendarWriter interface {
	CreateEvent(ctx context.Context, ev Event, taskType string) (string, error)
}

// Calendar is the full per-user calendar capability.
type Calendar interface {
	CalendarReader
	CalendarWriter
}

// CalendarFactory builds the calendar capability for one user, typically from
// that user's stored OAuth tokens.
type CalendarFactory func(ctx context.Context, ownerID int) (Calendar, error)

// TaskSource is the slice of task storage the engine needs.
type TaskSource interface {
	Get(ctx context.Context, ownerID, taskID int) (tasks.Task, error)
	ListAll(ctx context.Context, ownerID int) ([]tasks.Task, error)
	ListPending(ctx context.Context, ownerID int) ([]tasks.Task, error)
	FindPending(ctx context.Context, ownerID int, start, end time.Time) ([]tasks.Task, error)
	UpdateScheduledTime(ctx context.Context, ownerID, taskID int, at time.Time) error
	UpdatePriority(ctx context.Context, ownerID, taskID, priority int) error
}

// UserSource loads user records with their preference profile.
type UserSource interface {
	Get(ctx context.Context, id int) (users.User, error)
}

// Recommender is the external scoring capability. Implementations must return
// errors wrapping ErrRecommendationUnavailable for unreachable, slow, or
// malformed responses so callers can engage the fallback path.
type Recommender interface {
	PrioritizeTasks(ctx context.Context, ts []tasks.Task, goals []string, deadlines []Deadline) ([]PrioritizedTask, error)
	SuggestTimeSlots(ctx context.Context, events []Event, pool []interval.FreeSlot, taskType string, durationMinutes int, prefs users.Preferences) ([]SlotSuggestion, error)
	AnalyzeSchedule(ctx context.Context, snap Snapshot) (Analysis, error)
}

// Deadlines extracts deadline pairs from the tasks that have a scheduled time.
func Deadlines(ts []tasks.Task) []Deadline {
	var out []Deadline
	for _, t := range ts {
		if t.ScheduledTime != nil {
			out = append(out, Deadline{TaskID: t.ID, Deadline: *t.ScheduledTime})
		}
	}
	return out
}
