package tasks

import "time"

// Task types.
const (
	TypeWork     = "work"
	TypePersonal = "personal"
	TypeHealth   = "health"
)

// Task statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusPostponed = "postponed"
)

// AIMetadata carries the recommender's last verdict about a task.
type AIMetadata struct {
	OptimalScore     int    `json:"optimal_score"`
	EnergyLevel      string `json:"energy_level"`
	FocusRequirement string `json:"focus_requirement"`
}

// DefaultAIMetadata mirrors the column default: no score, medium everything.
func DefaultAIMetadata() AIMetadata {
	return AIMetadata{OptimalScore: 0, EnergyLevel: "medium", FocusRequirement: "medium"}
}

type Task struct {
	ID              int        `json:"id"`
	UserID          int        `json:"user_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	TaskType        string     `json:"task_type"`
	Priority        int        `json:"priority"` // 1 = highest, 5 = lowest
	DurationMinutes int        `json:"duration"`
	ScheduledTime   *time.Time `json:"scheduled_time,omitempty"`
	Status          string     `json:"status"`
	AIMetadata      AIMetadata `json:"ai_metadata"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ValidType reports whether t is one of the known task types.
func ValidType(t string) bool {
	return t == TypeWork || t == TypePersonal || t == TypeHealth
}

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusCompleted || s == StatusPostponed
}
