package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"timewise-backend/internal/interval"
	"timewise-backend/internal/roadmaps"
	"timewise-backend/internal/schedule"
	"timewise-backend/internal/tasks"
	"timewise-backend/internal/users"
)

// BuildSuggestSlotsPrompt asks for scored slot candidates for one task.
// The chronotype and spacing heuristics are communicated to the model rather
// than hard-coded here.
func BuildSuggestSlotsPrompt(events []schedule.Event, pool []interval.FreeSlot, taskType string, durationMinutes int, prefs users.Preferences) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze this user's schedule and suggest optimal time slots for a %s task that requires %d minutes.\n\n", taskType, durationMinutes)

	b.WriteString("User schedule: ")
	b.WriteString(mustJSON(events))
	b.WriteString("\n")

	b.WriteString("Available free slots: ")
	b.WriteString(mustJSON(pool))
	b.WriteString("\n")

	b.WriteString("User preferences: ")
	b.WriteString(mustJSON(prefs))
	b.WriteString("\n\n")

	b.WriteString("Consider the following factors:\n")
	b.WriteString("- If the task type is \"deep_work\" or \"work\", prioritize morning slots for early chronotypes and afternoon/evening for night owls\n")
	b.WriteString("- For \"meeting\" tasks, avoid scheduling back-to-back meetings when possible\n")
	b.WriteString("- For \"creative\" tasks, find times when the user historically has more energy\n")
	b.WriteString("- For \"physical\" or \"health\" tasks, consider appropriate spacing from meals and other physical activities\n\n")

	b.WriteString("Suggestions must lie inside the available free slots.\n")
	b.WriteString("Return JSON: {\"optimal_slots\": [{\"start_time\": RFC3339, \"end_time\": RFC3339, \"score\": 0-100, \"reason\": string}]} with at most 3 slots, best first.\n")

	return b.String()
}

// BuildPrioritizePrompt asks for a scored ordering of the tasks.
func BuildPrioritizePrompt(ts []tasks.Task, goals []string, deadlines []schedule.Deadline) string {
	var b strings.Builder

	b.WriteString("Prioritize these tasks based on deadlines, importance, and alignment with user goals.\n\n")

	b.WriteString("Tasks: ")
	b.WriteString(mustJSON(ts))
	b.WriteString("\n")

	b.WriteString("User goals: ")
	b.WriteString(mustJSON(goals))
	b.WriteString("\n")

	b.WriteString("Deadlines: ")
	b.WriteString(mustJSON(deadlines))
	b.WriteString("\n\n")

	b.WriteString("Consider:\n")
	b.WriteString("- Urgency (deadline proximity)\n")
	b.WriteString("- Importance (alignment with goals)\n")
	b.WriteString("- Dependencies between tasks\n")
	b.WriteString("- Time required vs. time available\n\n")

	b.WriteString("Return JSON: {\"prioritized_tasks\": [{\"task_id\": int, \"priority_score\": 0-100, \"suggested_order\": int, \"reason\": string}]}.\n")

	return b.String()
}

// BuildAnalyzePrompt asks for a whole-schedule wellness review.
func BuildAnalyzePrompt(snap schedule.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze this schedule considering:\n")
	fmt.Fprintf(&b, "- Chronotype (%s person)\n", snap.Preferences.Chronotype)
	b.WriteString("- Meeting fatigue patterns\n")
	b.WriteString("- Historical productivity data\n")
	fmt.Fprintf(&b, "- Current task backlog (%d pending tasks)\n\n", snap.TaskBacklog)

	b.WriteString("Schedule: ")
	b.WriteString(mustJSON(snap.Events))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Work hours: %02d:00 to %02d:00\n", snap.Preferences.WorkStartHour, snap.Preferences.WorkEndHour)
	fmt.Fprintf(&b, "Focus time preference: %d minutes\n", snap.Preferences.FocusBlockMinutes)
	fmt.Fprintf(&b, "Break preference: %d minutes\n\n", snap.Preferences.BreakDurationMinutes)

	b.WriteString("Required output format:\n")
	b.WriteString(`{
  "optimal_slots": [{"start": "HH:MM", "end": "HH:MM", "type": "deep_work"}],
  "suggested_breaks": [{"start": "HH:MM", "end": "HH:MM", "type": "break"}],
  "priority_adjustments": [{"task_id": int, "suggested_priority": 1-5, "reason": string}],
  "wellness_score": 0-100,
  "recommendations": [string]
}`)
	b.WriteString("\n")

	return b.String()
}

// BuildRoadmapPrompt asks for a multi-week work-life balance plan.
func BuildRoadmapPrompt(profile roadmaps.Profile, history roadmaps.History, goals []string) string {
	var b strings.Builder

	b.WriteString("Create a 30-day work-life balance optimization plan for this user.\n\n")

	b.WriteString("User profile: ")
	b.WriteString(mustJSON(profile))
	b.WriteString("\n")

	b.WriteString("Historical schedule data: ")
	b.WriteString(mustJSON(history))
	b.WriteString("\n")

	b.WriteString("User goals: ")
	b.WriteString(mustJSON(goals))
	b.WriteString("\n\n")

	b.WriteString("The plan should include:\n")
	b.WriteString("- Weekly goals for productivity, wellness, learning, and personal time\n")
	b.WriteString("- A daily schedule template with optimal work blocks and break times\n")
	b.WriteString("- Wellness recommendations tailored to user preferences\n\n")
	b.WriteString("Make the plan realistic and achievable based on the user's past behavior.\n")

	b.WriteString(`Return JSON: {
  "weekly_goals": [{"goal_type": "productivity"|"wellness"|"learning"|"personal", "description": string, "suggested_actions": [string]}],
  "daily_schedule_template": {
    "work_blocks": [{"start_hour": int, "end_hour": int, "focus_type": string}],
    "break_times": [{"start_hour": int, "duration_minutes": int, "break_type": string}]
  },
  "wellness_recommendations": [string]
}`)
	b.WriteString("\n")

	return b.String()
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
