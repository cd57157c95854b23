package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"timewise-backend/internal/roadmaps"
	"timewise-backend/internal/schedule"
)

// maxSuggestions is the most slot candidates a response may carry.
const maxSuggestions = 3

// extractJSON pulls the JSON payload out of a model response, tolerating
// markdown code fences and surrounding prose.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	if idx := strings.Index(s, "```json"); idx != -1 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
		return strings.TrimSpace(s)
	}
	if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+len("```"):]
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
		return strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return s
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end <= start {
		return s
	}
	return s[start : end+1]
}

// validateSuggestions enforces the slot-suggestion schema: at most three
// entries, each with ordered non-zero bounds and a score in [0, 100].
func validateSuggestions(slots []schedule.SlotSuggestion) ([]schedule.SlotSuggestion, error) {
	if len(slots) > maxSuggestions {
		slots = slots[:maxSuggestions]
	}
	for i, s := range slots {
		if s.StartTime.IsZero() || s.EndTime.IsZero() {
			return nil, fmt.Errorf("%w: suggestion %d has missing bounds", schedule.ErrRecommendationUnavailable, i)
		}
		if !s.StartTime.Before(s.EndTime) {
			return nil, fmt.Errorf("%w: suggestion %d has start >= end", schedule.ErrRecommendationUnavailable, i)
		}
		if s.Score < 0 || s.Score > 100 {
			return nil, fmt.Errorf("%w: suggestion %d score %.1f out of range", schedule.ErrRecommendationUnavailable, i, s.Score)
		}
	}
	return slots, nil
}

// validatePrioritized enforces the prioritization schema.
func validatePrioritized(ranked []schedule.PrioritizedTask) error {
	for i, pt := range ranked {
		if pt.TaskID <= 0 {
			return fmt.Errorf("%w: prioritized entry %d has no task_id", schedule.ErrRecommendationUnavailable, i)
		}
		if pt.PriorityScore < 0 || pt.PriorityScore > 100 {
			return fmt.Errorf("%w: prioritized entry %d score %.1f out of range", schedule.ErrRecommendationUnavailable, i, pt.PriorityScore)
		}
	}
	return nil
}

// parseAnalysis decodes a schedule analysis, requiring the mandatory fields
// to be present. A wellness score outside [0, 100] is replaced by the neutral
// constant rather than failing the whole response.
func parseAnalysis(raw string) (schedule.Analysis, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return schedule.Analysis{}, fmt.Errorf("%w: parsing analysis: %v", schedule.ErrRecommendationUnavailable, err)
	}
	for _, field := range []string{"optimal_slots", "suggested_breaks", "wellness_score"} {
		if _, ok := probe[field]; !ok {
			return schedule.Analysis{}, fmt.Errorf("%w: analysis missing required field %q", schedule.ErrRecommendationUnavailable, field)
		}
	}

	var a schedule.Analysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return schedule.Analysis{}, fmt.Errorf("%w: parsing analysis: %v", schedule.ErrRecommendationUnavailable, err)
	}
	if a.WellnessScore < 0 || a.WellnessScore > 100 {
		a.WellnessScore = schedule.NeutralWellnessScore
	}
	if a.OptimalSlots == nil {
		a.OptimalSlots = []schedule.PlanSlot{}
	}
	if a.SuggestedBreaks == nil {
		a.SuggestedBreaks = []schedule.PlanSlot{}
	}
	if a.PriorityAdjustments == nil {
		a.PriorityAdjustments = []schedule.PriorityAdjustment{}
	}
	if a.Recommendations == nil {
		a.Recommendations = []string{}
	}
	return a, nil
}

// parseRoadmap decodes a roadmap plan, requiring all three sections.
func parseRoadmap(raw string) (roadmaps.Content, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return roadmaps.Content{}, fmt.Errorf("%w: parsing roadmap: %v", schedule.ErrRecommendationUnavailable, err)
	}
	for _, field := range []string{"weekly_goals", "daily_schedule_template", "wellness_recommendations"} {
		if _, ok := probe[field]; !ok {
			return roadmaps.Content{}, fmt.Errorf("%w: roadmap missing required field %q", schedule.ErrRecommendationUnavailable, field)
		}
	}

	var c roadmaps.Content
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return roadmaps.Content{}, fmt.Errorf("%w: parsing roadmap: %v", schedule.ErrRecommendationUnavailable, err)
	}
	return c, nil
}
