package schedule

import (
	"context"
	"fmt"
	"math"
	"sort"

	"timewise-backend/internal/tasks"
)

// Goals sent to the recommender when the caller supplies none.
var defaultPrioritizeGoals = []string{
	"Complete high-priority work tasks",
	"Maintain work-life balance",
	"Progress on long-term projects",
}

// Prioritizer orders tasks by delegating scoring to the recommender.
//
// It deliberately has no deterministic fallback: a fabricated priority
// reorders the whole run, so a recommender failure propagates to the caller
// instead of being papered over. The slot scorer is the component that
// degrades gracefully.
type Prioritizer struct {
	Recommender Recommender
	Tasks       TaskSource
}

// Prioritize scores the given tasks against the goals and returns them ordered
// by priority score descending, stable on ties. When writeBack is set, each
// task's priority column is rewritten with its rounded score, one update per
// task.
func (p *Prioritizer) Prioritize(ctx context.Context, ownerID int, ts []tasks.Task, goals []string, writeBack bool) ([]PrioritizedTask, error) {
	if len(goals) == 0 {
		goals = defaultPrioritizeGoals
	}

	ranked, err := p.Recommender.PrioritizeTasks(ctx, ts, goals, Deadlines(ts))
	if err != nil {
		return nil, fmt.Errorf("prioritize: %w", err)
	}
	SortByScore(ranked)

	if writeBack {
		for _, pt := range ranked {
			if err := p.Tasks.UpdatePriority(ctx, ownerID, pt.TaskID, priorityFromScore(pt.PriorityScore)); err != nil {
				return nil, fmt.Errorf("prioritize: write back task %d: %w", pt.TaskID, err)
			}
		}
	}
	return ranked, nil
}

// SortByScore orders prioritized tasks by score descending, keeping the
// incoming order on ties.
func SortByScore(ranked []PrioritizedTask) {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PriorityScore > ranked[j].PriorityScore
	})
}

// priorityFromScore buckets a 0-100 recommender score onto the 1..5 priority
// column, 1 being highest.
func priorityFromScore(score float64) int {
	s := math.Round(score)
	switch {
	case s >= 80:
		return 1
	case s >= 60:
		return 2
	case s >= 40:
		return 3
	case s >= 20:
		return 4
	default:
		return 5
	}
}
