package schedule

import (
	"context"
	"fmt"
	"log"
	"time"

	"timewise-backend/internal/interval"
	"timewise-backend/internal/tasks"
	"timewise-backend/internal/users"
)

// Goals used by the quick-optimize run.
var optimizeGoals = []string{
	"Complete high-priority tasks",
	"Maintain energy levels throughout the day",
	"Allow for breaks between focused work",
}

const defaultMinSlotMinutes = 30

// Optimizer reshuffles a user's pending tasks into better time slots.
// All collaborators are injected; the zero value is not usable.
type Optimizer struct {
	Calendar    CalendarFactory
	Tasks       TaskSource
	Users       UserSource
	Recommender Recommender

	// Timeout bounds each recommender call. Zero means no extra deadline.
	Timeout time.Duration

	// MinSlotMinutes is the minimum width of a usable free slot.
	// Defaults to 30.
	MinSlotMinutes int

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// OptimizeRequest describes one optimization run.
type OptimizeRequest struct {
	OwnerID      int   `json:"owner_id"`
	ApplyChanges bool  `json:"apply_changes"`
	TaskIDs      []int `json:"task_ids,omitempty"` // empty means all eligible tasks
}

// OptimizationEntry is one task's before/after reassignment record.
type OptimizationEntry struct {
	TaskID        int        `json:"task_id"`
	TaskTitle     string     `json:"task_title"`
	OriginalTime  *time.Time `json:"original_time"`
	SuggestedTime time.Time  `json:"suggested_time"`
	Reason        string     `json:"reason"`
	Score         float64    `json:"score"`
	Fallback      bool       `json:"fallback"`
}

// OptimizeResult is the outcome of a run. Success false with a message means
// there was nothing to optimize, which is not an error.
type OptimizeResult struct {
	Success       bool                `json:"success"`
	Message       string              `json:"message,omitempty"`
	Optimizations []OptimizationEntry `json:"optimizations"`
	ApplyFailures []string            `json:"apply_failures,omitempty"`
}

// QuickOptimize runs one optimization pass over today's schedule:
// collect busy intervals and eligible tasks, discover free slots, prioritize,
// then assign each task the best-scoring slot while shrinking the pool so no
// two assignments overlap. Changes are persisted only when requested.
//
// A failure while collecting or prioritizing aborts the whole run. A
// recommender failure for a single task degrades that task to the
// deterministic fallback and the loop continues.
func (o *Optimizer) QuickOptimize(ctx context.Context, req OptimizeRequest) (OptimizeResult, error) {
	user, err := o.Users.Get(ctx, req.OwnerID)
	if err != nil {
		return OptimizeResult{}, fmt.Errorf("collect: load user %d: %w", req.OwnerID, err)
	}
	prefs := user.Preferences
	loc := prefs.Location()

	windowStart := startOfDay(o.now().In(loc))
	windowEnd := windowStart.AddDate(0, 0, 2)

	cal, err := o.Calendar(ctx, req.OwnerID)
	if err != nil {
		return OptimizeResult{}, fmt.Errorf("collect: calendar access: %w", err)
	}
	events, err := cal.GetEvents(ctx, windowStart, windowEnd)
	if err != nil {
		return OptimizeResult{}, fmt.Errorf("collect: calendar events: %w", err)
	}

	pending, err := o.Tasks.FindPending(ctx, req.OwnerID, windowStart, windowEnd)
	if err != nil {
		return OptimizeResult{}, fmt.Errorf("collect: pending tasks: %w", err)
	}
	pending = filterByID(pending, req.TaskIDs)
	if len(pending) == 0 {
		return OptimizeResult{
			Success:       false,
			Message:       "no tasks scheduled for today to optimize",
			Optimizations: []OptimizationEntry{},
		}, nil
	}

	pool := FindFreeSlots(windowStart, windowEnd, busyFromEvents(events), SlotOptions{
		WorkStartHour:      prefs.WorkStartHour,
		WorkEndHour:        prefs.WorkEndHour,
		MinDurationMinutes: o.minSlot(),
		Location:           loc,
	})

	ranked, err := o.recommendPriorities(ctx, pending)
	if err != nil {
		return OptimizeResult{}, fmt.Errorf("prioritize: %w", err)
	}

	byID := make(map[int]tasks.Task, len(pending))
	for _, t := range pending {
		byID[t.ID] = t
	}

	entries := []OptimizationEntry{}
	for _, pt := range ranked {
		task, ok := byID[pt.TaskID]
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			// Cancelled mid-run: stop issuing recommender calls. Entries
			// already applied by a previous run stage stay applied.
			return OptimizeResult{}, fmt.Errorf("assign: %w", err)
		}

		entry, ok, err := o.assignSlot(ctx, task, events, pool, prefs)
		if err != nil {
			return OptimizeResult{}, fmt.Errorf("assign: %w", err)
		}
		if !ok {
			continue
		}
		entries = append(entries, entry)
		pool = consumeSlot(pool, entry.SuggestedTime, task.DurationMinutes, o.minSlot())
	}

	result := OptimizeResult{Success: true, Optimizations: entries}
	if req.ApplyChanges {
		o.apply(ctx, req.OwnerID, cal, byID, entries, &result)
	}
	return result, nil
}

// assignSlot asks the recommender for slot candidates and falls back to the
// deterministic heuristic when the recommendation is unavailable. The error
// return is non-nil only when the surrounding run was cancelled.
func (o *Optimizer) assignSlot(ctx context.Context, task tasks.Task, events []Event, pool []interval.FreeSlot, prefs users.Preferences) (OptimizationEntry, bool, error) {
	callCtx, cancel := o.callContext(ctx)
	suggestions, err := o.Recommender.SuggestTimeSlots(callCtx, events, pool, task.TaskType, task.DurationMinutes, prefs)
	cancel()

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return OptimizationEntry{}, false, ctxErr
		}
		log.Printf("optimizer: suggestions unavailable for task %d, using fallback: %v", task.ID, err)
		fb, ok := FallbackSuggestion(pool, task.DurationMinutes)
		if !ok {
			return OptimizationEntry{}, false, nil
		}
		return entryFromSuggestion(task, fb, true), true, nil
	}
	if len(suggestions) == 0 {
		return OptimizationEntry{}, false, nil
	}
	return entryFromSuggestion(task, suggestions[0], false), true, nil
}

func (o *Optimizer) apply(ctx context.Context, ownerID int, writer CalendarWriter, byID map[int]tasks.Task, entries []OptimizationEntry, result *OptimizeResult) {
	for _, entry := range entries {
		if err := o.Tasks.UpdateScheduledTime(ctx, ownerID, entry.TaskID, entry.SuggestedTime); err != nil {
			log.Printf("optimizer: apply task %d: %v", entry.TaskID, err)
			result.ApplyFailures = append(result.ApplyFailures,
				fmt.Sprintf("task %d: %v", entry.TaskID, err))
			continue
		}
		if writer == nil {
			continue
		}
		task := byID[entry.TaskID]
		_, err := writer.CreateEvent(ctx, Event{
			Title: task.Title,
			Start: entry.SuggestedTime,
			End:   entry.SuggestedTime.Add(time.Duration(task.DurationMinutes) * time.Minute),
		}, task.TaskType)
		if err != nil {
			// The reassignment is already decided; a calendar write failure
			// is reported but never aborts.
			log.Printf("optimizer: calendar event for task %d: %v", entry.TaskID, err)
			result.ApplyFailures = append(result.ApplyFailures,
				fmt.Sprintf("task %d calendar event: %v", entry.TaskID, err))
		}
	}
}

func (o *Optimizer) recommendPriorities(ctx context.Context, pending []tasks.Task) ([]PrioritizedTask, error) {
	callCtx, cancel := o.callContext(ctx)
	defer cancel()

	ranked, err := o.Recommender.PrioritizeTasks(callCtx, pending, optimizeGoals, Deadlines(pending))
	if err != nil {
		return nil, err
	}
	SortByScore(ranked)
	return ranked, nil
}

func (o *Optimizer) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.Timeout)
}

func (o *Optimizer) minSlot() int {
	if o.MinSlotMinutes > 0 {
		return o.MinSlotMinutes
	}
	return defaultMinSlotMinutes
}

func (o *Optimizer) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func entryFromSuggestion(task tasks.Task, s SlotSuggestion, fallback bool) OptimizationEntry {
	return OptimizationEntry{
		TaskID:        task.ID,
		TaskTitle:     task.Title,
		OriginalTime:  task.ScheduledTime,
		SuggestedTime: s.StartTime,
		Reason:        s.Reason,
		Score:         s.Score,
		Fallback:      fallback,
	}
}

// consumeSlot removes the window [start, start+duration) from the pool,
// keeping the remnants on either side that still meet the minimum width.
func consumeSlot(pool []interval.FreeSlot, start time.Time, durationMinutes, minMinutes int) []interval.FreeSlot {
	consumed := interval.Interval{
		Start: start,
		End:   start.Add(time.Duration(durationMinutes) * time.Minute),
	}

	out := pool[:0:0]
	for _, slot := range pool {
		if !slot.Overlaps(consumed) {
			out = append(out, slot)
			continue
		}
		if slot.Start.Before(consumed.Start) && fitsMinimum(slot.Start, consumed.Start, minMinutes) {
			out = append(out, interval.NewFreeSlot(slot.Start, consumed.Start))
		}
		if consumed.End.Before(slot.End) && fitsMinimum(consumed.End, slot.End, minMinutes) {
			out = append(out, interval.NewFreeSlot(consumed.End, slot.End))
		}
	}
	return out
}

func busyFromEvents(events []Event) []interval.BusyInterval {
	busy := make([]interval.BusyInterval, 0, len(events))
	for _, ev := range events {
		if !ev.Start.Before(ev.End) {
			continue
		}
		busy = append(busy, interval.BusyInterval{
			Interval: interval.Interval{Start: ev.Start, End: ev.End},
			EventID:  ev.ID,
		})
	}
	return busy
}

func filterByID(ts []tasks.Task, ids []int) []tasks.Task {
	if len(ids) == 0 {
		return ts
	}
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []tasks.Task
	for _, t := range ts {
		if want[t.ID] {
			out = append(out, t)
		}
	}
	return out
}
