package schedule

import (
	"context"
	"fmt"
	"log"
	"time"
)

// analysisWindowDays is how far ahead Analyze looks for upcoming events.
const analysisWindowDays = 7

// Analyze reviews the user's upcoming schedule and returns suggested focus
// blocks, breaks, and a wellness score. Any recommender or calendar failure
// degrades to the deterministic fallback plan; only a missing user is an
// error.
func (o *Optimizer) Analyze(ctx context.Context, ownerID int) (Analysis, error) {
	user, err := o.Users.Get(ctx, ownerID)
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze: load user %d: %w", ownerID, err)
	}
	prefs := user.Preferences
	loc := prefs.Location()

	now := o.now().In(loc)
	events, err := o.fetchEvents(ctx, ownerID, now, now.AddDate(0, 0, analysisWindowDays))
	if err != nil {
		log.Printf("analyze: calendar events for user %d: %v", ownerID, err)
		return FallbackPlan(prefs), nil
	}

	pending, err := o.Tasks.ListPending(ctx, ownerID)
	if err != nil {
		log.Printf("analyze: pending tasks for user %d: %v", ownerID, err)
		return FallbackPlan(prefs), nil
	}

	callCtx, cancel := o.callContext(ctx)
	defer cancel()
	analysis, err := o.Recommender.AnalyzeSchedule(callCtx, Snapshot{
		Events:      events,
		Tasks:       pending,
		Preferences: prefs,
		TaskBacklog: len(pending),
	})
	if err != nil {
		log.Printf("analyze: recommender for user %d: %v", ownerID, err)
		return FallbackPlan(prefs), nil
	}
	return analysis, nil
}

// SuggestTime returns up to three scored candidate slots for a single task.
// When the recommendation is unavailable it degrades to the fallback plan's
// focus blocks, projected onto today's date at a fixed moderate score.
func (o *Optimizer) SuggestTime(ctx context.Context, ownerID, taskID int) ([]SlotSuggestion, error) {
	user, err := o.Users.Get(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("suggest time: load user %d: %w", ownerID, err)
	}
	prefs := user.Preferences
	loc := prefs.Location()

	task, err := o.Tasks.Get(ctx, ownerID, taskID)
	if err != nil {
		return nil, fmt.Errorf("suggest time: load task %d: %w", taskID, err)
	}

	windowStart := startOfDay(o.now().In(loc))
	windowEnd := windowStart.AddDate(0, 0, 2)
	events, err := o.fetchEvents(ctx, ownerID, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("suggest time: calendar events: %w", err)
	}

	pool := FindFreeSlots(windowStart, windowEnd, busyFromEvents(events), SlotOptions{
		WorkStartHour:      prefs.WorkStartHour,
		WorkEndHour:        prefs.WorkEndHour,
		MinDurationMinutes: o.minSlot(),
		Location:           loc,
	})

	callCtx, cancel := o.callContext(ctx)
	suggestions, err := o.Recommender.SuggestTimeSlots(callCtx, events, pool, task.TaskType, task.DurationMinutes, prefs)
	cancel()
	if err == nil {
		if len(suggestions) > 3 {
			suggestions = suggestions[:3]
		}
		return suggestions, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("suggest time: %w", ctxErr)
	}
	log.Printf("suggest time: recommender for task %d: %v", taskID, err)

	// Degrade to the fallback plan's focus blocks at a fixed score.
	plan := FallbackPlan(prefs)
	out := []SlotSuggestion{}
	for _, slot := range plan.OptimalSlots {
		if len(out) == 3 {
			break
		}
		start, err1 := clockOnDay(windowStart, slot.Start, loc)
		end, err2 := clockOnDay(windowStart, slot.End, loc)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, SlotSuggestion{
			StartTime: start,
			EndTime:   end,
			Score:     70,
			Reason:    "Standard focus block (recommendation unavailable)",
		})
	}
	return out, nil
}

func (o *Optimizer) fetchEvents(ctx context.Context, ownerID int, start, end time.Time) ([]Event, error) {
	cal, err := o.Calendar(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("calendar access: %w", err)
	}
	return cal.GetEvents(ctx, start, end)
}

// clockOnDay places an "HH:MM" clock time onto the given day.
func clockOnDay(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse clock %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
