package schedule

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"timewise-backend/internal/analytics"
	"timewise-backend/internal/auth"
	"timewise-backend/internal/tasks"
)

// Handler exposes the optimization engine over HTTP.
type Handler struct {
	Optimizer   *Optimizer
	Prioritizer *Prioritizer
	Tasks       TaskSource
	Users       UserSource
	DB          *sql.DB
}

type quickOptimizeRequest struct {
	ApplyChanges bool  `json:"apply_changes"`
	TaskIDs      []int `json:"task_ids,omitempty"`
}

// QuickOptimize handles POST /ai/quick-optimize.
func (h *Handler) QuickOptimize(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// An empty body means a dry run over all eligible tasks.
	var body quickOptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	result, err := h.Optimizer.QuickOptimize(r.Context(), OptimizeRequest{
		OwnerID:      uid,
		ApplyChanges: body.ApplyChanges,
		TaskIDs:      body.TaskIDs,
	})
	if err != nil {
		log.Printf("schedule: quick optimize for user %d: %v", uid, err)
		http.Error(w, "optimization failed", http.StatusBadGateway)
		return
	}

	fallbacks := 0
	for _, entry := range result.Optimizations {
		if entry.Fallback {
			fallbacks++
		}
	}
	analytics.Log(r.Context(), h.DB, analytics.EventQuickOptimize, map[string]any{
		"applied":       body.ApplyChanges,
		"optimizations": len(result.Optimizations),
		"fallbacks":     fallbacks,
	})

	writeJSON(w, result)
}

// Analyze handles GET /ai/analyze.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	analysis, err := h.Optimizer.Analyze(r.Context(), uid)
	if err != nil {
		log.Printf("schedule: analyze for user %d: %v", uid, err)
		http.Error(w, "analysis failed", http.StatusInternalServerError)
		return
	}

	analytics.Log(r.Context(), h.DB, analytics.EventAnalyzeSchedule, map[string]any{
		"wellness_score": analysis.WellnessScore,
	})

	writeJSON(w, analysis)
}

type suggestTimeRequest struct {
	TaskID int `json:"task_id"`
}

// SuggestTime handles POST /ai/suggest-time.
func (h *Handler) SuggestTime(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body suggestTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if body.TaskID <= 0 {
		http.Error(w, "task_id is required", http.StatusBadRequest)
		return
	}

	suggestions, err := h.Optimizer.SuggestTime(r.Context(), uid, body.TaskID)
	if err != nil {
		if errors.Is(err, tasks.ErrNotFound) {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		log.Printf("schedule: suggest time for user %d task %d: %v", uid, body.TaskID, err)
		http.Error(w, "suggestion failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, map[string]any{"suggestions": suggestions})
}

type prioritizeRequest struct {
	Goals          []string `json:"goals"`
	UpdateDatabase bool     `json:"update_database"`
}

// Prioritize handles POST /ai/prioritize. It scores all pending tasks of the
// caller; there is no fallback, a recommender failure is surfaced as 502.
func (h *Handler) Prioritize(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body prioritizeRequest
	_ = json.NewDecoder(r.Body).Decode(&body)

	pending, err := h.Tasks.ListPending(r.Context(), uid)
	if err != nil {
		log.Printf("schedule: prioritize list for user %d: %v", uid, err)
		http.Error(w, "db query error", http.StatusInternalServerError)
		return
	}
	if len(pending) == 0 {
		writeJSON(w, map[string]any{"prioritized_tasks": []PrioritizedTask{}})
		return
	}

	ranked, err := h.Prioritizer.Prioritize(r.Context(), uid, pending, body.Goals, body.UpdateDatabase)
	if err != nil {
		log.Printf("schedule: prioritize for user %d: %v", uid, err)
		http.Error(w, "prioritization failed", http.StatusBadGateway)
		return
	}

	analytics.Log(r.Context(), h.DB, analytics.EventPrioritizeTasks, map[string]any{
		"task_count": len(ranked),
		"persisted":  body.UpdateDatabase,
	})

	writeJSON(w, map[string]any{"prioritized_tasks": ranked})
}

// Dashboard handles GET /dashboard: today's events, pending tasks, the free
// slots still open today, and task counts. Calendar failures leave the events
// and slots empty rather than failing the whole view.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, err := h.Users.Get(r.Context(), uid)
	if err != nil {
		log.Printf("schedule: dashboard user %d: %v", uid, err)
		http.Error(w, "db query error", http.StatusInternalServerError)
		return
	}
	prefs := user.Preferences
	loc := prefs.Location()

	dayStart := startOfDay(h.Optimizer.now().In(loc))
	dayEnd := dayStart.AddDate(0, 0, 1)

	events, err := h.Optimizer.fetchEvents(r.Context(), uid, dayStart, dayEnd)
	if err != nil {
		log.Printf("schedule: dashboard events for user %d: %v", uid, err)
		events = []Event{}
	}

	freeSlots := FindFreeSlots(dayStart, dayEnd, busyFromEvents(events), SlotOptions{
		WorkStartHour:      prefs.WorkStartHour,
		WorkEndHour:        prefs.WorkEndHour,
		MinDurationMinutes: h.Optimizer.minSlot(),
		Location:           loc,
	})

	all, err := h.Tasks.ListAll(r.Context(), uid)
	if err != nil {
		log.Printf("schedule: dashboard tasks for user %d: %v", uid, err)
		http.Error(w, "db query error", http.StatusInternalServerError)
		return
	}

	byStatus := map[string]int{}
	byType := map[string]int{}
	pending := []tasks.Task{}
	for _, t := range all {
		byStatus[t.Status]++
		byType[t.TaskType]++
		if t.Status == tasks.StatusPending {
			pending = append(pending, t)
		}
	}

	writeJSON(w, map[string]any{
		"events":          events,
		"pending_tasks":   pending,
		"free_slots":      freeSlots,
		"tasks_by_status": byStatus,
		"tasks_by_type":   byType,
	})
}

func requireUser(w http.ResponseWriter, r *http.Request) (int, bool) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return uid, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
