package roadmaps

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"timewise-backend/internal/analytics"
	"timewise-backend/internal/auth"
	"timewise-backend/internal/schedule"
	"timewise-backend/internal/tasks"
	"timewise-backend/internal/users"
)

const historyWindowDays = 30

// Handler serves roadmap generation and retrieval.
type Handler struct {
	Store     *Store
	Tasks     *tasks.Store
	Users     *users.Store
	Generator Generator
	Calendar  schedule.CalendarFactory
	DB        *sql.DB
}

type generateRequest struct {
	Goals []string `json:"goals"`
	Days  int      `json:"days"`
}

// Generate handles POST /ai/generate-roadmap. The generator's failure is not
// the user's problem: the handler falls back to the deterministic plan and
// still stores a new version.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if body.Days <= 0 {
		body.Days = historyWindowDays
	}

	user, err := h.Users.Get(r.Context(), uid)
	if err != nil {
		log.Printf("roadmaps: load user %d: %v", uid, err)
		http.Error(w, "db query error", http.StatusInternalServerError)
		return
	}

	all, err := h.Tasks.ListAll(r.Context(), uid)
	if err != nil {
		log.Printf("roadmaps: load tasks for user %d: %v", uid, err)
		http.Error(w, "db query error", http.StatusInternalServerError)
		return
	}

	profile := buildProfile(user, all)
	history := h.buildHistory(r, uid, all)

	content, err := h.Generator.GenerateRoadmap(r.Context(), profile, history, body.Goals)
	fellBack := false
	if err != nil {
		log.Printf("roadmaps: generator for user %d, using basic plan: %v", uid, err)
		content = BasicContent(body.Days, pendingOf(all))
		fellBack = true
	}

	roadmap, err := h.Store.Create(r.Context(), uid, content)
	if err != nil {
		log.Printf("roadmaps: store for user %d: %v", uid, err)
		http.Error(w, "db insert error", http.StatusInternalServerError)
		return
	}

	analytics.Log(r.Context(), h.DB, analytics.EventRoadmapGenerated, map[string]any{
		"version":  roadmap.Version,
		"fallback": fellBack,
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":  true,
		"fallback": fellBack,
		"roadmap":  roadmap,
	})
}

// Latest handles GET /roadmaps/latest.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	roadmap, err := h.Store.Latest(r.Context(), uid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "no roadmap yet", http.StatusNotFound)
			return
		}
		log.Printf("roadmaps: latest for user %d: %v", uid, err)
		http.Error(w, "db query error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(roadmap)
}

func buildProfile(user users.User, all []tasks.Task) Profile {
	byType := map[string]int{}
	for _, t := range all {
		byType[t.TaskType]++
	}
	return Profile{
		Preferences:      user.Preferences,
		CurrentTaskCount: len(all),
		TasksByType:      byType,
	}
}

// buildHistory summarizes the last 30 days. Calendar access is optional; a
// failure leaves the event list empty.
func (h *Handler) buildHistory(r *http.Request, uid int, all []tasks.Task) History {
	now := time.Now()
	start := now.AddDate(0, 0, -historyWindowDays)

	completed := 0
	for _, t := range all {
		if t.Status == tasks.StatusCompleted {
			completed++
		}
	}

	hist := History{
		Events:             []HistoryEvent{},
		CompletedTasks:     completed,
		AverageTasksPerDay: float64(completed) / historyWindowDays,
	}

	if h.Calendar == nil {
		return hist
	}
	cal, err := h.Calendar(r.Context(), uid)
	if err != nil {
		log.Printf("roadmaps: calendar access for user %d: %v", uid, err)
		return hist
	}
	events, err := cal.GetEvents(r.Context(), start, now)
	if err != nil {
		log.Printf("roadmaps: calendar history for user %d: %v", uid, err)
		return hist
	}
	for _, ev := range events {
		hist.Events = append(hist.Events, HistoryEvent{
			Title: ev.Title,
			Start: ev.Start,
			End:   ev.End,
			Type:  ev.ColorTag,
		})
	}
	return hist
}

func pendingOf(all []tasks.Task) []tasks.Task {
	var out []tasks.Task
	for _, t := range all {
		if t.Status == tasks.StatusPending {
			out = append(out, t)
		}
	}
	return out
}
