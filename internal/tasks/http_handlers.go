package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"timewise-backend/internal/auth"
)

// EventWriter mirrors a scheduled task onto the user's external calendar.
type EventWriter func(ctx context.Context, ownerID int, title string, start, end time.Time, taskType string) error

// Handler serves task CRUD. The event writer, when present, mirrors newly
// scheduled tasks onto the user's calendar; those writes are fire-and-forget.
type Handler struct {
	Store  *Store
	Events EventWriter
}

func NewHandler(store *Store, events EventWriter) *Handler {
	return &Handler{Store: store, Events: events}
}

type taskRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	TaskType        *string    `json:"task_type"`
	Priority        *int       `json:"priority"`
	DurationMinutes *int       `json:"duration"`
	ScheduledTime   *time.Time `json:"scheduled_time"`
	Status          *string    `json:"status"`
}

// Collection handles GET and POST /tasks.
func (h *Handler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// Item handles PUT and DELETE /tasks/{id}.
func (h *Handler) Item(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/tasks/"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ts, err := h.Store.ListAll(r.Context(), uid)
	if err != nil {
		log.Printf("tasks: list: %v", err)
		http.Error(w, "db query error", http.StatusInternalServerError)
		return
	}
	if ts == nil {
		ts = []Task{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ts)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var body taskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	t := Task{
		UserID:          uid,
		TaskType:        TypeWork,
		Priority:        3,
		DurationMinutes: 30,
		Status:          StatusPending,
		AIMetadata:      DefaultAIMetadata(),
	}
	if err := applyRequest(&t, body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if t.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	created, err := h.Store.Create(r.Context(), t)
	if err != nil {
		log.Printf("tasks: create: %v", err)
		http.Error(w, "db insert error", http.StatusInternalServerError)
		return
	}

	h.mirrorToCalendar(r, created)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, id int) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var body taskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	t, err := h.Store.Get(r.Context(), uid, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		log.Printf("tasks: update: %v", err)
		http.Error(w, "db query error", http.StatusInternalServerError)
		return
	}

	rescheduled := body.ScheduledTime != nil
	if err := applyRequest(&t, body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.Store.Update(r.Context(), t)
	if err != nil {
		log.Printf("tasks: update: %v", err)
		http.Error(w, "db update error", http.StatusInternalServerError)
		return
	}

	if rescheduled {
		h.mirrorToCalendar(r, updated)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, id int) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Store.Delete(r.Context(), uid, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		log.Printf("tasks: delete: %v", err)
		http.Error(w, "db delete error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
}

// mirrorToCalendar writes a scheduled task onto the user's calendar.
// Failures are logged only; the task change is already committed.
func (h *Handler) mirrorToCalendar(r *http.Request, t Task) {
	if h.Events == nil || t.ScheduledTime == nil {
		return
	}
	end := t.ScheduledTime.Add(time.Duration(t.DurationMinutes) * time.Minute)
	if err := h.Events(r.Context(), t.UserID, t.Title, *t.ScheduledTime, end, t.TaskType); err != nil {
		log.Printf("tasks: calendar event for task %d: %v", t.ID, err)
	}
}

func applyRequest(t *Task, body taskRequest) error {
	if body.Title != nil {
		t.Title = strings.TrimSpace(*body.Title)
	}
	if body.Description != nil {
		t.Description = strings.TrimSpace(*body.Description)
	}
	if body.TaskType != nil {
		if !ValidType(*body.TaskType) {
			return errors.New("invalid task_type")
		}
		t.TaskType = *body.TaskType
	}
	if body.Priority != nil {
		if *body.Priority < 1 || *body.Priority > 5 {
			return errors.New("priority must be between 1 and 5")
		}
		t.Priority = *body.Priority
	}
	if body.DurationMinutes != nil {
		if *body.DurationMinutes <= 0 {
			return errors.New("duration must be positive")
		}
		t.DurationMinutes = *body.DurationMinutes
	}
	if body.ScheduledTime != nil {
		st := *body.ScheduledTime
		t.ScheduledTime = &st
	}
	if body.Status != nil {
		if !ValidStatus(*body.Status) {
			return errors.New("invalid status")
		}
		t.Status = *body.Status
	}
	return nil
}
