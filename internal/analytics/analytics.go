package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

type ctxKey string

const ctxUserIDKey ctxKey = "analytics_user_id"

func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(ctxUserIDKey)
	if v == nil {
		return 0, false
	}
	uid, ok := v.(int)
	return uid, ok
}

// Event names recorded by the handlers.
const (
	EventAppOpened        = "app_opened"
	EventQuickOptimize    = "schedule_quick_optimize"
	EventAnalyzeSchedule  = "schedule_analyze"
	EventPrioritizeTasks  = "tasks_prioritize"
	EventRoadmapGenerated = "roadmap_generated"
)

// Log inserts one analytics event. Best effort: it never returns an error to
// the caller and never breaks the core flow. Callers pass sanitized props.
func Log(ctx context.Context, db *sql.DB, eventName string, props any) {
	if eventName == "" || db == nil {
		return
	}
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return
	}

	b, err := json.Marshal(props)
	if err != nil {
		return
	}

	_, _ = db.ExecContext(ctx, `
		INSERT INTO analytics_events (event_name, event_time, user_id, properties)
		VALUES ($1, $2, $3, $4::jsonb)`,
		eventName, time.Now().UTC(), userID, string(b),
	)
}
