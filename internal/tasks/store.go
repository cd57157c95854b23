package tasks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a task does not exist or belongs to another user.
var ErrNotFound = errors.New("task not found")

// Store reads and writes task rows. All queries are scoped to the owning user.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

const taskColumns = `
	id, user_id, title, COALESCE(description,''), task_type, priority,
	duration, scheduled_time, status, ai_metadata, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (Task, error) {
	var (
		t         Task
		scheduled sql.NullTime
		meta      []byte
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.TaskType, &t.Priority,
		&t.DurationMinutes, &scheduled, &t.Status, &meta, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return Task{}, err
	}
	if scheduled.Valid {
		ts := scheduled.Time
		t.ScheduledTime = &ts
	}
	t.AIMetadata = DefaultAIMetadata()
	if len(meta) > 0 {
		// Bad metadata should not make a task unreadable.
		_ = json.Unmarshal(meta, &t.AIMetadata)
	}
	return t, nil
}

func (s *Store) Get(ctx context.Context, ownerID, taskID int) (Task, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id=$1 AND user_id=$2`,
		taskID, ownerID,
	)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListAll returns every task of the owner, newest first.
func (s *Store) ListAll(ctx context.Context, ownerID int) ([]Task, error) {
	return s.list(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id=$1
		ORDER BY created_at DESC`,
		ownerID)
}

// ListPending returns all pending tasks of the owner ordered by priority.
func (s *Store) ListPending(ctx context.Context, ownerID int) ([]Task, error) {
	return s.list(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id=$1 AND status='pending'
		ORDER BY priority ASC, id ASC`,
		ownerID)
}

// FindPending returns pending tasks whose scheduled time falls inside [start, end).
func (s *Store) FindPending(ctx context.Context, ownerID int, start, end time.Time) ([]Task, error) {
	return s.list(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id=$1 AND status='pending'
		  AND scheduled_time >= $2 AND scheduled_time < $3
		ORDER BY scheduled_time ASC, id ASC`,
		ownerID, start, end)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, t Task) (Task, error) {
	meta, err := json.Marshal(t.AIMetadata)
	if err != nil {
		return Task{}, fmt.Errorf("marshal ai_metadata: %w", err)
	}
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO tasks (user_id, title, description, task_type, priority, duration,
		                   scheduled_time, status, ai_metadata)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9::jsonb)
		RETURNING id, created_at, updated_at`,
		t.UserID, t.Title, t.Description, t.TaskType, t.Priority, t.DurationMinutes,
		nullableTime(t.ScheduledTime), t.Status, string(meta),
	)
	if err := row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

func (s *Store) Update(ctx context.Context, t Task) (Task, error) {
	meta, err := json.Marshal(t.AIMetadata)
	if err != nil {
		return Task{}, fmt.Errorf("marshal ai_metadata: %w", err)
	}
	res, err := s.DB.ExecContext(ctx, `
		UPDATE tasks
		SET title=$1, description=$2, task_type=$3, priority=$4, duration=$5,
		    scheduled_time=$6, status=$7, ai_metadata=$8::jsonb, updated_at=now()
		WHERE id=$9 AND user_id=$10`,
		t.Title, t.Description, t.TaskType, t.Priority, t.DurationMinutes,
		nullableTime(t.ScheduledTime), t.Status, string(meta),
		t.ID, t.UserID,
	)
	if err != nil {
		return Task{}, fmt.Errorf("update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Task{}, ErrNotFound
	}
	return s.Get(ctx, t.UserID, t.ID)
}

func (s *Store) Delete(ctx context.Context, ownerID, taskID int) error {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM tasks WHERE id=$1 AND user_id=$2`, taskID, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateScheduledTime rewrites only the scheduled time of one task.
func (s *Store) UpdateScheduledTime(ctx context.Context, ownerID, taskID int, at time.Time) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE tasks SET scheduled_time=$1, updated_at=now()
		WHERE id=$2 AND user_id=$3`,
		at, taskID, ownerID)
	if err != nil {
		return fmt.Errorf("update scheduled_time: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePriority rewrites only the priority of one task.
func (s *Store) UpdatePriority(ctx context.Context, ownerID, taskID, priority int) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE tasks SET priority=$1, updated_at=now()
		WHERE id=$2 AND user_id=$3`,
		priority, taskID, ownerID)
	if err != nil {
		return fmt.Errorf("update priority: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
