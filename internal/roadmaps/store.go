package roadmaps

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when the owner has no roadmap yet.
var ErrNotFound = errors.New("roadmap not found")

type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Latest returns the highest roadmap version of the owner.
func (s *Store) Latest(ctx context.Context, ownerID int) (Roadmap, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT id, user_id, version, content, created_at
		FROM roadmaps
		WHERE user_id=$1
		ORDER BY version DESC
		LIMIT 1`,
		ownerID)

	var (
		r       Roadmap
		content []byte
	)
	err := row.Scan(&r.ID, &r.UserID, &r.Version, &content, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Roadmap{}, ErrNotFound
	}
	if err != nil {
		return Roadmap{}, fmt.Errorf("latest roadmap: %w", err)
	}
	if err := json.Unmarshal(content, &r.Content); err != nil {
		return Roadmap{}, fmt.Errorf("decode roadmap content: %w", err)
	}
	return r, nil
}

// Create stores a new roadmap version for the owner, one higher than the
// current latest.
func (s *Store) Create(ctx context.Context, ownerID int, content Content) (Roadmap, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return Roadmap{}, fmt.Errorf("encode roadmap content: %w", err)
	}

	r := Roadmap{UserID: ownerID, Content: content}
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO roadmaps (user_id, content, version)
		VALUES ($1, $2::jsonb,
		        COALESCE((SELECT MAX(version) FROM roadmaps WHERE user_id=$1), 0) + 1)
		RETURNING id, version, created_at`,
		ownerID, string(raw))
	if err := row.Scan(&r.ID, &r.Version, &r.CreatedAt); err != nil {
		return Roadmap{}, fmt.Errorf("insert roadmap: %w", err)
	}
	return r, nil
}
