package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

const userColumns = `
	id, email, COALESCE(google_id,''), COALESCE(access_token,''),
	COALESCE(refresh_token,''), token_expiry, preferences, created_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var (
		u      User
		expiry sql.NullTime
		prefs  []byte
	)
	err := row.Scan(&u.ID, &u.Email, &u.GoogleID, &u.AccessToken,
		&u.RefreshToken, &expiry, &prefs, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	if expiry.Valid {
		t := expiry.Time
		u.TokenExpiry = &t
	}
	u.Preferences = DefaultPreferences()
	if len(prefs) > 0 {
		_ = json.Unmarshal(prefs, &u.Preferences)
	}
	return u, nil
}

func (s *Store) Get(ctx context.Context, id int) (User, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Store) ByEmail(ctx context.Context, email string) (User, string, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+`, password_hash FROM users WHERE email=$1`, email)
	var (
		u      User
		expiry sql.NullTime
		prefs  []byte
		hash   string
	)
	err := row.Scan(&u.ID, &u.Email, &u.GoogleID, &u.AccessToken,
		&u.RefreshToken, &expiry, &prefs, &u.CreatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, "", ErrNotFound
	}
	if err != nil {
		return User{}, "", fmt.Errorf("get user by email: %w", err)
	}
	if expiry.Valid {
		t := expiry.Time
		u.TokenExpiry = &t
	}
	u.Preferences = DefaultPreferences()
	if len(prefs) > 0 {
		_ = json.Unmarshal(prefs, &u.Preferences)
	}
	return u, hash, nil
}

func (s *Store) Create(ctx context.Context, email, passwordHash string) (User, error) {
	prefs, err := json.Marshal(DefaultPreferences())
	if err != nil {
		return User{}, fmt.Errorf("marshal preferences: %w", err)
	}
	u := User{Email: email, Preferences: DefaultPreferences()}
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, preferences)
		VALUES ($1, $2, $3::jsonb)
		RETURNING id, created_at`,
		email, passwordHash, string(prefs))
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// SaveGoogleTokens stores (or refreshes) the user's calendar OAuth tokens.
// An empty refresh token keeps the previously stored one, matching the
// provider's habit of omitting it on refresh.
func (s *Store) SaveGoogleTokens(ctx context.Context, id int, accessToken, refreshToken string, expiry time.Time) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE users
		SET access_token=$1,
		    refresh_token=COALESCE(NULLIF($2,''), refresh_token),
		    token_expiry=$3
		WHERE id=$4`,
		accessToken, refreshToken, expiry, id)
	if err != nil {
		return fmt.Errorf("save google tokens: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdatePreferences(ctx context.Context, id int, p Preferences) error {
	prefs, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET preferences=$1::jsonb WHERE id=$2`, string(prefs), id)
	if err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
