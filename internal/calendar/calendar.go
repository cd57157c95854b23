// Package calendar wraps the user's Google Calendar behind the engine's
// reader/writer interfaces. A Service is a per-request capability object
// built from the user's stored tokens; it holds no process-global state.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"timewise-backend/internal/schedule"
)

var (
	// ErrProviderUnavailable means the calendar provider could not be reached
	// or answered with a non-auth failure. Fatal for the current run.
	ErrProviderUnavailable = errors.New("calendar provider unavailable")

	// ErrAuthExpired means the stored tokens no longer grant access.
	ErrAuthExpired = errors.New("calendar authorization expired")
)

// Google Calendar color ids by task type, and back.
var colorByTaskType = map[string]string{
	"work":     "1", // blue
	"health":   "2", // green
	"personal": "4", // purple
}

var taskTypeByColor = map[string]string{
	"1": "work",
	"2": "health",
	"4": "personal",
}

// Credentials are the user's stored OAuth tokens.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// PersistTokens is invoked whenever the provider hands back a refreshed
// access token, so the caller can store it. Reported as a side effect rather
// than hidden mutation; a persist failure is logged but does not fail the
// calendar call that triggered the refresh.
type PersistTokens func(ctx context.Context, creds Credentials) error

// OAuthConfig builds the Google OAuth config for calendar access.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{gcal.CalendarScope},
		Endpoint:     google.Endpoint,
	}
}

// Service reads and writes the user's primary calendar.
type Service struct {
	api *gcal.Service
}

// NewService builds a calendar capability from one user's credentials.
func NewService(ctx context.Context, cfg *oauth2.Config, creds Credentials, persist PersistTokens) (*Service, error) {
	if creds.AccessToken == "" && creds.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no stored tokens", ErrAuthExpired)
	}

	base := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.Expiry,
		TokenType:    "Bearer",
	}
	src := &persistingSource{
		ctx:        ctx,
		src:        cfg.TokenSource(ctx, base),
		lastAccess: creds.AccessToken,
		persist:    persist,
	}

	api, err := gcal.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return &Service{api: api}, nil
}

// GetEvents lists the user's events in [start, end), ordered by start time.
// All-day events carry no concrete time and are skipped.
func (s *Service) GetEvents(ctx context.Context, start, end time.Time) ([]schedule.Event, error) {
	res, err := s.api.Events.List("primary").
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError("list events", err)
	}

	events := make([]schedule.Event, 0, len(res.Items))
	for _, item := range res.Items {
		if item.Start == nil || item.End == nil || item.Start.DateTime == "" || item.End.DateTime == "" {
			continue
		}
		evStart, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			continue
		}
		evEnd, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			continue
		}
		events = append(events, schedule.Event{
			ID:       item.Id,
			Title:    item.Summary,
			Start:    evStart,
			End:      evEnd,
			ColorTag: taskTypeByColor[item.ColorId],
		})
	}
	return events, nil
}

// CreateEvent inserts an event on the primary calendar, colored by task type.
func (s *Service) CreateEvent(ctx context.Context, ev schedule.Event, taskType string) (string, error) {
	payload := &gcal.Event{
		Summary: ev.Title,
		Start:   &gcal.EventDateTime{DateTime: ev.Start.Format(time.RFC3339)},
		End:     &gcal.EventDateTime{DateTime: ev.End.Format(time.RFC3339)},
		ColorId: colorByTaskType[taskType],
	}
	created, err := s.api.Events.Insert("primary", payload).Context(ctx).Do()
	if err != nil {
		return "", mapError("insert event", err)
	}
	return created.Id, nil
}

func mapError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == 401 || apiErr.Code == 403) {
		return fmt.Errorf("%w: %s: %v", ErrAuthExpired, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, op, err)
}

// persistingSource wraps a token source and reports refreshed tokens back.
type persistingSource struct {
	ctx     context.Context
	src     oauth2.TokenSource
	persist PersistTokens

	mu         sync.Mutex
	lastAccess string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	refreshed := tok.AccessToken != p.lastAccess
	if refreshed {
		p.lastAccess = tok.AccessToken
	}
	p.mu.Unlock()

	if refreshed && p.persist != nil {
		creds := Credentials{
			AccessToken:  tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			Expiry:       tok.Expiry,
		}
		if err := p.persist(p.ctx, creds); err != nil {
			log.Printf("calendar: persisting refreshed tokens: %v", err)
		}
	}
	return tok, nil
}
