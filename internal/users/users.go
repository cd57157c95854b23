package users

import (
	"time"
)

// Chronotypes.
const (
	ChronotypeEarly        = "early"
	ChronotypeIntermediate = "intermediate"
	ChronotypeNight        = "night"
)

// Preferences is the per-user scheduling profile, stored as a JSON column.
type Preferences struct {
	Theme                string `json:"theme"`
	Timezone             string `json:"timezone"`
	Chronotype           string `json:"chronotype"`
	WorkStartHour        int    `json:"workStartHour"`
	WorkEndHour          int    `json:"workEndHour"`
	FocusHours           []int  `json:"focusHours"`
	BreakDurationMinutes int    `json:"breakDuration"`
	FocusBlockMinutes    int    `json:"focusTime"`
}

// DefaultPreferences returns the profile assigned to new users.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:                "dark",
		Timezone:             "UTC",
		Chronotype:           ChronotypeIntermediate,
		WorkStartHour:        9,
		WorkEndHour:          17,
		FocusHours:           []int{10, 11, 14, 15},
		BreakDurationMinutes: 15,
		FocusBlockMinutes:    90,
	}
}

// Location resolves the preference timezone, falling back to UTC
// when the name is empty or unknown.
func (p Preferences) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type User struct {
	ID           int         `json:"id"`
	Email        string      `json:"email"`
	GoogleID     string      `json:"google_id,omitempty"`
	AccessToken  string      `json:"-"`
	RefreshToken string      `json:"-"`
	TokenExpiry  *time.Time  `json:"-"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"created_at"`
}
