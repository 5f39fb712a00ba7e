package models

import "time"

// Status is the stored status of a check-in
type Status string

const (
	StatusCompleted Status = "completed"
	StatusMissed    Status = "missed"
	// StatusSkipped is only read back from legacy records; nothing writes it anymore.
	StatusSkipped Status = "skipped"
)

// Valid reports whether s is a status the server accepts
func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusMissed, StatusSkipped:
		return true
	}
	return false
}

// Checkin is a habit's status for one calendar day.
// At most one check-in exists per (HabitID, Date).
type Checkin struct {
	ID        int        `json:"id"`
	HabitID   int        `json:"habit_id"`
	Date      string     `json:"date"` // YYYY-MM-DD format
	Status    Status     `json:"status"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// CheckinInput is the body of the create-or-update check-in mutation
type CheckinInput struct {
	Date   string `json:"date"`
	Status Status `json:"status"`
}

// BatchCheckin is one element of a batch check-in update
type BatchCheckin struct {
	HabitID int    `json:"habit_id"`
	Date    string `json:"date"`
	Status  Status `json:"status"`
}

// StreakUpdate carries the authoritative streak numbers returned by a check-in mutation
type StreakUpdate struct {
	CurrentStreak int      `json:"current_streak"`
	LongestStreak int      `json:"longest_streak"`
	Checkin       *Checkin `json:"checkin,omitempty"`
}

// DayState is the derived, never persisted, state of a habit on a date
type DayState string

const (
	DayCompleted    DayState = "completed"
	DayMissed       DayState = "missed"
	DaySkipped      DayState = "skipped"
	DayNotScheduled DayState = "not-scheduled"
	DayNotMarked    DayState = "not-marked"
)

// StateOf converts a stored status into its day state
func StateOf(s Status) DayState {
	return DayState(s)
}

// Done reports whether the state counts toward the completed bucket
func (d DayState) Done() bool {
	return d == DayCompleted
}
