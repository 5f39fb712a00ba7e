package models

import "time"

// TargetType is the recurrence rule of a habit
type TargetType string

const (
	TargetDaily    TargetType = "daily"
	TargetWeekdays TargetType = "weekdays"
	TargetCustom   TargetType = "custom"
)

// Valid reports whether t is one of the known target types
func (t TargetType) Valid() bool {
	switch t {
	case TargetDaily, TargetWeekdays, TargetCustom:
		return true
	}
	return false
}

// Habit is a recurring practice tracked by the server.
// Streak fields are maintained by the server and refreshed after every check-in.
type Habit struct {
	ID            int        `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	TargetType    TargetType `json:"target_type"`
	TargetDays    []string   `json:"target_days,omitempty"` // mon..sun, only for custom
	StartDate     string     `json:"start_date"`            // YYYY-MM-DD format
	CurrentStreak int        `json:"current_streak"`
	LongestStreak int        `json:"longest_streak"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// HabitInput is the request body for creating or updating a habit
type HabitInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	TargetType  TargetType `json:"target_type"`
	TargetDays  []string   `json:"target_days,omitempty"`
	StartDate   string     `json:"start_date,omitempty"`
}

// ApplyStreaks copies authoritative streak numbers onto the habit
func (h *Habit) ApplyStreaks(s StreakUpdate) {
	h.CurrentStreak = s.CurrentStreak
	h.LongestStreak = s.LongestStreak
}
