package tui

import (
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/toggle"
)

// ChangeMsg is a controller state change
type ChangeMsg struct {
	toggle.Change
}

// RefreshMsg means aggregate counters may be stale
type RefreshMsg struct{}

// ToastMsg shows a transient message at the bottom of the screen
type ToastMsg struct {
	Text string
}

type clearToastMsg struct {
	id int
}

type refreshedMsg struct {
	date string
	err  error
}

type toggledMsg struct {
	habitID int
	err     error
}

type monthMsg struct {
	err error
}

type summaryMsg struct {
	summary models.AnalyticsSummary
	err     error
}

type quoteMsg struct {
	quote models.Quote
	err   error
}

type savedMsg struct {
	habit   models.Habit
	deleted bool
	err     error
}
