package checkin

import (
	"time"

	"github.com/julianstephens/habitvault/internal/logger"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/schedule"
	"github.com/julianstephens/habitvault/internal/utils"
)

// Resolve derives the state of h on date. An explicit check-in wins, then
// schedule exclusion, then an inferred miss for past days on or after the
// habit's start date. Anything else is not marked yet.
//
// today must be supplied by the caller's clock.
func Resolve(h models.Habit, date, today time.Time, idx Getter) models.DayState {
	day := utils.FormatDate(date)
	if idx != nil {
		if c, ok := idx.Get(h.ID, day); ok {
			return models.StateOf(c.Status)
		}
	}

	if !schedule.HabitScheduled(h, date) {
		return models.DayNotScheduled
	}

	// Dates compare lexically in YYYY-MM-DD form
	if day < utils.FormatDate(today) {
		if start, ok := startDate(h); !ok || day >= start {
			return models.DayMissed
		}
	}

	return models.DayNotMarked
}

// startDate is the habit's first day. A missing or unreadable start date has
// no lower bound.
func startDate(h models.Habit) (string, bool) {
	if h.StartDate == "" {
		return "", false
	}
	start, err := utils.NormalizeDate(h.StartDate)
	if err != nil {
		logger.Warn("ignoring habit start date", "habit", h.ID, "start_date", h.StartDate, "error", err)
		return "", false
	}
	return start, true
}

// Tally counts resolved states across habits for one day
type Tally struct {
	Scheduled int
	Completed int
	Missed    int
	Skipped   int
	NotMarked int
}

// Counts resolves every habit on date and tallies the results.
// Not-scheduled habits count toward nothing.
func Counts(habits []models.Habit, date, today time.Time, idx Getter) Tally {
	var t Tally
	for _, h := range habits {
		switch Resolve(h, date, today, idx) {
		case models.DayNotScheduled:
			continue
		case models.DayCompleted:
			t.Completed++
		case models.DayMissed:
			t.Missed++
		case models.DaySkipped:
			t.Skipped++
		default:
			t.NotMarked++
		}
		t.Scheduled++
	}
	return t
}

// Split sorts habits that apply on date into completed and incomplete,
// keeping their input order.
func Split(habits []models.Habit, date, today time.Time, idx Getter) (completed, incomplete []models.Habit) {
	for _, h := range habits {
		state := Resolve(h, date, today, idx)
		switch {
		case state == models.DayNotScheduled:
		case state.Done():
			completed = append(completed, h)
		default:
			incomplete = append(incomplete, h)
		}
	}
	return completed, incomplete
}
