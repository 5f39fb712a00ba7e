package toggle

import (
	"sort"

	"github.com/julianstephens/habitvault/internal/checkin"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/utils"
)

// DayView is one habit as shown for a day
type DayView struct {
	Habit  models.Habit
	Status models.DayState
	State  State
}

// Snapshot is a consistent copy of the controller's view of one date
type Snapshot struct {
	Date  string
	Days  []DayView
	Tally checkin.Tally
	// Completed and Incomplete hold the habits that apply on Date
	Completed  []models.Habit
	Incomplete []models.Habit
	// Unavailable lists habits whose check-ins could not be fetched for Date
	Unavailable []int
}

// Snapshot copies the state of every habit on date
func (c *Controller) Snapshot(date string) (Snapshot, error) {
	day, err := utils.ParseDate(date, c.loc)
	if err != nil {
		return Snapshot{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	today := c.Today()
	view := entryView{c}
	habits := c.habitList()
	snap := Snapshot{Date: date, Days: make([]DayView, 0, len(habits))}
	for _, h := range habits {
		snap.Days = append(snap.Days, DayView{
			Habit:  h,
			Status: checkin.Resolve(h, day, today, view),
			State:  c.entries[checkin.Key{HabitID: h.ID, Date: date}].State,
		})
	}
	snap.Tally = checkin.Counts(habits, day, today, view)
	snap.Completed, snap.Incomplete = checkin.Split(habits, day, today, view)
	for id := range c.failed[date] {
		snap.Unavailable = append(snap.Unavailable, id)
	}
	sort.Ints(snap.Unavailable)
	return snap, nil
}
