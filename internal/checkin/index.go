package checkin

import (
	"sort"

	"github.com/julianstephens/habitvault/internal/models"
)

// Key identifies the single check-in a habit may have on a date
type Key struct {
	HabitID int
	Date    string // YYYY-MM-DD
}

// Getter is the read side of an index
type Getter interface {
	Get(habitID int, date string) (models.Checkin, bool)
}

// Index maps (habit, date) to a check-in. Absent keys mean no check-in.
type Index struct {
	entries map[Key]models.Checkin
	// Failed holds the habits whose fetch did not complete, keyed by habit id.
	// Their entries are missing because nothing is known, not because none exist.
	Failed map[int]error
}

// NewIndex returns an empty index
func NewIndex() *Index {
	return &Index{
		entries: make(map[Key]models.Checkin),
		Failed:  make(map[int]error),
	}
}

// Get returns the check-in for (habitID, date)
func (i *Index) Get(habitID int, date string) (models.Checkin, bool) {
	if i == nil {
		return models.Checkin{}, false
	}
	c, ok := i.entries[Key{HabitID: habitID, Date: date}]
	return c, ok
}

// Put stores c, replacing any check-in for the same habit and date
func (i *Index) Put(c models.Checkin) {
	i.entries[Key{HabitID: c.HabitID, Date: c.Date}] = c
}

// Delete removes the check-in for (habitID, date)
func (i *Index) Delete(habitID int, date string) {
	delete(i.entries, Key{HabitID: habitID, Date: date})
}

// Len returns the number of stored check-ins
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.entries)
}

// OnDate returns habit id -> check-in for one date
func (i *Index) OnDate(date string) map[int]models.Checkin {
	out := make(map[int]models.Checkin)
	if i == nil {
		return out
	}
	for k, c := range i.entries {
		if k.Date == date {
			out[k.HabitID] = c
		}
	}
	return out
}

// ForHabit returns a habit's check-ins ordered by date
func (i *Index) ForHabit(habitID int) []models.Checkin {
	var out []models.Checkin
	if i == nil {
		return out
	}
	for k, c := range i.entries {
		if k.HabitID == habitID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date < out[b].Date })
	return out
}

// ReplaceDate swaps every entry on date for the ones in other. Habits that
// failed in other keep their current entries.
func (i *Index) ReplaceDate(date string, other *Index) {
	for k := range i.entries {
		if k.Date != date {
			continue
		}
		if _, failed := other.Failed[k.HabitID]; failed {
			continue
		}
		delete(i.entries, k)
	}
	for k, c := range other.entries {
		if k.Date == date {
			i.entries[k] = c
		}
	}
}
