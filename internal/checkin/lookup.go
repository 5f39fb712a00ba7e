// Package checkin fetches check-ins into an index and resolves the state of
// a habit on a given day.
package checkin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/logger"
	"github.com/julianstephens/habitvault/internal/models"
)

// Source lists a habit's check-ins between start and end inclusive
type Source interface {
	ListCheckins(ctx context.Context, habitID int, start, end string) ([]models.Checkin, error)
}

// Lookup builds indexes from per-habit check-in requests
type Lookup struct {
	Source Source
	// Concurrency caps in-flight requests (constants.LookupFanout when zero)
	Concurrency int
	// Timeout bounds each per-habit request (constants.LookupItemTimeout when zero)
	Timeout time.Duration
}

func (l *Lookup) concurrency() int {
	if l.Concurrency > 0 {
		return l.Concurrency
	}
	return constants.LookupFanout
}

func (l *Lookup) timeout() time.Duration {
	if l.Timeout > 0 {
		return l.Timeout
	}
	return constants.LookupItemTimeout
}

// ForDate fetches every habit's check-in for date concurrently and merges
// them. A habit whose request fails is left out of the entries and recorded
// in Index.Failed; the rest of the index is still returned.
func (l *Lookup) ForDate(ctx context.Context, date string, habits []models.Habit) *Index {
	idx := NewIndex()
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(l.concurrency())
	for _, h := range habits {
		g.Go(func() error {
			itemCtx, cancel := context.WithTimeout(ctx, l.timeout())
			defer cancel()

			checkins, err := l.Source.ListCheckins(itemCtx, h.ID, date, date)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("check-in fetch failed", "habit", h.ID, "date", date, "error", err)
				idx.Failed[h.ID] = err
				return nil
			}
			for _, c := range checkins {
				if c.Date != date {
					continue
				}
				c.HabitID = h.ID
				idx.Put(c)
			}
			return nil
		})
	}
	_ = g.Wait()

	logger.Debug("check-in index built", "date", date, "habits", len(habits), "entries", idx.Len(), "failed", len(idx.Failed))
	return idx
}

// ForHabitRange indexes one habit's check-ins between start and end inclusive
func (l *Lookup) ForHabitRange(ctx context.Context, habitID int, start, end string) (*Index, error) {
	checkins, err := l.Source.ListCheckins(ctx, habitID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch check-ins for habit %d: %w", habitID, err)
	}
	idx := NewIndex()
	for _, c := range checkins {
		c.HabitID = habitID
		idx.Put(c)
	}
	return idx, nil
}
