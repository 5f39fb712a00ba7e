// Package heatmap caches per-month heatmap payloads and tracks calendar navigation.
package heatmap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/julianstephens/habitvault/internal/api"
	"github.com/julianstephens/habitvault/internal/logger"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/utils"
)

// Source fetches heatmap data for a date range
type Source interface {
	Heatmap(ctx context.Context, r api.DateRange) (models.HeatmapPayload, error)
}

// Key is the cache key of a month. Months are 1-based.
func Key(year int, month time.Month) string {
	return fmt.Sprintf("%d-%d", year, int(month))
}

// Cache stores month payloads for the life of the process. Failed fetches
// are never stored, so the month is retried on the next Get. A stored month
// is never refetched; local writes are patched into it instead.
type Cache struct {
	source Source
	loc    *time.Location
	group  singleflight.Group

	mu      sync.RWMutex
	months  map[string]models.HeatmapPayload
	lastErr error
}

// NewCache creates an empty cache. A nil loc means time.Local.
func NewCache(source Source, loc *time.Location) *Cache {
	if loc == nil {
		loc = time.Local
	}
	return &Cache{
		source: source,
		loc:    loc,
		months: make(map[string]models.HeatmapPayload),
	}
}

// Get returns the payload for a month, fetching it on a miss. Concurrent
// misses for the same month share one request, which outlives the
// cancellation of whichever caller started it.
func (c *Cache) Get(ctx context.Context, year int, month time.Month) (models.HeatmapPayload, error) {
	key := Key(year, month)
	if p, ok := c.Lookup(year, month); ok {
		return p, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		if p, ok := c.Lookup(year, month); ok {
			return p, nil
		}

		first, last := utils.MonthBounds(year, month, c.loc)
		p, err := c.source.Heatmap(fetchCtx, api.DateRange{
			StartDate: utils.FormatDate(first),
			EndDate:   utils.FormatDate(last),
		})

		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.lastErr = err
			return nil, err
		}
		c.months[key] = p
		c.lastErr = nil
		return p, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return models.HeatmapPayload{}, fmt.Errorf("failed to load heatmap for %s: %w", key, ctx.Err())
	}
	if res.Err != nil {
		logger.Warn("heatmap fetch failed", "month", key, "error", res.Err)
		return models.HeatmapPayload{}, fmt.Errorf("failed to load heatmap for %s: %w", key, res.Err)
	}
	logger.Debug("heatmap fetched", "month", key, "shared", res.Shared)
	return res.Val.(models.HeatmapPayload), nil
}

// Lookup returns a cached payload without fetching
func (c *Cache) Lookup(year int, month time.Month) (models.HeatmapPayload, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.months[Key(year, month)]
	return p, ok
}

// Err returns the error of the most recent failed fetch, cleared by the next success
func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Patch records status for (habitID, date) in the cached month holding date.
// An empty status removes the entry. Months not yet fetched are left alone
// and false is returned.
func (c *Cache) Patch(habitID int, date string, status models.Status) bool {
	day, err := utils.ParseDate(date, c.loc)
	if err != nil {
		logger.Warn("heatmap patch skipped", "date", date, "error", err)
		return false
	}
	key := Key(day.Year(), day.Month())

	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.months[key]
	if !ok {
		return false
	}

	// Copy on write: callers may still hold the previous maps
	habits := make(map[int]map[string]models.Status, len(p.Habits)+1)
	for id, days := range p.Habits {
		habits[id] = days
	}
	days := make(map[string]models.Status, len(habits[habitID])+1)
	for d, s := range habits[habitID] {
		days[d] = s
	}
	if status == "" {
		delete(days, date)
	} else {
		days[date] = status
	}
	habits[habitID] = days
	p.Habits = habits
	c.months[key] = p
	return true
}

// Forget removes a habit from every cached month
func (c *Cache) Forget(habitID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, p := range c.months {
		if _, ok := p.Habits[habitID]; !ok {
			continue
		}
		habits := make(map[int]map[string]models.Status, len(p.Habits))
		for id, days := range p.Habits {
			if id != habitID {
				habits[id] = days
			}
		}
		p.Habits = habits
		c.months[key] = p
	}
}

// Len returns the number of cached months
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.months)
}
