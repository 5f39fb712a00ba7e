package heatmap

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/julianstephens/habitvault/internal/models"
)

// ErrLoading rejects navigation while a month is still being fetched
var ErrLoading = errors.New("month is still loading")

// Navigator walks a calendar month by month on top of a Cache
type Navigator struct {
	cache *Cache

	mu      sync.Mutex
	year    int
	month   time.Month
	loading bool
	payload models.HeatmapPayload
	err     error
}

// NewNavigator starts at the given month without fetching it
func NewNavigator(cache *Cache, year int, month time.Month) *Navigator {
	return &Navigator{cache: cache, year: year, month: month}
}

// Current returns the month being shown
func (n *Navigator) Current() (int, time.Month) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.year, n.month
}

// Payload returns the current month's data and the error from loading it
func (n *Navigator) Payload() (models.HeatmapPayload, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.payload, n.err
}

// Loading reports whether a fetch is in flight
func (n *Navigator) Loading() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.loading
}

// Sync rereads the current month from the cache without fetching. It does
// nothing while a load is in flight or the month is not cached.
func (n *Navigator) Sync() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.loading {
		return
	}
	if p, ok := n.cache.Lookup(n.year, n.month); ok {
		n.payload, n.err = p, nil
	}
}

// Load fetches the current month
func (n *Navigator) Load(ctx context.Context) error {
	year, month := n.Current()
	return n.Goto(ctx, year, month)
}

// Prev moves to the previous month
func (n *Navigator) Prev(ctx context.Context) error {
	return n.step(ctx, -1)
}

// Next moves to the next month
func (n *Navigator) Next(ctx context.Context) error {
	return n.step(ctx, 1)
}

func (n *Navigator) step(ctx context.Context, delta int) error {
	year, month := n.Current()
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return n.Goto(ctx, t.Year(), t.Month())
}

// Goto moves to a month and loads it. The month changes even if the fetch
// fails; the error stays visible through Payload until the next load.
func (n *Navigator) Goto(ctx context.Context, year int, month time.Month) error {
	n.mu.Lock()
	if n.loading {
		n.mu.Unlock()
		return ErrLoading
	}
	n.loading = true
	n.year, n.month = year, month
	n.mu.Unlock()

	p, err := n.cache.Get(ctx, year, month)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.loading = false
	n.payload, n.err = p, err
	return err
}
