package toggle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/habitvault/internal/api"
	"github.com/julianstephens/habitvault/internal/checkin"
	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/logger"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/utils"
)

// ErrUnknownHabit is returned when toggling a habit the controller has not loaded
var ErrUnknownHabit = errors.New("unknown habit")

// Source is the slice of the API the controller needs
type Source interface {
	checkin.Source
	ListHabits(ctx context.Context) ([]models.Habit, error)
	UpsertCheckin(ctx context.Context, habitID int, date string, status models.Status) (models.StreakUpdate, error)
}

// Refresher is told that aggregate counters may be out of date. It runs in
// its own goroutine and nothing waits for it.
type Refresher func()

// Change describes a write into the controller's state
type Change struct {
	HabitID int
	Date    string
	State   State
	Status  models.DayState
}

// Option configures a Controller
type Option func(*Controller)

// WithNotifier sets where toggle failures are reported
func WithNotifier(n api.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithRefresher sets the dashboard refresh callback
func WithRefresher(r Refresher) Option {
	return func(c *Controller) { c.refresher = r }
}

// WithClock replaces the wall clock
func WithClock(clock utils.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithLocation sets the timezone "today" is computed in
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) { c.loc = loc }
}

// WithCooldown sets how long a habit rejects toggles after one settles
func WithCooldown(d time.Duration) Option {
	return func(c *Controller) { c.cooldown = d }
}

// WithLookup replaces the check-in lookup used for refreshes and rollbacks
func WithLookup(l *checkin.Lookup) Option {
	return func(c *Controller) { c.lookup = l }
}

// Controller owns the habits and per-day check-ins every view reads, and
// is the only writer of both.
type Controller struct {
	source    Source
	lookup    *checkin.Lookup
	notifier  api.Notifier
	refresher Refresher
	clock     utils.Clock
	loc       *time.Location
	cooldown  time.Duration

	mu        sync.Mutex
	seq       uint64
	order     []int
	habits    map[int]*models.Habit
	habitSeq  map[int]uint64
	entries   map[checkin.Key]Entry
	failed    map[string]map[int]error
	inflight  map[int]bool
	coolUntil map[int]time.Time
	subs      map[int]func(Change)
	nextSub   int
}

// New creates a controller backed by source
func New(source Source, opts ...Option) *Controller {
	c := &Controller{
		source:    source,
		clock:     utils.SystemClock,
		loc:       time.Local,
		cooldown:  constants.ToggleCooldown,
		habits:    make(map[int]*models.Habit),
		habitSeq:  make(map[int]uint64),
		entries:   make(map[checkin.Key]Entry),
		failed:    make(map[string]map[int]error),
		inflight:  make(map[int]bool),
		coolUntil: make(map[int]time.Time),
		subs:      make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.lookup == nil {
		c.lookup = &checkin.Lookup{Source: source}
	}
	return c
}

// Today returns the current day in the controller's location
func (c *Controller) Today() time.Time {
	return utils.StartOfDay(c.clock().In(c.loc))
}

// Subscribe registers fn for every change. The returned func unsubscribes.
// fn runs on the goroutine that made the change, outside the controller lock.
func (c *Controller) Subscribe(fn func(Change)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// SetHabits replaces the habit list, keeping habits with newer local data
func (c *Controller) SetHabits(habits []models.Habit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replaceHabits(c.next(), habits)
}

// Habits returns the habit list in server order
func (c *Controller) Habits() []models.Habit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.habitList()
}

// Habit returns one habit
func (c *Controller) Habit(id int) (models.Habit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.habits[id]
	if !ok {
		return models.Habit{}, false
	}
	return *h, true
}

// Entry returns the local entry for (habitID, date)
func (c *Controller) Entry(habitID int, date string) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[checkin.Key{HabitID: habitID, Date: date}]
}

// Status resolves a habit on date against local state
func (c *Controller) Status(habitID int, date string) (models.DayState, error) {
	day, err := utils.ParseDate(date, c.loc)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.habits[habitID]
	if !ok {
		return "", fmt.Errorf("habit %d: %w", habitID, ErrUnknownHabit)
	}
	return checkin.Resolve(*h, day, c.Today(), entryView{c}), nil
}

// Refresh reloads habits and the check-ins for date. Entries with a toggle
// in flight, or written after the refresh started, are left alone.
func (c *Controller) Refresh(ctx context.Context, date string) error {
	if _, err := utils.ParseDate(date, c.loc); err != nil {
		return err
	}

	c.mu.Lock()
	seq := c.next()
	c.mu.Unlock()

	habits, err := c.source.ListHabits(ctx)
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}
	idx := c.lookup.ForDate(ctx, date, habits)

	c.mu.Lock()
	c.replaceHabits(seq, habits)
	changes := c.applyIndex(date, idx, seq, 0, nil)
	c.mu.Unlock()

	c.publish(changes)
	return nil
}

// Toggle flips a habit's status on date: optimistic write first, then the
// server mutation, then either a streak merge or a rollback to ground truth.
func (c *Controller) Toggle(ctx context.Context, habitID int, date string) error {
	day, err := utils.ParseDate(date, c.loc)
	if err != nil {
		return err
	}
	key := checkin.Key{HabitID: habitID, Date: date}
	log := logger.With("habit", habitID, "date", date)

	c.mu.Lock()
	h, ok := c.habits[habitID]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("habit %d: %w", habitID, ErrUnknownHabit)
	}
	if c.inflight[habitID] {
		c.mu.Unlock()
		return ErrInFlight
	}
	if until, ok := c.coolUntil[habitID]; ok && c.clock().Before(until) {
		c.mu.Unlock()
		return ErrCoolingDown
	}

	current := checkin.Resolve(*h, day, c.Today(), entryView{c})
	status := NextStatus(current)
	seq := c.next()
	prev := c.entries[key]
	optimistic := &models.Checkin{HabitID: habitID, Date: date, Status: status}
	if prev.Checkin != nil {
		optimistic.ID = prev.Checkin.ID
	}
	entry, err := Reduce(prev, Event{Kind: EventToggle, Seq: seq, Checkin: optimistic})
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.entries[key] = entry
	c.inflight[habitID] = true
	name := h.Name
	optimisticChange := c.change(key, entry)
	c.mu.Unlock()

	if log != nil {
		log.Debug("toggle", "from", current, "to", status, "seq", seq)
	}
	c.publish([]Change{optimisticChange})

	defer c.signalRefresh()
	defer c.settle(habitID)

	update, err := c.source.UpsertCheckin(ctx, habitID, date, status)
	if err == nil {
		c.confirm(key, seq, update)
		return nil
	}

	if log != nil {
		log.Warn("toggle failed, rolling back", "error", err)
	}
	c.rollback(context.WithoutCancel(ctx), key, seq)
	if !api.Notified(err) {
		c.notify(fmt.Sprintf("Failed to update %q for %s.", name, date))
	}
	return fmt.Errorf("failed to toggle %q on %s: %w", name, date, err)
}

func (c *Controller) confirm(key checkin.Key, seq uint64, update models.StreakUpdate) {
	c.mu.Lock()
	var changes []Change
	entry, err := Reduce(c.entries[key], Event{Kind: EventServerOK, Seq: seq, Checkin: update.Checkin})
	if err != nil {
		logger.Debug("discarded toggle confirmation", "habit", key.HabitID, "date", key.Date, "error", err)
	} else {
		c.entries[key] = entry
		if h, ok := c.habits[key.HabitID]; ok {
			h.ApplyStreaks(update)
			c.habitSeq[key.HabitID] = max(c.habitSeq[key.HabitID], seq)
		}
		changes = append(changes, c.change(key, entry))
	}
	c.mu.Unlock()
	c.publish(changes)
}

// rollback replaces the date's entries with a fresh server read. The toggled
// key takes ground truth under its own sequence; the rest are refreshed.
func (c *Controller) rollback(ctx context.Context, key checkin.Key, seq uint64) {
	c.mu.Lock()
	entry, err := Reduce(c.entries[key], Event{Kind: EventServerFailed, Seq: seq})
	if err != nil {
		c.mu.Unlock()
		logger.Debug("discarded toggle failure", "habit", key.HabitID, "date", key.Date, "error", err)
		return
	}
	c.entries[key] = entry
	refreshSeq := c.next()
	habits := c.habitList()
	c.mu.Unlock()

	idx := c.lookup.ForDate(ctx, key.Date, habits)

	c.mu.Lock()
	changes := c.applyIndex(key.Date, idx, refreshSeq, key.HabitID, &seq)
	c.mu.Unlock()
	c.publish(changes)
}

// applyIndex writes idx into the entries for date. When toggled is set, that
// habit receives ground truth under toggledSeq. Callers hold c.mu.
func (c *Controller) applyIndex(date string, idx *checkin.Index, seq uint64, toggled int, toggledSeq *uint64) []Change {
	var changes []Change
	failed := make(map[int]error)
	c.failed[date] = failed

	for _, id := range c.order {
		key := checkin.Key{HabitID: id, Date: date}
		current := c.entries[key]

		var value *models.Checkin
		if ck, ok := idx.Get(id, date); ok {
			value = &ck
		}

		var ev Event
		if toggledSeq != nil && id == toggled {
			if fetchErr, bad := idx.Failed[id]; bad {
				failed[id] = fetchErr
				value = current.Previous
			}
			ev = Event{Kind: EventGroundTruth, Seq: *toggledSeq, Checkin: value}
		} else {
			if fetchErr, bad := idx.Failed[id]; bad {
				failed[id] = fetchErr
				continue
			}
			ev = Event{Kind: EventRefresh, Seq: seq, Checkin: value}
		}

		next, err := Reduce(current, ev)
		if err != nil {
			logger.Debug("discarded check-in write", "habit", id, "date", date, "event", ev.Kind, "error", err)
			continue
		}
		c.entries[key] = next
		changes = append(changes, c.change(key, next))
	}
	return changes
}

// replaceHabits installs habits unless a newer write already touched them.
// Callers hold c.mu.
func (c *Controller) replaceHabits(seq uint64, habits []models.Habit) {
	fresh := make(map[int]*models.Habit, len(habits))
	order := make([]int, 0, len(habits))
	for _, h := range habits {
		order = append(order, h.ID)
		if old, ok := c.habits[h.ID]; ok && (c.inflight[h.ID] || c.habitSeq[h.ID] > seq) {
			fresh[h.ID] = old
			continue
		}
		fresh[h.ID] = &h
		c.habitSeq[h.ID] = seq
	}
	c.habits = fresh
	c.order = order
}

func (c *Controller) settle(habitID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, habitID)
	if c.cooldown > 0 {
		c.coolUntil[habitID] = c.clock().Add(c.cooldown)
	}
}

func (c *Controller) signalRefresh() {
	if c.refresher != nil {
		go c.refresher()
	}
}

func (c *Controller) notify(text string) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(text); err != nil {
		logger.Debug("notification not delivered", "error", err)
	}
}

func (c *Controller) publish(changes []Change) {
	if len(changes) == 0 {
		return
	}
	c.mu.Lock()
	subs := make([]func(Change), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, ch := range changes {
		for _, fn := range subs {
			fn(ch)
		}
	}
}

// change builds the Change for an entry. Callers hold c.mu.
func (c *Controller) change(key checkin.Key, e Entry) Change {
	ch := Change{HabitID: key.HabitID, Date: key.Date, State: e.State}
	if h, ok := c.habits[key.HabitID]; ok {
		if day, err := utils.ParseDate(key.Date, c.loc); err == nil {
			ch.Status = checkin.Resolve(*h, day, c.Today(), entryView{c})
		}
	}
	return ch
}

// next allocates a sequence number. Callers hold c.mu.
func (c *Controller) next() uint64 {
	c.seq++
	return c.seq
}

// habitList copies habits in server order. Callers hold c.mu.
func (c *Controller) habitList() []models.Habit {
	out := make([]models.Habit, 0, len(c.order))
	for _, id := range c.order {
		if h, ok := c.habits[id]; ok {
			out = append(out, *h)
		}
	}
	return out
}

// entryView reads entries as a check-in index. Callers hold c.mu.
type entryView struct {
	c *Controller
}

func (v entryView) Get(habitID int, date string) (models.Checkin, bool) {
	e, ok := v.c.entries[checkin.Key{HabitID: habitID, Date: date}]
	if !ok || e.Checkin == nil {
		return models.Checkin{}, false
	}
	return *e.Checkin, true
}
