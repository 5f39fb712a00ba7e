package checkin

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/habitvault/internal/models"
)

type fakeSource struct {
	mu       sync.Mutex
	checkins map[int][]models.Checkin
	fail     map[int]error
	block    map[int]bool // wait for ctx to end
	delay    time.Duration

	active    atomic.Int32
	maxActive atomic.Int32
	calls     atomic.Int32
}

func (f *fakeSource) ListCheckins(ctx context.Context, habitID int, start, end string) ([]models.Checkin, error) {
	f.calls.Add(1)
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxActive.Load()
		if n <= m || f.maxActive.CompareAndSwap(m, n) {
			break
		}
	}

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	err, failing := f.fail[habitID]
	blocking := f.block[habitID]
	f.mu.Unlock()

	if blocking {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if failing {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Checkin
	for _, c := range f.checkins[habitID] {
		if c.Date >= start && c.Date <= end {
			out = append(out, c)
		}
	}
	return out, nil
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func habitsWithIDs(ids ...int) []models.Habit {
	out := make([]models.Habit, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Habit{ID: id, Name: "h", TargetType: models.TargetDaily, StartDate: "2025-05-01"})
	}
	return out
}

func TestForDateMergesAndOmitsAbsent(t *testing.T) {
	src := &fakeSource{checkins: map[int][]models.Checkin{
		1: {{HabitID: 1, Date: "2025-05-14", Status: models.StatusCompleted}},
		2: {{HabitID: 2, Date: "2025-05-13", Status: models.StatusCompleted}},
		3: {{HabitID: 3, Date: "2025-05-14", Status: models.StatusMissed}},
	}}
	l := &Lookup{Source: src}

	idx := l.ForDate(context.Background(), "2025-05-14", habitsWithIDs(1, 2, 3))

	want := map[int]models.Status{1: models.StatusCompleted, 3: models.StatusMissed}
	got := make(map[int]models.Status)
	for id, c := range idx.OnDate("2025-05-14") {
		got[id] = c.Status
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}
	if _, ok := idx.Get(2, "2025-05-14"); ok {
		t.Error("habit 2 has no check-in and should be absent")
	}
	if len(idx.Failed) != 0 {
		t.Errorf("unexpected failures %v", idx.Failed)
	}
}

func TestForDateRecordsFailures(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{
		checkins: map[int][]models.Checkin{
			1: {{HabitID: 1, Date: "2025-05-14", Status: models.StatusCompleted}},
			2: {{HabitID: 2, Date: "2025-05-14", Status: models.StatusCompleted}},
		},
		fail: map[int]error{2: boom},
	}
	l := &Lookup{Source: src}

	idx := l.ForDate(context.Background(), "2025-05-14", habitsWithIDs(1, 2))

	if idx.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", idx.Len())
	}
	if _, ok := idx.Get(2, "2025-05-14"); ok {
		t.Error("failed habit should be omitted from entries")
	}
	if !errors.Is(idx.Failed[2], boom) {
		t.Errorf("Failed[2] = %v, want %v", idx.Failed[2], boom)
	}
}

func TestForDateBoundsConcurrency(t *testing.T) {
	src := &fakeSource{delay: 20 * time.Millisecond}
	l := &Lookup{Source: src, Concurrency: 2}

	l.ForDate(context.Background(), "2025-05-14", habitsWithIDs(1, 2, 3, 4, 5, 6))

	if got := src.calls.Load(); got != 6 {
		t.Errorf("expected 6 requests, got %d", got)
	}
	if got := src.maxActive.Load(); got > 2 {
		t.Errorf("max in-flight = %d, want <= 2", got)
	}
}

func TestForDatePerItemTimeout(t *testing.T) {
	src := &fakeSource{
		checkins: map[int][]models.Checkin{
			1: {{HabitID: 1, Date: "2025-05-14", Status: models.StatusCompleted}},
		},
		block: map[int]bool{2: true},
	}
	l := &Lookup{Source: src, Timeout: 30 * time.Millisecond}

	start := time.Now()
	idx := l.ForDate(context.Background(), "2025-05-14", habitsWithIDs(1, 2))
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("ForDate took %v", elapsed)
	}

	if !errors.Is(idx.Failed[2], context.DeadlineExceeded) {
		t.Errorf("Failed[2] = %v, want deadline exceeded", idx.Failed[2])
	}
	if _, ok := idx.Get(1, "2025-05-14"); !ok {
		t.Error("habit 1 should survive a slow sibling")
	}
}

func TestForHabitRange(t *testing.T) {
	src := &fakeSource{checkins: map[int][]models.Checkin{
		7: {
			{Date: "2025-04-30", Status: models.StatusCompleted},
			{Date: "2025-05-02", Status: models.StatusCompleted},
			{Date: "2025-05-20", Status: models.StatusMissed},
		},
	}}
	l := &Lookup{Source: src}

	idx, err := l.ForHabitRange(context.Background(), 7, "2025-05-01", "2025-05-31")
	if err != nil {
		t.Fatalf("ForHabitRange() error = %v", err)
	}
	var dates []string
	for _, c := range idx.ForHabit(7) {
		dates = append(dates, c.Date)
		if c.HabitID != 7 {
			t.Errorf("check-in %s has habit id %d", c.Date, c.HabitID)
		}
	}
	if diff := cmp.Diff([]string{"2025-05-02", "2025-05-20"}, dates); diff != "" {
		t.Errorf("dates mismatch (-want +got):\n%s", diff)
	}

	src.fail = map[int]error{7: errors.New("down")}
	if _, err := l.ForHabitRange(context.Background(), 7, "2025-05-01", "2025-05-31"); err == nil {
		t.Error("expected error")
	}
}

func TestReplaceDate(t *testing.T) {
	idx := NewIndex()
	idx.Put(models.Checkin{HabitID: 1, Date: "2025-05-14", Status: models.StatusCompleted})
	idx.Put(models.Checkin{HabitID: 2, Date: "2025-05-14", Status: models.StatusCompleted})
	idx.Put(models.Checkin{HabitID: 3, Date: "2025-05-14", Status: models.StatusCompleted})
	idx.Put(models.Checkin{HabitID: 1, Date: "2025-05-13", Status: models.StatusMissed})

	fresh := NewIndex()
	fresh.Put(models.Checkin{HabitID: 2, Date: "2025-05-14", Status: models.StatusMissed})
	fresh.Failed[3] = errors.New("timeout")

	idx.ReplaceDate("2025-05-14", fresh)

	if _, ok := idx.Get(1, "2025-05-14"); ok {
		t.Error("habit 1 entry should be dropped")
	}
	if c, _ := idx.Get(2, "2025-05-14"); c.Status != models.StatusMissed {
		t.Errorf("habit 2 status = %s, want missed", c.Status)
	}
	if _, ok := idx.Get(3, "2025-05-14"); !ok {
		t.Error("failed habit should keep its entry")
	}
	if _, ok := idx.Get(1, "2025-05-13"); !ok {
		t.Error("other dates must be untouched")
	}
}

func TestResolve(t *testing.T) {
	today := date(t, "2025-05-14")
	daily := models.Habit{ID: 1, TargetType: models.TargetDaily, StartDate: "2025-05-10"}
	weekdays := models.Habit{ID: 2, TargetType: models.TargetWeekdays, StartDate: "2025-05-01"}
	custom := models.Habit{ID: 3, TargetType: models.TargetCustom, TargetDays: []string{"mon", "wed"}, StartDate: "2025-05-01"}
	stamped := models.Habit{ID: 4, TargetType: models.TargetDaily, StartDate: "2025-05-10T00:00:00.000Z"}
	malformed := models.Habit{ID: 5, TargetType: models.TargetDaily, StartDate: "bad"}

	idx := NewIndex()
	idx.Put(models.Checkin{HabitID: 1, Date: "2025-05-12", Status: models.StatusCompleted})
	idx.Put(models.Checkin{HabitID: 1, Date: "2025-05-11", Status: models.StatusSkipped})
	// explicit data beats schedule exclusion
	idx.Put(models.Checkin{HabitID: 2, Date: "2025-05-17", Status: models.StatusCompleted})

	tests := []struct {
		name  string
		habit models.Habit
		date  string
		want  models.DayState
	}{
		{"explicit completed", daily, "2025-05-12", models.DayCompleted},
		{"legacy skipped verbatim", daily, "2025-05-11", models.DaySkipped},
		{"inferred miss", daily, "2025-05-13", models.DayMissed},
		{"before start date", daily, "2025-05-09", models.DayNotMarked},
		{"start date itself", daily, "2025-05-10", models.DayMissed},
		{"today unmarked", daily, "2025-05-14", models.DayNotMarked},
		{"future", daily, "2025-05-20", models.DayNotMarked},
		{"weekend not scheduled", weekdays, "2025-05-10", models.DayNotScheduled},
		{"explicit beats schedule", weekdays, "2025-05-17", models.DayCompleted},
		{"custom off day", custom, "2025-05-13", models.DayNotScheduled},
		{"custom on day past", custom, "2025-05-12", models.DayMissed},
		{"custom today", custom, "2025-05-14", models.DayNotMarked},
		{"timestamp start date itself", stamped, "2025-05-10", models.DayMissed},
		{"before timestamp start date", stamped, "2025-05-09", models.DayNotMarked},
		{"malformed start date has no bound", malformed, "2025-04-01", models.DayMissed},
		{"malformed start date today", malformed, "2025-05-14", models.DayNotMarked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.habit, date(t, tt.date), today, idx); got != tt.want {
				t.Errorf("Resolve(%s) = %s, want %s", tt.date, got, tt.want)
			}
		})
	}
}

func TestResolveNilIndex(t *testing.T) {
	h := models.Habit{ID: 1, TargetType: models.TargetDaily, StartDate: "2025-05-01"}
	if got := Resolve(h, date(t, "2025-05-13"), date(t, "2025-05-14"), nil); got != models.DayMissed {
		t.Errorf("Resolve() = %s, want missed", got)
	}
	var idx *Index
	if got := Resolve(h, date(t, "2025-05-14"), date(t, "2025-05-14"), idx); got != models.DayNotMarked {
		t.Errorf("Resolve() = %s, want not-marked", got)
	}
}

func TestCountsAndSplit(t *testing.T) {
	today := date(t, "2025-05-14")
	habits := []models.Habit{
		{ID: 1, TargetType: models.TargetDaily, StartDate: "2025-05-01"},
		{ID: 2, TargetType: models.TargetDaily, StartDate: "2025-05-01"},
		{ID: 3, TargetType: models.TargetCustom, TargetDays: []string{"fri"}, StartDate: "2025-05-01"},
		{ID: 4, TargetType: models.TargetWeekdays, StartDate: "2025-05-01"},
	}
	idx := NewIndex()
	idx.Put(models.Checkin{HabitID: 1, Date: "2025-05-14", Status: models.StatusCompleted})
	idx.Put(models.Checkin{HabitID: 4, Date: "2025-05-14", Status: models.StatusMissed})

	got := Counts(habits, today, today, idx)
	want := Tally{Scheduled: 3, Completed: 1, Missed: 1, NotMarked: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Counts mismatch (-want +got):\n%s", diff)
	}

	completed, incomplete := Split(habits, today, today, idx)
	ids := func(hs []models.Habit) []int {
		var out []int
		for _, h := range hs {
			out = append(out, h.ID)
		}
		return out
	}
	if diff := cmp.Diff([]int{1}, ids(completed)); diff != "" {
		t.Errorf("completed mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 4}, ids(incomplete)); diff != "" {
		t.Errorf("incomplete mismatch (-want +got):\n%s", diff)
	}
}
