package tui

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitvault/internal/api"
	"github.com/julianstephens/habitvault/internal/api/apitest"
	"github.com/julianstephens/habitvault/internal/heatmap"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/toggle"
	"github.com/julianstephens/habitvault/internal/tui/components/habits"
)

const testDay = "2025-05-14"

type staticCreds string

func (c staticCreds) Token() (string, error) { return string(c), nil }
func (c staticCreds) ClearCredentials() error { return nil }

type failingTray struct{}

func (failingTray) Notify(string) error { return errors.New("tray not running") }

type okTray struct{ texts []string }

func (t *okTray) Notify(text string) error {
	t.texts = append(t.texts, text)
	return nil
}

func setupModel(t *testing.T) (Model, *apitest.Server, Events) {
	t.Helper()
	srv := apitest.New(t, testDay)
	srv.AddHabit(models.Habit{Name: "Read", TargetType: models.TargetDaily, StartDate: "2025-05-01"})
	srv.AddHabit(models.Habit{Name: "Walk", TargetType: models.TargetDaily, StartDate: "2025-05-01"})

	client, err := api.New(srv.APIURL(), staticCreds(apitest.Token), api.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("api.New failed: %v", err)
	}

	now, _ := time.Parse(time.RFC3339, testDay+"T12:00:00Z")
	events := NewEvents()
	ctrl := toggle.New(client,
		toggle.WithClock(func() time.Time { return now }),
		toggle.WithLocation(time.UTC),
		toggle.WithCooldown(0),
		toggle.WithRefresher(events.Refresher()),
		toggle.WithNotifier(events.Notifier(failingTray{})),
	)
	habitList, err := client.ListHabits(t.Context())
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}
	ctrl.SetHabits(habitList)

	m := NewModel(Config{
		Controller: ctrl,
		Backend:    client,
		Cache:      heatmap.NewCache(client, time.UTC),
		Settings:   models.Settings{Timezone: "UTC"},
		Events:     events,
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = update(t, m, exec(t, m.refresh(testDay)))
	return m, srv, events
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out
}

// press sends a key and feeds the message its command produces back in
func press(t *testing.T, m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(k)
	m = next.(Model)
	if cmd == nil {
		return m, nil
	}
	next, cmd = m.Update(cmd())
	return next.(Model), cmd
}

func exec(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return cmd()
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func nextEvent(t *testing.T, events Events) tea.Msg {
	t.Helper()
	select {
	case msg := <-events:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an event")
		return nil
	}
}

func TestModel_InitialView(t *testing.T) {
	m, _, _ := setupModel(t)

	view := m.View()
	for _, want := range []string{"Today", "Calendar", "Habits", "2025-05-14", "0/2 completed", "Read", "Walk"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_Toggle(t *testing.T) {
	m, srv, events := setupModel(t)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, exec(t, cmd))

	got := srv.Checkins(1)
	if len(got) != 1 || got[0].Status != models.StatusCompleted {
		t.Fatalf("server check-ins = %+v", got)
	}
	if !strings.Contains(m.View(), "1/2 completed") {
		t.Errorf("view not updated after toggle:\n%s", m.View())
	}

	// optimistic write, server confirmation, then the refresher signal
	var sawPending, sawSettled, sawRefresh bool
	for !sawPending || !sawSettled || !sawRefresh {
		switch msg := nextEvent(t, events).(type) {
		case ChangeMsg:
			sawPending = sawPending || msg.State == toggle.Pending
			sawSettled = sawSettled || msg.State == toggle.Settled
		case RefreshMsg:
			sawRefresh = true
		}
	}
}

func TestModel_ToggleKeepsCachedMonth(t *testing.T) {
	m, srv, events := setupModel(t)
	m = update(t, m, exec(t, m.navigate(m.nav.Load)))

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, exec(t, cmd))
	for settled := false; !settled; {
		if msg, ok := nextEvent(t, events).(ChangeMsg); ok {
			m = update(t, m, msg)
			settled = msg.State == toggle.Settled && msg.HabitID == 1 && msg.Status == models.DayCompleted
		}
	}

	if got := srv.TotalCalls("GET /analytics/heatmap"); got != 1 {
		t.Errorf("heatmap requested %d times, want 1", got)
	}
	payload, err := m.nav.Payload()
	if err != nil {
		t.Fatal(err)
	}
	if payload.Habits[1][testDay] != models.StatusCompleted {
		t.Errorf("calendar not patched with the toggle: %v", payload.Habits)
	}
}

func TestModel_ToggleFailureShowsToast(t *testing.T) {
	m, srv, events := setupModel(t)
	srv.SetFail(func(r *http.Request) int {
		if r.Method == http.MethodPost {
			return http.StatusInternalServerError
		}
		return 0
	})

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, exec(t, cmd))
	if len(srv.Checkins(1)) != 0 {
		t.Fatal("failed toggle reached the store")
	}

	var toast *ToastMsg
	for toast == nil {
		if msg, ok := nextEvent(t, events).(ToastMsg); ok {
			toast = &msg
		}
	}
	m = update(t, m, *toast)
	if !strings.Contains(m.View(), toast.Text) {
		t.Errorf("toast %q not rendered", toast.Text)
	}
	if !strings.Contains(m.View(), "0/2 completed") {
		t.Error("rolled back toggle still counted")
	}
}

func TestModel_Tabs(t *testing.T) {
	m, _, _ := setupModel(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.tab != TabCalendar {
		t.Fatalf("tab = %d, want calendar", m.tab)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.tab != TabHabits {
		t.Fatalf("tab = %d, want habits", m.tab)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.tab != TabToday {
		t.Fatalf("tab = %d, want today", m.tab)
	}
}

func TestModel_DateNavigation(t *testing.T) {
	m, _, _ := setupModel(t)

	m, _ = press(t, m, runes("]"))
	if m.date != testDay {
		t.Errorf("moved past today to %s", m.date)
	}

	m, cmd := press(t, m, runes("["))
	if m.date != "2025-05-13" {
		t.Fatalf("date = %s, want 2025-05-13", m.date)
	}
	m = update(t, m, exec(t, cmd))
	if !strings.Contains(m.View(), "2025-05-13") {
		t.Error("view still shows the old date")
	}

	m, _ = press(t, m, runes("t"))
	if m.date != testDay {
		t.Errorf("date = %s, want today", m.date)
	}
}

func TestModel_Calendar(t *testing.T) {
	m, srv, _ := setupModel(t)
	srv.SetCheckin(1, "2025-05-02", models.StatusCompleted)

	m = update(t, m, exec(t, m.navigate(m.nav.Load)))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if view := m.View(); !strings.Contains(view, "May 2025") || !strings.Contains(view, "Read") {
		t.Errorf("calendar view:\n%s", view)
	}

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if cmd == nil {
		t.Fatal("expected a month load")
	}
	m = update(t, m, cmd())
	if year, month := m.nav.Current(); year != 2025 || month != time.April {
		t.Errorf("navigator at %d-%d, want 2025-4", year, month)
	}
	if !strings.Contains(m.View(), "April 2025") {
		t.Errorf("calendar view:\n%s", m.View())
	}
}

func TestModel_DeleteHabit(t *testing.T) {
	m, srv, _ := setupModel(t)

	h, _ := srv.Habit(2)
	m = update(t, m, habits.DeleteHabitMsg{Habit: h})
	if m.state != StateConfirmDelete {
		t.Fatalf("state = %d, want confirm", m.state)
	}
	if !strings.Contains(m.View(), `Delete "Walk"`) {
		t.Errorf("confirm view:\n%s", m.View())
	}

	next, cmd := m.Update(runes("y"))
	m = next.(Model)
	m = update(t, m, exec(t, cmd))
	if _, ok := srv.Habit(2); ok {
		t.Error("habit not deleted")
	}
	if m.toast != `Deleted "Walk"` {
		t.Errorf("toast = %q", m.toast)
	}
	if got := srv.TotalCalls("GET /analytics/heatmap"); got != 0 {
		t.Errorf("delete refetched the heatmap %d times", got)
	}
}

func TestModel_DeleteCancelled(t *testing.T) {
	m, srv, _ := setupModel(t)

	h, _ := srv.Habit(1)
	m = update(t, m, habits.DeleteHabitMsg{Habit: h})
	m = update(t, m, runes("n"))
	if m.state != StateNormal || m.deleting != nil {
		t.Error("cancel did not reset the confirm state")
	}
	if _, ok := srv.Habit(1); !ok {
		t.Error("cancelled delete removed the habit")
	}
}

func TestModel_ToastExpires(t *testing.T) {
	m, _, _ := setupModel(t)

	m = update(t, m, ToastMsg{Text: "first"})
	stale := m.toastID
	m = update(t, m, ToastMsg{Text: "second"})
	m = update(t, m, clearToastMsg{id: stale})
	if m.toast != "second" {
		t.Errorf("stale clear removed the newer toast: %q", m.toast)
	}
	m = update(t, m, clearToastMsg{id: m.toastID})
	if m.toast != "" {
		t.Errorf("toast = %q, want cleared", m.toast)
	}
}

func TestToastNotifier(t *testing.T) {
	events := NewEvents()

	tray := &okTray{}
	if err := events.Notifier(tray).Notify("to tray"); err != nil {
		t.Fatal(err)
	}
	if len(tray.texts) != 1 || len(events) != 0 {
		t.Errorf("tray delivery should not post a toast (tray=%v, queued=%d)", tray.texts, len(events))
	}

	if err := events.Notifier(failingTray{}).Notify("to toast"); err != nil {
		t.Fatal(err)
	}
	if msg, ok := (<-events).(ToastMsg); !ok || msg.Text != "to toast" {
		t.Errorf("got %#v, want toast", msg)
	}
}

func TestEvents_PostDoesNotBlock(t *testing.T) {
	events := make(Events, 1)
	events.post(RefreshMsg{})
	events.post(RefreshMsg{})
	if len(events) != 1 {
		t.Errorf("queued %d events, want 1", len(events))
	}
}

func TestEvents_ToastWaitsForRoom(t *testing.T) {
	events := make(Events, 1)
	events.post(RefreshMsg{})

	done := make(chan struct{})
	go func() {
		events.Notifier(failingTray{}).Notify("toggle failed")
		close(done)
	}()

	if _, ok := nextEvent(t, events).(RefreshMsg); !ok {
		t.Fatal("expected the queued refresh first")
	}
	msg, ok := nextEvent(t, events).(ToastMsg)
	if !ok || msg.Text != "toggle failed" {
		t.Errorf("got %#v, want the toast", msg)
	}
	<-done
}
