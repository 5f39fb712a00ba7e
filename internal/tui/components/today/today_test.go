package today

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitvault/internal/checkin"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/toggle"
	"github.com/julianstephens/habitvault/internal/tui/theme"
)

func snapshot() toggle.Snapshot {
	return toggle.Snapshot{
		Date: "2025-05-14",
		Days: []toggle.DayView{
			{Habit: models.Habit{ID: 1, Name: "Read"}, Status: models.DayCompleted, State: toggle.Settled},
			{Habit: models.Habit{ID: 2, Name: "Gym"}, Status: models.DayNotScheduled},
			{Habit: models.Habit{ID: 3, Name: "Walk"}, Status: models.DayNotMarked},
		},
		Tally:       checkin.Tally{Scheduled: 2, Completed: 1, NotMarked: 1},
		Unavailable: []int{3},
	}
}

func TestSetSnapshot(t *testing.T) {
	m := New(theme.Light, 80, 20)
	m.SetSnapshot(snapshot())

	items := m.list.Items()
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (unscheduled habits hidden)", len(items))
	}
	if first := items[0].(Item).View.Habit.Name; first != "Walk" {
		t.Errorf("first item = %s, want the incomplete habit", first)
	}

	view := m.View()
	for _, want := range []string{"2025-05-14", "1/2 completed", "check-ins unavailable for Walk"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestToggleKey(t *testing.T) {
	m := New(theme.Light, 80, 20)
	m.SetSnapshot(snapshot())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a toggle command")
	}
	msg, ok := cmd().(ToggleMsg)
	if !ok || msg.HabitID != 3 {
		t.Errorf("got %#v, want toggle of habit 3", msg)
	}
}

func TestToggleKey_InFlight(t *testing.T) {
	snap := snapshot()
	snap.Days[2].State = toggle.Pending
	m := New(theme.Light, 80, 20)
	m.SetSnapshot(snap)

	if !strings.Contains(m.list.Items()[0].(Item).Title(), "…") {
		t.Error("in-flight item should be marked")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("toggle of an in-flight habit should be ignored")
	}
}

func TestQuote(t *testing.T) {
	m := New(theme.Dark, 80, 20)
	m.SetSnapshot(snapshot())
	m.SetQuote(&models.Quote{Text: "Keep going", Author: "Anon"})

	if !strings.Contains(m.View(), "“Keep going” - Anon") {
		t.Errorf("quote not rendered:\n%s", m.View())
	}
}
