package today

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/schedule"
	"github.com/julianstephens/habitvault/internal/toggle"
	"github.com/julianstephens/habitvault/internal/tui/theme"
)

type ToggleMsg struct {
	HabitID int
}

type PrevDayMsg struct{}

type NextDayMsg struct{}

type GoTodayMsg struct{}

type Item struct {
	View    toggle.DayView
	palette theme.Palette
}

func (i Item) Title() string {
	icon := i.palette.Status(i.View.Status).Render(theme.Icon(i.View.Status))
	title := icon + " " + i.View.Habit.Name
	if i.View.State.InFlight() {
		title += " …"
	}
	return title
}

func (i Item) Description() string {
	h := i.View.Habit
	return fmt.Sprintf("%s · %s · streak %d (best %d)",
		i.View.Status, schedule.Describe(h.TargetType, h.TargetDays), h.CurrentStreak, h.LongestStreak)
}

func (i Item) FilterValue() string { return i.View.Habit.Name }

type KeyMap struct {
	Toggle  key.Binding
	PrevDay key.Binding
	NextDay key.Binding
	Today   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle"),
		),
		PrevDay: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev day"),
		),
		NextDay: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next day"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
	}
}

type Model struct {
	list    list.Model
	keys    KeyMap
	palette theme.Palette
	snap    toggle.Snapshot
	names   map[int]string
	summary *models.AnalyticsSummary
	quote   *models.Quote
	err     string
}

func New(palette theme.Palette, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.PrevDay, keys.NextDay}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.PrevDay, keys.NextDay, keys.Today}
	}

	return Model{list: l, keys: keys, palette: palette}
}

// SetSnapshot shows the incomplete habits first, then the completed ones
func (m *Model) SetSnapshot(snap toggle.Snapshot) {
	m.snap = snap
	m.err = ""
	m.names = make(map[int]string, len(snap.Days))

	var incomplete, completed []list.Item
	for _, d := range snap.Days {
		m.names[d.Habit.ID] = d.Habit.Name
		if d.Status == models.DayNotScheduled {
			continue
		}
		item := Item{View: d, palette: m.palette}
		if d.Status.Done() {
			completed = append(completed, item)
		} else {
			incomplete = append(incomplete, item)
		}
	}
	m.list.SetItems(append(incomplete, completed...))
}

func (m *Model) SetError(err error) {
	if err != nil {
		m.err = err.Error()
	}
}

func (m *Model) SetSummary(s *models.AnalyticsSummary) { m.summary = s }

func (m *Model) SetQuote(q *models.Quote) { m.quote = q }

func (m Model) Date() string { return m.snap.Date }

func (m Model) Keys() []key.Binding {
	return []key.Binding{m.keys.Toggle, m.keys.PrevDay, m.keys.NextDay, m.keys.Today}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.list.SelectedItem().(Item); ok && !i.View.State.InFlight() {
				id := i.View.Habit.ID
				return m, func() tea.Msg { return ToggleMsg{HabitID: id} }
			}
			return m, nil
		case key.Matches(msg, m.keys.PrevDay):
			return m, func() tea.Msg { return PrevDayMsg{} }
		case key.Matches(msg, m.keys.NextDay):
			return m, func() tea.Msg { return NextDayMsg{} }
		case key.Matches(msg, m.keys.Today):
			return m, func() tea.Msg { return GoTodayMsg{} }
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	muted := lipgloss.NewStyle().Foreground(m.palette.Muted)
	t := m.snap.Tally

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.snap.Date))
	b.WriteString(muted.Render(fmt.Sprintf("  %d/%d completed", t.Completed, t.Scheduled)))
	if t.Missed > 0 {
		b.WriteString(muted.Render(fmt.Sprintf(" · %d missed", t.Missed)))
	}
	if m.summary != nil {
		b.WriteString(muted.Render(fmt.Sprintf(" · %.0f%% this %s · best streak %d",
			m.summary.CompletionRate, m.summary.Period, m.summary.BestStreak)))
	}
	b.WriteString("\n")

	if len(m.snap.Unavailable) > 0 {
		names := make([]string, 0, len(m.snap.Unavailable))
		for _, id := range m.snap.Unavailable {
			names = append(names, m.names[id])
		}
		b.WriteString(lipgloss.NewStyle().Foreground(m.palette.Warning).
			Render("⚠ check-ins unavailable for " + strings.Join(names, ", ")))
		b.WriteString("\n")
	}
	if m.err != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(m.palette.Danger).Render(m.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.list.Items()) == 0 {
		b.WriteString("  Nothing scheduled for this day.\n")
	} else {
		b.WriteString(m.list.View())
	}

	if m.quote != nil && m.quote.Text != "" {
		b.WriteString("\n\n")
		q := fmt.Sprintf("“%s”", m.quote.Text)
		if m.quote.Author != "" {
			q += " - " + m.quote.Author
		}
		b.WriteString(lipgloss.NewStyle().Foreground(m.palette.Muted).Italic(true).Render(q))
	}
	return b.String()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
