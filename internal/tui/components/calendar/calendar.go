package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/tui/theme"
	"github.com/julianstephens/habitvault/internal/utils"
)

type PrevMonthMsg struct{}

type NextMonthMsg struct{}

type KeyMap struct {
	PrevMonth key.Binding
	NextMonth key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		PrevMonth: key.NewBinding(
			key.WithKeys("left", "["),
			key.WithHelp("←/[", "prev month"),
		),
		NextMonth: key.NewBinding(
			key.WithKeys("right", "]"),
			key.WithHelp("→/]", "next month"),
		),
	}
}

// Month is what the calendar shows
type Month struct {
	Year    int
	Month   time.Month
	Payload models.HeatmapPayload
	Err     error
	Loading bool
}

type Model struct {
	keys    KeyMap
	palette theme.Palette
	spinner spinner.Model
	loc     *time.Location
	habits  []models.Habit
	month   Month
	width   int
}

func New(palette theme.Palette, loc *time.Location) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return Model{keys: DefaultKeyMap(), palette: palette, spinner: s, loc: loc}
}

func (m *Model) SetHabits(habits []models.Habit) { m.habits = habits }

func (m *Model) SetMonth(month Month) { m.month = month }

func (m Model) Keys() []key.Binding {
	return []key.Binding{m.keys.PrevMonth, m.keys.NextMonth}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.PrevMonth):
			return m, func() tea.Msg { return PrevMonthMsg{} }
		case key.Matches(msg, m.keys.NextMonth):
			return m, func() tea.Msg { return NextMonthMsg{} }
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%s %d", m.month.Month, m.month.Year))
	b.WriteString(title)
	if m.month.Loading {
		b.WriteString(" " + m.spinner.View())
	}
	b.WriteString("\n\n")

	if m.month.Err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(m.palette.Danger).Render("Could not load heatmap: " + m.month.Err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	if len(m.habits) == 0 {
		b.WriteString("  No habits yet.\n")
		return b.String()
	}

	first, last := utils.MonthBounds(m.month.Year, m.month.Month, m.loc)
	days := utils.DaysBetween(first, last)

	width := 0
	for _, h := range m.habits {
		width = max(width, lipgloss.Width(h.Name))
	}

	muted := lipgloss.NewStyle().Foreground(m.palette.Muted)
	header := strings.Repeat(" ", width+1)
	for _, d := range days {
		if d.Day()%5 == 1 {
			header += fmt.Sprintf("%-10d", d.Day())
		}
	}
	b.WriteString(muted.Render(strings.TrimRight(header, " ")))
	b.WriteString("\n")

	for _, h := range m.habits {
		b.WriteString(lipgloss.NewStyle().Width(width).Render(h.Name))
		b.WriteString(" ")
		statuses := m.month.Payload.Habits[h.ID]
		for _, d := range days {
			b.WriteString(m.cell(statuses[utils.FormatDate(d)]))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.cell(models.StatusCompleted) + muted.Render("completed  "))
	b.WriteString(m.cell(models.StatusMissed) + muted.Render("missed  "))
	b.WriteString(m.cell("") + muted.Render("no check-in"))
	return b.String()
}

func (m Model) cell(s models.Status) string {
	color := m.palette.EmptyCell
	switch s {
	case models.StatusCompleted:
		color = m.palette.Completed
	case models.StatusMissed:
		color = m.palette.Missed
	case models.StatusSkipped:
		color = m.palette.Skipped
	}
	return lipgloss.NewStyle().Foreground(color).Render("■ ")
}

func (m *Model) SetSize(width, height int) {
	m.width = width
}
