// Package tui is the interactive habit tracker.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitvault/internal/api"
	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/heatmap"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/toggle"
	"github.com/julianstephens/habitvault/internal/tui/components/calendar"
	"github.com/julianstephens/habitvault/internal/tui/components/habits"
	"github.com/julianstephens/habitvault/internal/tui/components/today"
	"github.com/julianstephens/habitvault/internal/tui/forms"
	"github.com/julianstephens/habitvault/internal/tui/theme"
	"github.com/julianstephens/habitvault/internal/utils"
)

const toastDuration = 4 * time.Second

type Tab int

const (
	TabToday Tab = iota
	TabCalendar
	TabHabits
)

var tabNames = []string{"Today", "Calendar", "Habits"}

type SessionState int

const (
	StateNormal SessionState = iota
	StateForm
	StateConfirmDelete
)

// Backend is the part of the API the TUI calls directly
type Backend interface {
	CreateHabit(ctx context.Context, in models.HabitInput) (models.Habit, error)
	UpdateHabit(ctx context.Context, id int, in models.HabitInput) (models.Habit, error)
	DeleteHabit(ctx context.Context, id int) error
	AnalyticsSummary(ctx context.Context, r api.DateRange) (models.AnalyticsSummary, error)
	DailyQuote(ctx context.Context) (models.Quote, error)
}

type Config struct {
	Controller *toggle.Controller
	Backend    Backend
	Cache      *heatmap.Cache
	Settings   models.Settings
	// Events must be the channel the controller's refresher and notifier post to
	Events Events
}

type Model struct {
	ctrl     *toggle.Controller
	backend  Backend
	cache    *heatmap.Cache
	nav      *heatmap.Navigator
	events   Events
	settings models.Settings
	styles   styles

	tab   Tab
	state SessionState
	keys  KeyMap
	help  help.Model

	todayModel    today.Model
	calendarModel calendar.Model
	habitsModel   habits.Model

	// date is the day shown on the Today tab
	date string

	form      *huh.Form
	habitForm *forms.HabitFormModel
	editingID int
	formError string
	deleting  *models.Habit

	toast   string
	toastID int

	unsubscribe func()
	quitting    bool
	width       int
	height      int
}

func NewModel(cfg Config) Model {
	palette := theme.For(cfg.Settings.DarkMode)
	now := cfg.Controller.Today()
	loc := now.Location()

	m := Model{
		ctrl:          cfg.Controller,
		backend:       cfg.Backend,
		cache:         cfg.Cache,
		nav:           heatmap.NewNavigator(cfg.Cache, now.Year(), now.Month()),
		events:        cfg.Events,
		settings:      cfg.Settings,
		styles:        newStyles(palette),
		keys:          DefaultKeyMap(),
		help:          help.New(),
		todayModel:    today.New(palette, 0, 0),
		calendarModel: calendar.New(palette, loc),
		habitsModel:   habits.New(cfg.Controller.Habits(), 0, 0),
		date:          utils.FormatDate(now),
	}

	events := cfg.Events
	m.unsubscribe = cfg.Controller.Subscribe(func(c toggle.Change) {
		events.post(ChangeMsg{Change: c})
	})

	m.calendarModel.SetHabits(cfg.Controller.Habits())
	m.calendarModel.SetMonth(calendar.Month{Year: now.Year(), Month: now.Month(), Loading: true})
	m.syncToday()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.events.wait(),
		m.refresh(m.date),
		m.navigate(m.nav.Load),
		m.loadSummary(),
		m.calendarModel.Init(),
	}
	if m.settings.ShowMotivationalQuote {
		cmds = append(cmds, m.loadQuote())
	}
	return tea.Batch(cmds...)
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	return append(keys, m.tabKeys()...)
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}
	return [][]key.Binding{global, navigation, m.tabKeys()}
}

func (m Model) tabKeys() []key.Binding {
	switch m.tab {
	case TabToday:
		return m.todayModel.Keys()
	case TabCalendar:
		return m.calendarModel.Keys()
	case TabHabits:
		return m.habitsModel.Keys()
	}
	return nil
}

// syncToday redraws the Today and Habits tabs from the controller
func (m *Model) syncToday() {
	snap, err := m.ctrl.Snapshot(m.date)
	if err != nil {
		m.todayModel.SetError(err)
		return
	}
	m.todayModel.SetSnapshot(snap)
	habitList := m.ctrl.Habits()
	m.habitsModel.SetHabits(habitList)
	m.calendarModel.SetHabits(habitList)
}

func (m *Model) syncMonth() {
	year, month := m.nav.Current()
	payload, err := m.nav.Payload()
	m.calendarModel.SetMonth(calendar.Month{
		Year:    year,
		Month:   month,
		Payload: payload,
		Err:     err,
		Loading: m.nav.Loading(),
	})
}

func (m Model) refresh(date string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return refreshedMsg{date: date, err: ctrl.Refresh(context.Background(), date)}
	}
}

func (m Model) toggle(habitID int) tea.Cmd {
	ctrl, date := m.ctrl, m.date
	return func() tea.Msg {
		return toggledMsg{habitID: habitID, err: ctrl.Toggle(context.Background(), habitID, date)}
	}
}

func (m Model) navigate(step func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return monthMsg{err: step(context.Background())}
	}
}

func (m Model) loadSummary() tea.Cmd {
	backend := m.backend
	period := m.settings.AnalyticsPeriod
	if period == "" {
		period = constants.DefaultAnalyticsPeriod
	}
	end := m.ctrl.Today()
	r := api.DateRange{
		StartDate: utils.FormatDate(utils.PeriodStart(period, end)),
		EndDate:   utils.FormatDate(end),
		Period:    period,
	}
	return func() tea.Msg {
		s, err := backend.AnalyticsSummary(context.Background(), r)
		return summaryMsg{summary: s, err: err}
	}
}

func (m Model) loadQuote() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		q, err := backend.DailyQuote(context.Background())
		return quoteMsg{quote: q, err: err}
	}
}

func (m Model) saveHabit(id int, in models.HabitInput) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		var (
			h   models.Habit
			err error
		)
		if id == 0 {
			h, err = backend.CreateHabit(context.Background(), in)
		} else {
			h, err = backend.UpdateHabit(context.Background(), id, in)
		}
		return savedMsg{habit: h, err: err}
	}
}

func (m Model) deleteHabit(h models.Habit) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		return savedMsg{habit: h, deleted: true, err: backend.DeleteHabit(context.Background(), h.ID)}
	}
}

func (m Model) showToast(text string) (Model, tea.Cmd) {
	m.toastID++
	m.toast = text
	id := m.toastID
	return m, tea.Tick(toastDuration, func(time.Time) tea.Msg { return clearToastMsg{id: id} })
}
