package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitvault/internal/api"
	"github.com/julianstephens/habitvault/internal/heatmap"
	"github.com/julianstephens/habitvault/internal/logger"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/toggle"
	"github.com/julianstephens/habitvault/internal/tui/components/calendar"
	"github.com/julianstephens/habitvault/internal/tui/components/habits"
	"github.com/julianstephens/habitvault/internal/tui/components/today"
	"github.com/julianstephens/habitvault/internal/tui/forms"
	"github.com/julianstephens/habitvault/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h := msg.Height - 8
		m.todayModel.SetSize(msg.Width-4, h)
		m.habitsModel.SetSize(msg.Width-4, h)
		m.calendarModel.SetSize(msg.Width-4, h)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.calendarModel, cmd = m.calendarModel.Update(msg)
		return m, cmd

	case ChangeMsg:
		return m.handleChange(msg)

	case RefreshMsg:
		return m, tea.Batch(m.events.wait(), m.loadSummary())

	case ToastMsg:
		var cmd tea.Cmd
		m, cmd = m.showToast(msg.Text)
		return m, tea.Batch(m.events.wait(), cmd)

	case clearToastMsg:
		if msg.id == m.toastID {
			m.toast = ""
		}
		return m, nil

	case refreshedMsg:
		if msg.err != nil {
			logger.Warn("refresh failed", "date", msg.date, "error", msg.err)
			if msg.date == m.date {
				m.todayModel.SetError(msg.err)
			}
			return m, nil
		}
		if msg.date == m.date {
			m.syncToday()
		}
		return m, nil

	case toggledMsg:
		// Failures were already reported through the notifier
		if msg.err != nil && !errors.Is(msg.err, toggle.ErrInFlight) && !errors.Is(msg.err, toggle.ErrCoolingDown) {
			logger.Debug("toggle failed", "habit", msg.habitID, "error", msg.err)
		}
		m.syncToday()
		return m, nil

	case monthMsg:
		if errors.Is(msg.err, heatmap.ErrLoading) {
			return m, nil
		}
		m.syncMonth()
		return m, nil

	case summaryMsg:
		if msg.err != nil {
			logger.Debug("analytics summary unavailable", "error", msg.err)
			return m, nil
		}
		s := msg.summary
		m.todayModel.SetSummary(&s)
		return m, nil

	case quoteMsg:
		if msg.err == nil {
			q := msg.quote
			m.todayModel.SetQuote(&q)
		}
		return m, nil

	case savedMsg:
		return m.handleSaved(msg)

	case today.ToggleMsg:
		return m, m.toggle(msg.HabitID)

	case today.PrevDayMsg:
		return m.shiftDate(-1)

	case today.NextDayMsg:
		return m.shiftDate(1)

	case today.GoTodayMsg:
		return m.setDate(utils.FormatDate(m.ctrl.Today()))

	case calendar.PrevMonthMsg:
		return m.stepMonth(-1)

	case calendar.NextMonthMsg:
		return m.stepMonth(1)

	case habits.AddHabitMsg:
		m.editingID = 0
		return m.openForm(forms.NewHabitFormModel(utils.FormatDate(m.ctrl.Today())))

	case habits.EditHabitMsg:
		m.editingID = msg.Habit.ID
		return m.openForm(forms.HabitFormFrom(msg.Habit))

	case habits.DeleteHabitMsg:
		h := msg.Habit
		m.deleting = &h
		m.state = StateConfirmDelete
		return m, nil
	}

	switch m.state {
	case StateForm:
		return m.updateForm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		filtering := m.tab == TabHabits && m.habitsModel.Filtering()
		switch {
		case key.Matches(msg, m.keys.Quit) && !filtering:
			m.quitting = true
			if m.unsubscribe != nil {
				m.unsubscribe()
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab) && !filtering:
			m.tab = (m.tab + 1) % Tab(len(tabNames))
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab) && !filtering:
			m.tab = (m.tab - 1 + Tab(len(tabNames))) % Tab(len(tabNames))
			return m, nil
		case key.Matches(msg, m.keys.Help) && !filtering:
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.tab {
	case TabToday:
		m.todayModel, cmd = m.todayModel.Update(msg)
	case TabCalendar:
		m.calendarModel, cmd = m.calendarModel.Update(msg)
	case TabHabits:
		m.habitsModel, cmd = m.habitsModel.Update(msg)
	}
	return m, cmd
}

func (m Model) handleChange(msg ChangeMsg) (tea.Model, tea.Cmd) {
	if msg.Date == m.date {
		m.syncToday()
	}
	if msg.State == toggle.Settled || msg.State == toggle.RolledBack {
		var status models.Status
		if e := m.ctrl.Entry(msg.HabitID, msg.Date); e.Checkin != nil {
			status = e.Checkin.Status
		}
		if m.cache.Patch(msg.HabitID, msg.Date, status) {
			m.refreshMonth()
		}
	}
	return m, m.events.wait()
}

func (m Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		var ve *api.ValidationError
		if errors.As(msg.err, &ve) {
			m.formError = "habit rejected by server: " + ve.Error()
		} else {
			m.formError = msg.err.Error()
		}
		return m.showToast(m.formError)
	}

	m.formError = ""
	verb := "Saved"
	if msg.deleted {
		verb = "Deleted"
		m.cache.Forget(msg.habit.ID)
		m.refreshMonth()
	}

	var toast tea.Cmd
	m, toast = m.showToast(fmt.Sprintf("%s %q", verb, msg.habit.Name))
	return m, tea.Batch(toast, m.refresh(m.date))
}

// refreshMonth redraws the calendar from the cache unless a load is pending
func (m *Model) refreshMonth() {
	if m.nav.Loading() {
		return
	}
	m.nav.Sync()
	m.syncMonth()
}

func (m Model) shiftDate(days int) (tea.Model, tea.Cmd) {
	loc := m.ctrl.Today().Location()
	day, err := utils.ParseDate(m.date, loc)
	if err != nil {
		return m, nil
	}
	next := day.AddDate(0, 0, days)
	if next.After(m.ctrl.Today()) {
		return m, nil
	}
	return m.setDate(utils.FormatDate(next))
}

func (m Model) setDate(date string) (tea.Model, tea.Cmd) {
	if date == m.date {
		return m, nil
	}
	m.date = date
	m.syncToday()
	return m, m.refresh(date)
}

func (m Model) stepMonth(delta int) (tea.Model, tea.Cmd) {
	if m.nav.Loading() {
		return m, nil
	}
	year, month := m.nav.Current()
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	m.calendarModel.SetMonth(m.loadingMonth(t.Year(), t.Month()))

	step := m.nav.Next
	if delta < 0 {
		step = m.nav.Prev
	}
	return m, m.navigate(step)
}

func (m Model) loadingMonth(year int, month time.Month) calendar.Month {
	cur := calendar.Month{Year: year, Month: month, Loading: true}
	if p, ok := m.cache.Lookup(year, month); ok {
		cur.Payload = p
	}
	return cur
}

func (m Model) openForm(fm *forms.HabitFormModel) (tea.Model, tea.Cmd) {
	m.habitForm = fm
	m.form = forms.NewHabitForm(fm)
	m.formError = ""
	m.state = StateForm
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Back) {
		m.state = StateNormal
		m.form = nil
		return m, nil
	}

	model, cmd := m.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.state = StateNormal
		in, err := m.habitForm.Input()
		if err != nil {
			m.formError = err.Error()
			return m.showToast(m.formError)
		}
		return m, m.saveHabit(m.editingID, in)
	case huh.StateAborted:
		m.state = StateNormal
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(k, m.keys.Confirm):
		h := *m.deleting
		m.deleting = nil
		m.state = StateNormal
		return m, m.deleteHabit(h)
	case key.Matches(k, m.keys.Cancel):
		m.deleting = nil
		m.state = StateNormal
	}
	return m, nil
}
