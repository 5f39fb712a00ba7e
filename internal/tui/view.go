package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateForm:
		content = m.viewForm()
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		switch m.tab {
		case TabToday:
			content = m.todayModel.View()
		case TabCalendar:
			content = m.calendarModel.View()
		case TabHabits:
			content = m.habitsModel.View()
		}
	}

	parts := []string{m.viewTabs(), m.styles.doc.Render(content)}
	if m.toast != "" {
		parts = append(parts, m.styles.toast.Render(m.toast))
	}
	parts = append(parts, m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabNames {
		if m.tab == Tab(i) {
			tabs = append(tabs, m.styles.activeTab.Render(title))
		} else {
			tabs = append(tabs, m.styles.inactiveTab.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}
	title := "New habit"
	if m.editingID != 0 {
		title = fmt.Sprintf("Edit habit #%d", m.editingID)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render(title),
		"",
		m.form.View(),
	)
}

func (m Model) viewConfirmDelete() string {
	name := ""
	if m.deleting != nil {
		name = m.deleting.Name
	}
	return lipgloss.Place(m.width, max(m.height-4, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			m.styles.danger.Render(fmt.Sprintf("Delete %q and all its check-ins?", name)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
