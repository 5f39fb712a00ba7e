package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitvault/internal/tui/theme"
)

type styles struct {
	activeTab   lipgloss.Style
	inactiveTab lipgloss.Style
	doc         lipgloss.Style
	toast       lipgloss.Style
	danger      lipgloss.Style
}

func newStyles(p theme.Palette) styles {
	return styles{
		activeTab: lipgloss.NewStyle().
			Foreground(p.Accent).
			Background(p.TabBg).
			Padding(0, 1).
			Bold(true),
		inactiveTab: lipgloss.NewStyle().
			Foreground(p.Muted).
			Padding(0, 1),
		doc: lipgloss.NewStyle().Margin(1, 2),
		toast: lipgloss.NewStyle().
			Foreground(p.ToastFg).
			Background(p.ToastBg).
			Padding(0, 1),
		danger: lipgloss.NewStyle().Foreground(p.Danger).Bold(true),
	}
}
