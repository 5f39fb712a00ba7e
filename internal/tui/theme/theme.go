// Package theme holds the TUI palettes.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitvault/internal/models"
)

type Palette struct {
	Accent    lipgloss.Color
	Muted     lipgloss.Color
	Text      lipgloss.Color
	TabBg     lipgloss.Color
	Completed lipgloss.Color
	Missed    lipgloss.Color
	Skipped   lipgloss.Color
	NotMarked lipgloss.Color
	Danger    lipgloss.Color
	Warning   lipgloss.Color
	ToastFg   lipgloss.Color
	ToastBg   lipgloss.Color
	EmptyCell lipgloss.Color
}

var (
	Light = Palette{
		Accent:    "205",
		Muted:     "245",
		Text:      "235",
		TabBg:     "254",
		Completed: "34",
		Missed:    "160",
		Skipped:   "136",
		NotMarked: "244",
		Danger:    "196",
		Warning:   "172",
		ToastFg:   "#FFFDF5",
		ToastBg:   "#D9534F",
		EmptyCell: "252",
	}

	Dark = Palette{
		Accent:    "205",
		Muted:     "240",
		Text:      "252",
		TabBg:     "236",
		Completed: "42",
		Missed:    "203",
		Skipped:   "214",
		NotMarked: "245",
		Danger:    "196",
		Warning:   "214",
		ToastFg:   "#FFFDF5",
		ToastBg:   "#D9534F",
		EmptyCell: "238",
	}
)

// For picks the palette of the dark mode setting
func For(dark bool) Palette {
	if dark {
		return Dark
	}
	return Light
}

// Status colours a day state
func (p Palette) Status(s models.DayState) lipgloss.Style {
	style := lipgloss.NewStyle()
	switch s {
	case models.DayCompleted:
		return style.Foreground(p.Completed)
	case models.DayMissed:
		return style.Foreground(p.Missed)
	case models.DaySkipped:
		return style.Foreground(p.Skipped)
	case models.DayNotScheduled:
		return style.Foreground(p.Muted)
	default:
		return style.Foreground(p.NotMarked)
	}
}

// Icon is the marker drawn next to a habit for a day state
func Icon(s models.DayState) string {
	switch s {
	case models.DayCompleted:
		return "✓"
	case models.DayMissed:
		return "✗"
	case models.DaySkipped:
		return "↷"
	case models.DayNotScheduled:
		return "·"
	default:
		return "○"
	}
}
