package system

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitvault/internal/cli"
	"github.com/julianstephens/habitvault/internal/heatmap"
	"github.com/julianstephens/habitvault/internal/notifier"
	"github.com/julianstephens/habitvault/internal/toggle"
	"github.com/julianstephens/habitvault/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	settings := ctx.Session.Settings()

	// Failures show as toasts unless the tray app takes them
	events := tui.NewEvents()
	ctx.Notifier = events.Notifier(notifier.New(notifier.WithEnabled(settings.NotificationsEnabled)))

	ctrl, err := ctx.Controller(context.Background(), toggle.WithRefresher(events.Refresher()))
	if err != nil {
		return err
	}
	client, err := ctx.API()
	if err != nil {
		return err
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}

	model := tui.NewModel(tui.Config{
		Controller: ctrl,
		Backend:    client,
		Cache:      heatmap.NewCache(client, loc),
		Settings:   settings,
		Events:     events,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
