package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitvault/internal/api"
	"github.com/julianstephens/habitvault/internal/logger"
	"github.com/julianstephens/habitvault/internal/toggle"
)

// toastWait bounds how long a toast waits for room in a full channel
const toastWait = 5 * time.Second

// Events carries callbacks from background goroutines into the program loop.
// When the channel is full, change and refresh messages are dropped since the
// next sync supersedes them. Toasts wait for room, up to toastWait.
type Events chan tea.Msg

func NewEvents() Events {
	return make(Events, 64)
}

func (e Events) post(msg tea.Msg) {
	select {
	case e <- msg:
		return
	default:
	}

	toast, ok := msg.(ToastMsg)
	if !ok {
		logger.Debug("tui event dropped", "msg", msg)
		return
	}
	timer := time.NewTimer(toastWait)
	defer timer.Stop()
	select {
	case e <- msg:
	case <-timer.C:
		logger.Warn("toast dropped", "text", toast.Text)
	}
}

// Refresher asks the program to reload the analytics summary
func (e Events) Refresher() toggle.Refresher {
	return func() { e.post(RefreshMsg{}) }
}

// Notifier tries tray first and shows a toast when the tray cannot take it
func (e Events) Notifier(tray api.Notifier) api.Notifier {
	return toastNotifier{tray: tray, events: e}
}

func (e Events) wait() tea.Cmd {
	if e == nil {
		return nil
	}
	return func() tea.Msg { return <-e }
}

type toastNotifier struct {
	tray   api.Notifier
	events Events
}

func (n toastNotifier) Notify(text string) error {
	if n.tray != nil {
		if err := n.tray.Notify(text); err == nil {
			return nil
		}
	}
	n.events.post(ToastMsg{Text: text})
	return nil
}
