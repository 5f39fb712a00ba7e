package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/julianstephens/habitvault/internal/api"
	"github.com/julianstephens/habitvault/internal/logger"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/notifier"
	"github.com/julianstephens/habitvault/internal/session"
	"github.com/julianstephens/habitvault/internal/storage"
	"github.com/julianstephens/habitvault/internal/toggle"
	"github.com/julianstephens/habitvault/internal/utils"
)

type Context struct {
	Store    storage.Provider
	Session  *session.Session
	Notifier api.Notifier
	Clock    utils.Clock

	// APIURL overrides the saved API url (--api-url)
	APIURL string
	// HTTPClient replaces the transport of the API client (tests)
	HTTPClient *http.Client
	// Stdout receives command output, os.Stdout when nil
	Stdout io.Writer

	client *api.Client
}

// Out is where commands print
func (c *Context) Out() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

// Printf prints to Out
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out(), format, args...)
}

// Println prints to Out
func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Out(), args...)
}

// Load opens the session over an already loaded store
func (c *Context) Load() error {
	if c.Session != nil {
		return nil
	}
	s, err := session.New(c.Store)
	if err != nil {
		return err
	}
	c.Session = s
	if c.Notifier == nil {
		c.Notifier = notifier.New(
			notifier.WithEnabled(s.Settings().NotificationsEnabled),
			notifier.WithFallback(os.Stderr),
		)
	}
	return nil
}

// API returns the REST client, creating it on first use
func (c *Context) API() (*api.Client, error) {
	if c.client != nil {
		return c.client, nil
	}
	if err := c.Load(); err != nil {
		return nil, err
	}

	baseURL := c.APIURL
	if baseURL == "" {
		baseURL = c.Session.APIURL()
	}
	opts := []api.Option{
		api.WithNotifier(c.Notifier),
		api.WithNetworkErrorPolicy(c.Session.Settings().NetworkErrorPolicy),
	}
	if c.HTTPClient != nil {
		opts = append(opts, api.WithHTTPClient(c.HTTPClient))
	}
	client, err := api.New(baseURL, c.Session, opts...)
	if err != nil {
		return nil, err
	}
	c.client = client
	return client, nil
}

func (c *Context) clock() utils.Clock {
	if c.Clock == nil {
		return utils.SystemClock
	}
	return c.Clock
}

// Location is the configured timezone
func (c *Context) Location() (*time.Location, error) {
	if err := c.Load(); err != nil {
		return nil, err
	}
	return c.Session.Location()
}

// Today is midnight of the current day in the configured timezone
func (c *Context) Today() (time.Time, error) {
	loc, err := c.Location()
	if err != nil {
		return time.Time{}, err
	}
	return utils.StartOfDay(c.clock()().In(loc)), nil
}

// ResolveDate parses date, defaulting to today when empty
func (c *Context) ResolveDate(date string) (time.Time, error) {
	if date == "" {
		return c.Today()
	}
	loc, err := c.Location()
	if err != nil {
		return time.Time{}, err
	}
	return utils.ParseDate(date, loc)
}

// ResolveMonth parses a YYYY-MM month, defaulting to the current one
func (c *Context) ResolveMonth(month string) (int, time.Month, error) {
	if month == "" {
		today, err := c.Today()
		if err != nil {
			return 0, 0, err
		}
		return today.Year(), today.Month(), nil
	}
	return utils.ParseMonth(month)
}

// Controller builds a toggle controller loaded with the current habits
func (c *Context) Controller(ctx context.Context, opts ...toggle.Option) (*toggle.Controller, error) {
	client, err := c.API()
	if err != nil {
		return nil, err
	}
	loc, err := c.Session.Location()
	if err != nil {
		return nil, err
	}

	habits, err := client.ListHabits(ctx)
	if err != nil {
		return nil, err
	}

	base := []toggle.Option{
		toggle.WithNotifier(c.Notifier),
		toggle.WithClock(c.clock()),
		toggle.WithLocation(loc),
	}
	ctrl := toggle.New(client, append(base, opts...)...)
	ctrl.SetHabits(habits)
	logger.Debug("controller ready", "habits", len(habits))
	return ctrl, nil
}

// FindHabit resolves a habit by numeric id or exact name
func (c *Context) FindHabit(ctx context.Context, ref string) (models.Habit, error) {
	client, err := c.API()
	if err != nil {
		return models.Habit{}, err
	}
	if id, err := strconv.Atoi(ref); err == nil {
		return client.GetHabit(ctx, id)
	}

	habits, err := client.ListHabits(ctx)
	if err != nil {
		return models.Habit{}, err
	}
	for _, h := range habits {
		if h.Name == ref {
			return h, nil
		}
	}
	return models.Habit{}, fmt.Errorf("habit %q not found", ref)
}
