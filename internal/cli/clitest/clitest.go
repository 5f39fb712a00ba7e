// Package clitest builds a signed-in cli.Context backed by an in-memory API.
package clitest

import (
	"bytes"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitvault/internal/api/apitest"
	"github.com/julianstephens/habitvault/internal/cli"
	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/storage/sqlite"
)

type Env struct {
	Ctx   *cli.Context
	API   *apitest.Server
	Store *sqlite.Store
	Out   *bytes.Buffer
	Notes *Notes
}

// Notes records notifications
type Notes struct {
	mu    sync.Mutex
	texts []string
}

func (n *Notes) Notify(text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, text)
	return nil
}

func (n *Notes) Texts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.texts...)
}

// New returns a context signed in to a fresh server. The clock reads noon
// UTC on today (YYYY-MM-DD) and the timezone is UTC.
func New(t testing.TB, today string) *Env {
	t.Helper()
	env := NewSignedOut(t, today)
	if err := env.Ctx.Session.Login(apitest.Token, &models.User{ID: 1, Username: "ana"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return env
}

// NewSignedOut is New without a stored token
func NewSignedOut(t testing.TB, today string) *Env {
	t.Helper()
	gokeyring.MockInit()
	t.Setenv(constants.EnvToken, "")
	t.Setenv(constants.EnvAPIURL, "")

	now, err := time.Parse(time.RFC3339, today+"T12:00:00Z")
	if err != nil {
		t.Fatalf("clitest: invalid date %q: %v", today, err)
	}

	srv := apitest.New(t, today)
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "habitvault.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	env := &Env{
		API:   srv,
		Store: store,
		Out:   &bytes.Buffer{},
		Notes: &Notes{},
	}
	env.Ctx = &cli.Context{
		Store:      store,
		Notifier:   env.Notes,
		Clock:      func() time.Time { return now },
		APIURL:     srv.APIURL(),
		HTTPClient: srv.Client(),
		Stdout:     env.Out,
	}
	if err := env.Ctx.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := env.Ctx.Session.Update(func(s *models.Settings) {
		s.Timezone = "UTC"
		s.ShowMotivationalQuote = false
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	return env
}
