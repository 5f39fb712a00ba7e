// Package session is the typed view of persisted client state: the API
// token, the signed-in user and preferences.
package session

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/keyring"
	"github.com/julianstephens/habitvault/internal/logger"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/storage"
	"github.com/julianstephens/habitvault/internal/utils"
)

// ErrNoToken is returned by Token when neither the environment nor the keyring holds one
var ErrNoToken = errors.New("not logged in")

// Session caches settings from a storage.Provider and writes every change through.
// It satisfies api.Credentials.
type Session struct {
	store  storage.Provider
	getenv func(string) string

	mu       sync.Mutex
	settings models.Settings
}

// New loads settings from store
func New(store storage.Provider) (*Session, error) {
	s := &Session{store: store, getenv: os.Getenv}
	settings, err := store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	s.settings = settings
	return s, nil
}

// Settings returns a copy of the current settings
func (s *Session) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.settings
	if s.settings.User != nil {
		u := *s.settings.User
		out.User = &u
	}
	return out
}

// Update applies fn to the settings and persists the result. Nothing is
// changed if saving fails.
func (s *Session) Update(fn func(*models.Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.settings
	fn(&next)
	if err := s.store.SaveSettings(next); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	s.settings = next
	return nil
}

// APIURL is the API root: HABITVAULT_API_URL, then the saved setting, then the default
func (s *Session) APIURL() string {
	if v := strings.TrimSpace(s.getenv(constants.EnvAPIURL)); v != "" {
		return v
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings.APIURL != "" {
		return s.settings.APIURL
	}
	return constants.DefaultAPIURL
}

// User returns the signed-in user, nil when logged out
func (s *Session) User() *models.User {
	return s.Settings().User
}

// Location loads the configured timezone
func (s *Session) Location() (*time.Location, error) {
	tz := s.Settings().Timezone
	loc, err := utils.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Token returns the bearer token: HABITVAULT_TOKEN first, then the keyring
func (s *Session) Token() (string, error) {
	tok, _, err := s.TokenSource()
	return tok, err
}

// TokenSource is Token plus where the token was found
func (s *Session) TokenSource() (string, keyring.Source, error) {
	tok, src, err := keyring.Lookup(s.getenv)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", src, ErrNoToken
	}
	return tok, src, err
}

// LoggedIn reports whether a token is available
func (s *Session) LoggedIn() bool {
	tok, err := s.Token()
	return err == nil && tok != ""
}

// Login stores token and remembers user
func (s *Session) Login(token string, user *models.User) error {
	if err := keyring.SetToken(token); err != nil {
		return err
	}
	return s.Update(func(st *models.Settings) { st.User = user })
}

// Logout forgets the token and user. Logging out twice is not an error.
func (s *Session) Logout() error {
	if err := keyring.DeleteToken(); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return s.Update(func(st *models.Settings) { st.User = nil })
}

// ClearCredentials is called when the server rejects the token
func (s *Session) ClearCredentials() error {
	if _, src, err := keyring.Lookup(s.getenv); err == nil && src == keyring.SourceEnv {
		logger.Warn("server rejected the token from " + constants.EnvToken)
	}
	return s.Logout()
}
