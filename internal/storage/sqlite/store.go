// Package sqlite stores client settings in a local SQLite database.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/migration"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/migrations"
)

// ErrNotInitialized is returned by Load before 'habitvault init' has run
var ErrNotInitialized = errors.New("storage not initialized, run 'habitvault init' first")

type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

// DefaultSettings is what a fresh database starts with
func DefaultSettings() models.Settings {
	return models.Settings{
		APIURL:                constants.DefaultAPIURL,
		DarkMode:              constants.DefaultDarkMode,
		ShowMotivationalQuote: constants.DefaultShowMotivationalQuote,
		NotificationsEnabled:  constants.DefaultNotificationsEnabled,
		NetworkErrorPolicy:    constants.DefaultNetworkErrorPolicy,
		Timezone:              constants.DefaultTimezone,
		AnalyticsPeriod:       constants.DefaultAnalyticsPeriod,
	}
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.open(); err != nil {
		return err
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Fill in defaults on a fresh database, keep existing values otherwise
	settings, err := s.GetSettings()
	if errors.Is(err, errNoSettings) {
		settings = DefaultSettings()
	} else if err != nil {
		return err
	}
	if settings.APIURL == "" {
		settings.APIURL = constants.DefaultAPIURL
	}
	if err := s.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save default settings: %w", err)
	}

	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return ErrNotInitialized
	}

	if err := s.open(); err != nil {
		return err
	}

	return s.validateSchemaVersion()
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

func (s *Store) open() error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) migrationRunner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS), nil
}

func (s *Store) runMigrations() error {
	runner, err := s.migrationRunner()
	if err != nil {
		return err
	}
	_, err = runner.Apply()
	return err
}

func (s *Store) validateSchemaVersion() error {
	runner, err := s.migrationRunner()
	if err != nil {
		return err
	}
	return runner.Validate()
}

// SchemaVersion reports the applied and the latest embedded migration versions
func (s *Store) SchemaVersion() (int, int, error) {
	if s.db == nil {
		return 0, 0, ErrNotInitialized
	}
	runner, err := s.migrationRunner()
	if err != nil {
		return 0, 0, err
	}
	current, err := runner.CurrentVersion()
	if err != nil {
		return 0, 0, err
	}
	all, err := runner.Migrations()
	if err != nil {
		return 0, 0, err
	}
	latest := 0
	if len(all) > 0 {
		latest = all[len(all)-1].Version
	}
	return current, latest, nil
}
