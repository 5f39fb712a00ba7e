package storage

import "github.com/julianstephens/habitvault/internal/models"

// Provider persists client-side settings between runs
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Utils
	GetConfigPath() string
}
