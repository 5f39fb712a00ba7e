package constants

import "time"

const (
	AppName            = "habitvault"
	DefaultKeyringUser = "api-token"
	DefaultConfigPath  = "~/.config/habitvault/habitvault.db"
	DefaultAPIURL      = "http://localhost:5000/api"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// MonthFormat is the format used for month arguments (YYYY-MM)
	MonthFormat = "2006-01"

	// Environment overrides
	EnvAPIURL = "HABITVAULT_API_URL"
	EnvToken  = "HABITVAULT_TOKEN"

	// HTTP client constants
	RequestTimeout    = 15 * time.Second
	RequestIDHeader   = "X-Request-ID"
	MaxHabitNameLen   = 50
	LookupFanout      = 4
	LookupItemTimeout = 5 * time.Second

	// ToggleCooldown absorbs rapid repeated toggles of the same habit after a toggle settles.
	ToggleCooldown = 300 * time.Millisecond

	// Notify constants
	NotifierLockfileName   = "habitvault-notifier.lock"
	NotificationDurationMs = 4000
	TrayAppIdentifier      = "com.julianstephens.habitvault"
	TrayAppExecutable      = "habitvault-tray"
	TraySecretHeader       = "X-Habitvault-Secret"

	// Log constants
	LogDirName  = "logs"
	LogFileName = "habitvault.log"
)
