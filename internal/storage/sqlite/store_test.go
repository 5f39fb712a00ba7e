package sqlite

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/storage"
)

var _ storage.Provider = (*Store)(nil)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "nested", "habitvault.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInitWritesDefaults(t *testing.T) {
	store := setupTestStore(t)

	got, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if diff := cmp.Diff(DefaultSettings(), got); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	want := models.Settings{
		APIURL:                "https://habits.example.com/api",
		User:                  &models.User{ID: 3, Username: "ana", Email: "ana@example.com"},
		DarkMode:              true,
		ShowMotivationalQuote: false,
		NotificationsEnabled:  true,
		NetworkErrorPolicy:    constants.NetworkErrorsNotify,
		Timezone:              "Europe/Lisbon",
		AnalyticsStartDate:    "2025-05-01",
		AnalyticsEndDate:      "2025-05-31",
		AnalyticsPeriod:       constants.PeriodMonth,
	}
	if err := store.SaveSettings(want); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	got, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}

	// logging out clears the user
	want.User = nil
	if err := store.SaveSettings(want); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetSettings()
	if got.User != nil {
		t.Errorf("expected no user, got %+v", got.User)
	}
}

func TestInitKeepsExistingSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitvault.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	s, _ := store.GetSettings()
	s.DarkMode = true
	if err := store.SaveSettings(s); err != nil {
		t.Fatal(err)
	}
	store.Close()

	again := NewStore(path)
	if err := again.Init(); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	defer again.Close()
	got, _ := again.GetSettings()
	if !got.DarkMode {
		t.Error("Init overwrote existing settings")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitvault.db")

	if err := NewStore(path).Load(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Load before Init = %v, want ErrNotInitialized", err)
	}

	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	store.Close()

	loaded := NewStore(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer loaded.Close()
	if got := loaded.GetConfigPath(); got != path {
		t.Errorf("GetConfigPath() = %q", got)
	}
	if _, err := loaded.GetSettings(); err != nil {
		t.Errorf("GetSettings after Load failed: %v", err)
	}
}

func TestSchemaVersion(t *testing.T) {
	if _, _, err := NewStore(filepath.Join(t.TempDir(), "x.db")).SchemaVersion(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("SchemaVersion before open = %v", err)
	}

	store := setupTestStore(t)
	current, latest, err := store.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if current != latest || latest < 1 {
		t.Errorf("SchemaVersion() = %d, %d", current, latest)
	}
}
