package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/habitvault/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func withConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := userConfigDirFunc
	t.Cleanup(func() { userConfigDirFunc = old })
	userConfigDirFunc = func() (string, error) { return dir, nil }
	return dir
}

func withProcess(t *testing.T, executable string) {
	t.Helper()
	old := findProcessFunc
	t.Cleanup(func() { findProcessFunc = old })
	findProcessFunc = func(pid int) (ps.Process, error) {
		if executable == "" {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: executable}, nil
	}
}

func writeLockfile(t *testing.T, configDir, content string) {
	t.Helper()
	dir := filepath.Join(configDir, constants.TrayAppIdentifier)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, constants.NotifierLockfileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGetTrayAppConfigDir(t *testing.T) {
	tempDir := withConfigDir(t)

	expectedDefault := filepath.Join(tempDir, constants.TrayAppIdentifier)
	dir, err := GetTrayAppConfigDir()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if dir != expectedDefault {
		t.Errorf("expected %s, got %s", expectedDefault, dir)
	}

	if err := os.MkdirAll(expectedDefault, 0755); err != nil {
		t.Fatal(err)
	}
	customDir := "/custom/habitvault/dir"
	settingsJSON := fmt.Sprintf(`{"settings": {"lockfile_dir": "%s"}}`, customDir)
	if err := os.WriteFile(filepath.Join(expectedDefault, "settings.json"), []byte(settingsJSON), 0644); err != nil {
		t.Fatal(err)
	}

	dir, err = GetTrayAppConfigDir()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if dir != customDir {
		t.Errorf("expected %s, got %s", customDir, dir)
	}
}

func TestFindAndValidateTrayProcess(t *testing.T) {
	lockfilePath := filepath.Join(t.TempDir(), constants.NotifierLockfileName)

	if _, _, err := findAndValidateTrayProcess(lockfilePath); err != ErrTrayNotRunning {
		t.Errorf("missing lockfile: got %v, want ErrTrayNotRunning", err)
	}

	invalid := map[string]string{
		"two parts":      "8080|12345",
		"garbage":        "invalid",
		"empty secret":   "8080|12345|",
		"empty port":     "|12345|secret",
		"port too large": "99999|12345|secret",
		"bad pid":        "8080|abc|secret",
	}
	withProcess(t, constants.TrayAppExecutable)
	for name, content := range invalid {
		if err := os.WriteFile(lockfilePath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := findAndValidateTrayProcess(lockfilePath); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	if err := os.WriteFile(lockfilePath, []byte("8080|12345|testsecret123\n"), 0644); err != nil {
		t.Fatal(err)
	}

	withProcess(t, "")
	if _, _, err := findAndValidateTrayProcess(lockfilePath); err != ErrTrayNotRunning {
		t.Errorf("missing process: got %v", err)
	}

	withProcess(t, "other-app")
	if _, _, err := findAndValidateTrayProcess(lockfilePath); err == nil || !strings.Contains(err.Error(), "other-app") {
		t.Errorf("wrong executable: got %v", err)
	}

	withProcess(t, constants.TrayAppExecutable)
	port, secret, err := findAndValidateTrayProcess(lockfilePath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if port != "8080" || secret != "testsecret123" {
		t.Errorf("got port %q secret %q", port, secret)
	}
}

func trayServer(t *testing.T, got *[]WebhookPayload) (*httptest.Server, string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(constants.TraySecretHeader) != "test-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Unauthorized"))
			return
		}
		var payload WebhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if payload.Text == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		*got = append(*got, payload)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	return server, u.Port()
}

func TestSendNotification(t *testing.T) {
	var got []WebhookPayload
	_, port := trayServer(t, &got)
	n := New()

	if err := n.sendNotification(port, "test-secret", WebhookPayload{Text: "hello"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := n.sendNotification(port, "wrong-secret", WebhookPayload{Text: "hello"}); err == nil {
		t.Error("expected error for wrong secret")
	}
	if err := n.sendNotification(port, "test-secret", WebhookPayload{Text: "fail"}); err == nil {
		t.Error("expected error for server failure")
	}
	if len(got) != 1 {
		t.Errorf("expected 1 delivered payload, got %d", len(got))
	}
}

func TestNotifyThroughTray(t *testing.T) {
	var got []WebhookPayload
	_, port := trayServer(t, &got)
	configDir := withConfigDir(t)
	withProcess(t, constants.TrayAppExecutable)
	writeLockfile(t, configDir, port+"|4242|test-secret")

	var fallback bytes.Buffer
	if err := New(WithFallback(&fallback)).Notify("Failed to update check-in"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(got) != 1 || got[0].Text != "Failed to update check-in" || got[0].DurationMs != constants.NotificationDurationMs {
		t.Errorf("unexpected payloads %+v", got)
	}
	if fallback.Len() != 0 {
		t.Errorf("fallback should be unused, got %q", fallback.String())
	}
}

func TestNotifyFallsBackToTerminal(t *testing.T) {
	withConfigDir(t)

	var fallback bytes.Buffer
	if err := New(WithFallback(&fallback)).Notify("Server error"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if !strings.Contains(fallback.String(), "Server error") {
		t.Errorf("fallback output = %q", fallback.String())
	}

	if err := New().Notify("Server error"); err != ErrTrayNotRunning {
		t.Errorf("Notify() without fallback = %v, want ErrTrayNotRunning", err)
	}
}

func TestNotifyDisabled(t *testing.T) {
	withConfigDir(t)

	var fallback bytes.Buffer
	if err := New(WithEnabled(false), WithFallback(&fallback)).Notify("hidden"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if fallback.Len() != 0 {
		t.Errorf("disabled notifier wrote %q", fallback.String())
	}
}

func TestCheckTray(t *testing.T) {
	configDir := withConfigDir(t)
	if err := CheckTray(); err == nil {
		t.Error("expected error without lockfile")
	}

	withProcess(t, constants.TrayAppExecutable)
	writeLockfile(t, configDir, "8080|4242|secret")
	if err := CheckTray(); err != nil {
		t.Errorf("CheckTray() error = %v", err)
	}
}
