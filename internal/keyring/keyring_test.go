package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitvault/internal/constants"
)

func TestSetAndGetToken(t *testing.T) {
	gokeyring.MockInit()

	if err := SetToken("tok-123"); err != nil {
		t.Fatalf("SetToken() failed: %v", err)
	}

	got, err := GetToken()
	if err != nil {
		t.Fatalf("GetToken() failed: %v", err)
	}
	if got != "tok-123" {
		t.Errorf("GetToken() = %q, want %q", got, "tok-123")
	}

	// Set replaces the previous token
	if err := SetToken("tok-456"); err != nil {
		t.Fatal(err)
	}
	if got, _ := GetToken(); got != "tok-456" {
		t.Errorf("GetToken() = %q after replace", got)
	}
}

func TestSetTokenInvalid(t *testing.T) {
	gokeyring.MockInit()

	for _, tok := range []string{"", "   ", "two words", "Bearer "} {
		if err := SetToken(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("SetToken(%q) error = %v, want ErrInvalidToken", tok, err)
		}
	}
	if _, err := GetToken(); !errors.Is(err, ErrNotFound) {
		t.Errorf("invalid token was stored: %v", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"tok-1", "tok-1"},
		{"  tok-1\n", "tok-1"},
		{"Bearer tok-1", "tok-1"},
		{"bearer   tok-1", "tok-1"},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("Normalize(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestSetTokenStripsScheme(t *testing.T) {
	gokeyring.MockInit()

	if err := SetToken("Bearer tok-789 "); err != nil {
		t.Fatal(err)
	}
	if got, _ := GetToken(); got != "tok-789" {
		t.Errorf("GetToken() = %q, want tok-789", got)
	}
}

func TestLookup(t *testing.T) {
	gokeyring.MockInit()
	env := map[string]string{}
	getenv := func(k string) string { return env[k] }

	if _, _, err := Lookup(getenv); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup() error = %v, want ErrNotFound", err)
	}

	if err := SetToken("saved"); err != nil {
		t.Fatal(err)
	}
	if tok, src, err := Lookup(getenv); err != nil || tok != "saved" || src != SourceKeyring {
		t.Errorf("Lookup() = %q, %s, %v; want keyring token", tok, src, err)
	}

	env[constants.EnvToken] = "Bearer from-env"
	if tok, src, err := Lookup(getenv); err != nil || tok != "from-env" || src != SourceEnv {
		t.Errorf("Lookup() = %q, %s, %v; want environment token", tok, src, err)
	}
	if tok, src, _ := Lookup(nil); tok != "saved" || src != SourceKeyring {
		t.Errorf("Lookup(nil) = %q, %s; want keyring token", tok, src)
	}

	env[constants.EnvToken] = "has space"
	if _, src, err := Lookup(getenv); !errors.Is(err, ErrInvalidToken) || src != SourceEnv {
		t.Errorf("Lookup() = %s, %v; want invalid environment token", src, err)
	}
}

func TestDeleteToken(t *testing.T) {
	gokeyring.MockInit()

	if err := SetToken("tok"); err != nil {
		t.Fatal(err)
	}
	if err := DeleteToken(); err != nil {
		t.Fatalf("DeleteToken() failed: %v", err)
	}
	if _, err := GetToken(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetToken() error = %v, want %v", err, ErrNotFound)
	}
	if err := DeleteToken(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteToken() error = %v, want %v", err, ErrNotFound)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false, want true in mock mode")
	}
}
