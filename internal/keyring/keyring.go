// Package keyring resolves the API bearer token. HABITVAULT_TOKEN wins over
// the token saved in the OS keyring.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitvault/internal/constants"
)

var (
	// ErrNotFound is returned when neither the environment nor the keyring holds a token
	ErrNotFound = errors.New("api token not found")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
	// ErrInvalidToken is returned for an empty token or one containing whitespace
	ErrInvalidToken = errors.New("invalid api token")
)

// Source says where a token was found
type Source string

const (
	SourceEnv     Source = constants.EnvToken
	SourceKeyring Source = "keyring"
)

// Normalize trims a pasted token and drops a leading "Bearer " scheme
func Normalize(token string) (string, error) {
	token = strings.TrimSpace(token)
	if scheme, rest, ok := strings.Cut(token, " "); ok && strings.EqualFold(scheme, "bearer") {
		token = strings.TrimSpace(rest)
	}
	if token == "" || strings.ContainsAny(token, " \t\r\n") {
		return "", ErrInvalidToken
	}
	return token, nil
}

// Lookup returns the token from the environment, read through getenv, or
// from the keyring. A nil getenv skips the environment.
func Lookup(getenv func(string) string) (string, Source, error) {
	if getenv != nil {
		if v := getenv(constants.EnvToken); strings.TrimSpace(v) != "" {
			token, err := Normalize(v)
			if err != nil {
				return "", SourceEnv, fmt.Errorf("%s: %w", constants.EnvToken, err)
			}
			return token, SourceEnv, nil
		}
	}
	token, err := GetToken()
	if err != nil {
		return "", SourceKeyring, err
	}
	return token, SourceKeyring, nil
}

// GetToken retrieves the saved token. Returns ErrNotFound if none is stored.
func GetToken() (string, error) {
	token, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return token, nil
}

// SetToken normalizes and saves the token, replacing any previous one
func SetToken(token string) error {
	token, err := Normalize(token)
	if err != nil {
		return err
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// DeleteToken removes the saved token. Returns ErrNotFound if none was stored.
func DeleteToken() error {
	err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// IsAvailable probes the OS keyring with a read
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "availability-probe")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
