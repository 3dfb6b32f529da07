package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "habitflow"
	user    = "gemini-api-key"
)

var (
	// ErrNotFound is returned when no key is stored in the keyring
	ErrNotFound = errors.New("api key not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// GetAPIKey retrieves the Gemini API key from the OS keyring.
func GetAPIKey() (string, error) {
	key, err := keyring.Get(service, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return key, nil
}

func SetAPIKey(key string) error {
	if key == "" {
		return errors.New("api key cannot be empty")
	}
	if err := keyring.Set(service, user, key); err != nil {
		return fmt.Errorf("failed to store api key in keyring: %w", err)
	}
	return nil
}

func DeleteAPIKey() error {
	err := keyring.Delete(service, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete api key from keyring: %w", err)
	}
	return nil
}

// ResolveAPIKey returns configured if set, otherwise whatever the keyring
// holds. A missing or unavailable keyring yields "".
func ResolveAPIKey(configured string) string {
	if configured != "" {
		return configured
	}
	key, err := GetAPIKey()
	if err != nil {
		return ""
	}
	return key
}
