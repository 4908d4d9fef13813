package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name used for OS keychain entries.
const KeyringService = "web3-jobs"

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value provided via configuration or flags.
	Value string
	// File points to a file containing the secret value. When set it takes
	// precedence over Value.
	File string
	// Env names an environment variable consulted when neither File nor Value is set.
	Env string
	// KeyringUser is the account looked up in the OS keychain under
	// KeyringService as the last resort.
	KeyringUser string
}

// Load returns the resolved secret value from the provided source. The lookup
// order is File, Value, Env, then the OS keychain. The returned secret is
// always trimmed.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
			return secret, nil
		}
	}

	if user := strings.TrimSpace(src.KeyringUser); user != "" {
		secret, err := keyring.Get(KeyringService, user)
		switch {
		case err == nil && strings.TrimSpace(secret) != "":
			return strings.TrimSpace(secret), nil
		case err != nil && !errors.Is(err, keyring.ErrNotFound):
			return "", fmt.Errorf("reading %s from keychain: %w", name, err)
		}
	}

	return "", fmt.Errorf("%s is not configured", name)
}

// Store saves a secret in the OS keychain for later Load calls.
func Store(user, secret string) error {
	user = strings.TrimSpace(user)
	if user == "" {
		return errors.New("keychain user is required")
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return errors.New("secret must not be empty")
	}
	return keyring.Set(KeyringService, user, secret)
}
