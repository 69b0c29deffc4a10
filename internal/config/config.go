// Package config persists the Mastodon instance URL and access token.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// AppName is used for the config directory and user-facing hints.
	AppName = "photo-tooter"

	// EnvConfigPath overrides the default config file location.
	EnvConfigPath = "PHOTO_TOOTER_CONFIG"

	fileName = "config.json"

	keyBaseURL     = "base_url"
	keyAccessToken = "access_token"
)

// Config holds the credentials for a single Mastodon account.
type Config struct {
	BaseURL     string `json:"base_url"`
	AccessToken string `json:"access_token"`
}

// Store reads and writes the config file at Path.
type Store struct {
	Path string
}

// DefaultPath returns ~/.config/photo-tooter/config.json unless PHOTO_TOOTER_CONFIG is set.
func DefaultPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return ExpandHome(p)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName, fileName), nil
}

// NewStore returns a Store bound to DefaultPath.
func NewStore() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return &Store{Path: path}, nil
}

// ValidateBaseURL checks that raw is an http(s) URL.
func ValidateBaseURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return ValidationError{Field: "URL", Reason: "must start with http:// or https://"}
	}
	return nil
}

// ValidateAccessToken checks that token is not blank.
func ValidateAccessToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return ValidationError{Field: "access token", Reason: "cannot be empty"}
	}
	return nil
}

// Normalize trims both values and strips trailing slashes from the URL.
func Normalize(baseURL, accessToken string) Config {
	return Config{
		BaseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		AccessToken: strings.TrimSpace(accessToken),
	}
}

// Save overwrites the config file with the normalized values.
// Restricting the file to 0600 is best effort.
func (s *Store) Save(baseURL, accessToken string) (Config, error) {
	cfg := Normalize(baseURL, accessToken)

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return Config{}, fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return Config{}, fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(s.Path, append(data, '\n'), 0o600); err != nil {
		return Config{}, fmt.Errorf("write config: %w", err)
	}
	_ = os.Chmod(s.Path, 0o600)

	return cfg, nil
}

// Load reads the config file written by Save.
func (s *Store) Load() (Config, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, NotConfiguredError{Path: s.Path}
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, CorruptedError{Path: s.Path, Err: err}
	}

	var missing []string
	for _, key := range []string{keyBaseURL, keyAccessToken} {
		if _, ok := raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Config{}, MissingFieldsError{Path: s.Path, Fields: missing}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, CorruptedError{Path: s.Path, Err: err}
	}
	return cfg, nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
