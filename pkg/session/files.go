package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"instadm/pkg/instagram"
)

// safeName normalizes an account handle into a filename component. Handles
// may contain "@" and ".", which do not belong in artifact names.
func safeName(username string) string {
	r := strings.NewReplacer("@", "_", ".", "_")
	return r.Replace(username)
}

// SettingsPath returns the session-settings artifact path for a handle.
func SettingsPath(dir, username string) string {
	return filepath.Join(dir, fmt.Sprintf("session_%s.json", safeName(username)))
}

// CookiesPath returns the cookie-jar artifact path for a handle.
func CookiesPath(dir, username string) string {
	return filepath.Join(dir, fmt.Sprintf("cookies_%s.json", safeName(username)))
}

// loadSettings reads a persisted session-settings artifact. A missing file is
// returned as (nil, nil).
func loadSettings(path string) (*instagram.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session artifact: %w", err)
	}
	var settings instagram.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode session artifact: %w", err)
	}
	return &settings, nil
}

// loadCookies reads a persisted cookie-jar artifact. A missing file is
// returned as (nil, nil).
func loadCookies(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cookie artifact: %w", err)
	}
	var cookies map[string]string
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("failed to decode cookie artifact: %w", err)
	}
	return cookies, nil
}

// writeJSON persists v atomically: write to a temporary file, sync, rename.
func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tempPath := path + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create temporary artifact: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync artifact: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace artifact: %w", err)
	}
	return nil
}

// removeIfExists deletes path, ignoring a missing file.
func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
