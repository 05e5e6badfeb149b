package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instadm/pkg/instagram"
)

func TestArtifactPaths(t *testing.T) {
	tests := []struct {
		username string
		settings string
		cookies  string
	}{
		{"plainuser", "session_plainuser.json", "cookies_plainuser.json"},
		{"@handle", "session__handle.json", "cookies__handle.json"},
		{"user.name", "session_user_name.json", "cookies_user_name.json"},
		{"@user.name", "session__user_name.json", "cookies__user_name.json"},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			assert.Equal(t, filepath.Join("dir", tt.settings), SettingsPath("dir", tt.username))
			assert.Equal(t, filepath.Join("dir", tt.cookies), CookiesPath("dir", tt.username))
		})
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := SettingsPath(dir, "tester")

	settings := instagram.NewSettings("tester")
	settings.Cookies["sessionid"] = "abc"

	require.NoError(t, writeJSON(path, settings))

	loaded, err := loadSettings(path)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, settings.UUID, loaded.UUID)
	assert.Equal(t, settings.Device.AndroidDeviceID, loaded.Device.AndroidDeviceID)
	assert.Equal(t, "abc", loaded.Cookies["sessionid"])

	// No temporary file left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadMissingArtifacts(t *testing.T) {
	dir := t.TempDir()

	settings, err := loadSettings(SettingsPath(dir, "tester"))
	require.NoError(t, err)
	assert.Nil(t, settings)

	cookies, err := loadCookies(CookiesPath(dir, "tester"))
	require.NoError(t, err)
	assert.Nil(t, cookies)
}

func TestLoadCorruptArtifact(t *testing.T) {
	dir := t.TempDir()
	path := SettingsPath(dir, "tester")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	_, err := loadSettings(path)
	require.Error(t, err)
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.json")

	// Missing file is not an error.
	require.NoError(t, removeIfExists(path))

	require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))
	require.NoError(t, removeIfExists(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
