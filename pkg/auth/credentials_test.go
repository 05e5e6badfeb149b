package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentStore(t *testing.T) {
	store := NewEnvironmentStore()

	t.Run("unset variables", func(t *testing.T) {
		t.Setenv("INSTADM_USERNAME", "")
		t.Setenv("INSTADM_PASSWORD", "")

		_, err := store.Retrieve("")
		assert.ErrorIs(t, err, ErrCredentialsNotFound)
		assert.False(t, store.Exists(""))
	})

	t.Run("configured credentials", func(t *testing.T) {
		t.Setenv("INSTADM_USERNAME", "envuser")
		t.Setenv("INSTADM_PASSWORD", "envpass")

		creds, err := store.Retrieve("")
		require.NoError(t, err)
		assert.Equal(t, "envuser", creds.Username)
		assert.Equal(t, "envpass", creds.Password)

		// Explicit handle must match.
		creds, err = store.Retrieve("envuser")
		require.NoError(t, err)
		assert.Equal(t, "envuser", creds.Username)

		_, err = store.Retrieve("someoneelse")
		assert.ErrorIs(t, err, ErrCredentialsNotFound)
	})

	t.Run("read only", func(t *testing.T) {
		assert.ErrorIs(t, store.Save(&Credentials{Username: "x", Password: "y"}), ErrStoreUnavailable)
		assert.ErrorIs(t, store.Delete("x"), ErrStoreUnavailable)
	})
}

func TestEncryptedFileStore(t *testing.T) {
	t.Setenv("INSTADM_PASSPHRASE", "test-passphrase")

	newStore := func(t *testing.T) *EncryptedFileStore {
		t.Helper()
		store, err := NewEncryptedFileStore(filepath.Join(t.TempDir(), "credentials.enc"))
		require.NoError(t, err)
		return store
	}

	t.Run("save and retrieve", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(&Credentials{Username: "tester", Password: "secret"}))

		creds, err := store.Retrieve("tester")
		require.NoError(t, err)
		assert.Equal(t, "secret", creds.Password)
		assert.True(t, store.Exists("tester"))
	})

	t.Run("ciphertext survives reopening", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credentials.enc")

		store, err := NewEncryptedFileStore(path)
		require.NoError(t, err)
		require.NoError(t, store.Save(&Credentials{Username: "tester", Password: "secret"}))

		reopened, err := NewEncryptedFileStore(path)
		require.NoError(t, err)
		creds, err := reopened.Retrieve("tester")
		require.NoError(t, err)
		assert.Equal(t, "secret", creds.Password)
	})

	t.Run("delete removes the account", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(&Credentials{Username: "tester", Password: "secret"}))
		require.NoError(t, store.Delete("tester"))

		_, err := store.Retrieve("tester")
		assert.Error(t, err)
	})

	t.Run("unknown account", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Retrieve("nobody")
		assert.Error(t, err)
	})

	t.Run("list returns stored accounts", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(&Credentials{Username: "one", Password: "a"}))
		require.NoError(t, store.Save(&Credentials{Username: "two", Password: "b"}))

		accounts, err := store.List()
		require.NoError(t, err)
		assert.Len(t, accounts, 2)
	})
}
