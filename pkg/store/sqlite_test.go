package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instadm/pkg/logger"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "contacts.db"), logger.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleContacts() []Contact {
	return []Contact{
		{Pk: 1, Username: "ana", FullName: "Ana", Language: "es"},
		{Pk: 2, Username: "bob", FullName: "Bob", Language: "en"},
		{Pk: 3, Username: "carla", IsPrivate: true, Language: "es"},
	}
}

func TestInsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	added, err := s.InsertIfAbsent(ctx, sampleContacts())
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	// Re-inserting the same handles adds nothing and changes nothing.
	added, err = s.InsertIfAbsent(ctx, sampleContacts())
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	// A mix of known and new handles counts only the new one.
	added, err = s.InsertIfAbsent(ctx, []Contact{
		{Pk: 1, Username: "ana"},
		{Pk: 4, Username: "dan", Language: "en"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestListPending(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.InsertIfAbsent(ctx, sampleContacts())
	require.NoError(t, err)

	t.Run("includes private accounts by default", func(t *testing.T) {
		pending, err := s.ListPending(ctx, 10, false)
		require.NoError(t, err)
		assert.Len(t, pending, 3)
	})

	t.Run("only public filters private accounts", func(t *testing.T) {
		pending, err := s.ListPending(ctx, 10, true)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, "ana", pending[0].Username)
		assert.Equal(t, "bob", pending[1].Username)
	})

	t.Run("respects the limit", func(t *testing.T) {
		pending, err := s.ListPending(ctx, 1, false)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "ana", pending[0].Username)
	})

	t.Run("contacted accounts drop out", func(t *testing.T) {
		require.NoError(t, s.MarkContacted(ctx, "ana"))
		pending, err := s.ListPending(ctx, 10, true)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "bob", pending[0].Username)
	})
}

func TestMarkContacted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.InsertIfAbsent(ctx, sampleContacts())
	require.NoError(t, err)

	require.NoError(t, s.MarkContacted(ctx, "ana"))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	for _, c := range all {
		if c.Username == "ana" {
			assert.True(t, c.Contacted)
			require.NotNil(t, c.LastContact)
		} else {
			assert.False(t, c.Contacted)
			assert.Nil(t, c.LastContact)
		}
	}

	// Unknown handles are reported, not silently ignored.
	err = s.MarkContacted(ctx, "nobody")
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestLanguage(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.InsertIfAbsent(ctx, sampleContacts())
	require.NoError(t, err)

	lang, err := s.Language(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "es", lang)

	_, err = s.Language(ctx, "nobody")
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestPostProgress(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	url := "https://www.instagram.com/p/DEmCZkWoVPk/"

	t.Run("defaults to zero", func(t *testing.T) {
		offset, err := s.Offset(ctx, url)
		require.NoError(t, err)
		assert.Equal(t, 0, offset)
	})

	t.Run("round trips and overwrites", func(t *testing.T) {
		require.NoError(t, s.SetOffset(ctx, url, 10))
		offset, err := s.Offset(ctx, url)
		require.NoError(t, err)
		assert.Equal(t, 10, offset)

		require.NoError(t, s.SetOffset(ctx, url, 20))
		offset, err = s.Offset(ctx, url)
		require.NoError(t, err)
		assert.Equal(t, 20, offset)
	})

	t.Run("progress is per post", func(t *testing.T) {
		other := "https://www.instagram.com/p/CAfDTL1kW3H/"
		require.NoError(t, s.SetOffset(ctx, other, 5))

		offset, err := s.Offset(ctx, url)
		require.NoError(t, err)
		assert.Equal(t, 20, offset)
	})

	t.Run("reset to zero after exhaustion", func(t *testing.T) {
		require.NoError(t, s.SetOffset(ctx, url, 0))
		offset, err := s.Offset(ctx, url)
		require.NoError(t, err)
		assert.Equal(t, 0, offset)
	})
}
