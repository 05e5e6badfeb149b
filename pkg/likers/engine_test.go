package likers

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instadm/pkg/instagram"
	"instadm/pkg/logger"
	"instadm/pkg/pacing"
)

// fakeClient implements PlatformClient with canned data.
type fakeClient struct {
	mediaPk      int64
	mediaPkErr   error
	infoByURLErr error
	info         *instagram.MediaInfo
	infoErr      error
	likers       []instagram.Account
	likersErr    error
	userInfoErr  map[int64]error
	userInfoCall int
}

func (f *fakeClient) MediaIDFromURL(string) (int64, error) {
	if f.mediaPkErr != nil {
		return 0, f.mediaPkErr
	}
	return f.mediaPk, nil
}

func (f *fakeClient) MediaInfoByURL(string) (*instagram.MediaInfo, error) {
	if f.infoByURLErr != nil {
		return nil, f.infoByURLErr
	}
	return f.info, nil
}

func (f *fakeClient) MediaInfo(int64) (*instagram.MediaInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.info, nil
}

func (f *fakeClient) MediaLikers(int64) ([]instagram.Account, error) {
	if f.likersErr != nil {
		return nil, f.likersErr
	}
	return f.likers, nil
}

func (f *fakeClient) UserInfo(pk int64) (*instagram.Account, error) {
	f.userInfoCall++
	if err, ok := f.userInfoErr[pk]; ok {
		return nil, err
	}
	return &instagram.Account{
		Pk:        pk,
		Username:  fmt.Sprintf("user%d", pk),
		Biography: "reader of dark fantasy novels",
	}, nil
}

func accounts(n int, privateEvery int) []instagram.Account {
	out := make([]instagram.Account, n)
	for i := range out {
		out[i] = instagram.Account{
			Pk:        int64(i + 1),
			Username:  fmt.Sprintf("user%d", i+1),
			IsPrivate: privateEvery > 0 && (i+1)%privateEvery == 0,
		}
	}
	return out
}

func newTestEngine() *Engine {
	return NewEngine(pacing.None{}, logger.NewTestLogger())
}

const testPostURL = "https://www.instagram.com/p/DEmCZkWoVPk/"

func TestFetchPage(t *testing.T) {
	ctx := context.Background()

	t.Run("first batch with more remaining", func(t *testing.T) {
		client := &fakeClient{
			mediaPk: 42,
			info:    &instagram.MediaInfo{Pk: 42, Caption: "new release", OwnerUsername: "author", LikeCount: 25},
			likers:  accounts(25, 0),
		}

		page, err := newTestEngine().FetchPage(ctx, client, testPostURL, 10, 0)
		require.NoError(t, err)

		assert.Equal(t, "new release", page.Caption)
		assert.Equal(t, "author", page.OwnerUsername)
		assert.Equal(t, 25, page.LikeCount)
		assert.Len(t, page.Likers, 10)
		assert.True(t, page.HasMore)
		assert.Equal(t, 10, page.NextOffset)
	})

	t.Run("final batch exhausts the post", func(t *testing.T) {
		client := &fakeClient{
			mediaPk: 42,
			info:    &instagram.MediaInfo{Pk: 42, LikeCount: 25},
			likers:  accounts(25, 0),
		}

		page, err := newTestEngine().FetchPage(ctx, client, testPostURL, 10, 20)
		require.NoError(t, err)

		assert.Len(t, page.Likers, 5)
		assert.False(t, page.HasMore)
		assert.Equal(t, OffsetExhausted, page.NextOffset)
	})

	t.Run("offset beyond the list", func(t *testing.T) {
		client := &fakeClient{
			mediaPk: 42,
			info:    &instagram.MediaInfo{Pk: 42},
			likers:  accounts(5, 0),
		}

		page, err := newTestEngine().FetchPage(ctx, client, testPostURL, 10, 50)
		require.NoError(t, err)

		assert.Empty(t, page.Likers)
		assert.False(t, page.HasMore)
		assert.Equal(t, OffsetExhausted, page.NextOffset)
	})

	t.Run("private accounts are excluded", func(t *testing.T) {
		client := &fakeClient{
			mediaPk: 42,
			info:    &instagram.MediaInfo{Pk: 42},
			likers:  accounts(10, 2), // every second account private
		}

		page, err := newTestEngine().FetchPage(ctx, client, testPostURL, 10, 0)
		require.NoError(t, err)

		assert.Len(t, page.Likers, 5)
		for _, liker := range page.Likers {
			assert.False(t, liker.Account.IsPrivate)
		}
		// Private accounts never hit the profile endpoint.
		assert.Equal(t, 5, client.userInfoCall)
	})

	t.Run("enrichment and language detection", func(t *testing.T) {
		client := &fakeClient{
			mediaPk: 42,
			info:    &instagram.MediaInfo{Pk: 42},
			likers:  accounts(1, 0),
		}

		page, err := newTestEngine().FetchPage(ctx, client, testPostURL, 10, 0)
		require.NoError(t, err)
		require.Len(t, page.Likers, 1)

		assert.Equal(t, "reader of dark fantasy novels", page.Likers[0].Account.Biography)
		assert.Equal(t, "en", page.Likers[0].Language)
	})

	t.Run("unauthorized profile is skipped", func(t *testing.T) {
		client := &fakeClient{
			mediaPk: 42,
			info:    &instagram.MediaInfo{Pk: 42},
			likers:  accounts(3, 0),
			userInfoErr: map[int64]error{
				2: &instagram.Error{Kind: instagram.KindUnauthorized},
			},
		}

		page, err := newTestEngine().FetchPage(ctx, client, testPostURL, 10, 0)
		require.NoError(t, err)
		assert.Len(t, page.Likers, 2)
	})

	t.Run("session invalidation aborts the page", func(t *testing.T) {
		client := &fakeClient{
			mediaPk: 42,
			info:    &instagram.MediaInfo{Pk: 42},
			likers:  accounts(5, 0),
			userInfoErr: map[int64]error{
				2: &instagram.Error{Kind: instagram.KindChallengeRequired},
			},
		}

		_, err := newTestEngine().FetchPage(ctx, client, testPostURL, 10, 0)
		require.Error(t, err)
		assert.True(t, instagram.IsSessionInvalid(err))
	})

	t.Run("likers retrieval failure is fatal", func(t *testing.T) {
		client := &fakeClient{
			mediaPk:   42,
			info:      &instagram.MediaInfo{Pk: 42},
			likersErr: &instagram.Error{Kind: instagram.KindServer},
		}

		_, err := newTestEngine().FetchPage(ctx, client, testPostURL, 10, 0)
		require.Error(t, err)
	})

	t.Run("metadata failure degrades to placeholders", func(t *testing.T) {
		client := &fakeClient{
			mediaPk: 42,
			infoErr: &instagram.Error{Kind: instagram.KindServer},
			likers:  accounts(1, 0),
		}

		page, err := newTestEngine().FetchPage(ctx, client, testPostURL, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, "unknown", page.OwnerUsername)
	})
}

func TestResolveMediaPk(t *testing.T) {
	engine := newTestEngine()

	t.Run("oembed first", func(t *testing.T) {
		client := &fakeClient{mediaPk: 42}
		pk, err := engine.resolveMediaPk(client, testPostURL)
		require.NoError(t, err)
		assert.Equal(t, int64(42), pk)
	})

	t.Run("falls back to media info", func(t *testing.T) {
		client := &fakeClient{
			mediaPkErr: &instagram.Error{Kind: instagram.KindNotFound},
			info:       &instagram.MediaInfo{Pk: 77},
		}
		pk, err := engine.resolveMediaPk(client, testPostURL)
		require.NoError(t, err)
		assert.Equal(t, int64(77), pk)
	})

	t.Run("falls back to shortcode decoding", func(t *testing.T) {
		client := &fakeClient{
			mediaPkErr:   &instagram.Error{Kind: instagram.KindNotFound},
			infoByURLErr: &instagram.Error{Kind: instagram.KindNotFound},
		}
		pk, err := engine.resolveMediaPk(client, testPostURL)
		require.NoError(t, err)
		assert.Equal(t, int64(3541528710087791588), pk)
	})

	t.Run("unresolvable URL", func(t *testing.T) {
		client := &fakeClient{
			mediaPkErr:   &instagram.Error{Kind: instagram.KindNotFound},
			infoByURLErr: &instagram.Error{Kind: instagram.KindNotFound},
		}
		_, err := engine.resolveMediaPk(client, "https://www.instagram.com/someuser/")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrResolution)
	})
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name     string
		bio      string
		expected string
	}{
		{"english biography", "I love reading thrillers and metal music", "en"},
		{"spanish biography", "Me encanta leer novelas de misterio y la música", "es"},
		{"empty biography", "", "en"},
		{"whitespace only", "   ", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectLanguage(tt.bio))
		})
	}
}
