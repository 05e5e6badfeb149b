package likers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortcodeFromURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		expected  string
		expectErr bool
	}{
		{
			name:     "standard post URL",
			url:      "https://www.instagram.com/p/DEmCZkWoVPk/",
			expected: "DEmCZkWoVPk",
		},
		{
			name:     "reel URL",
			url:      "https://www.instagram.com/reel/CAfDTL1kW3H/",
			expected: "CAfDTL1kW3H",
		},
		{
			name:     "tv URL without trailing slash",
			url:      "https://www.instagram.com/tv/DEmCZkWoVPk",
			expected: "DEmCZkWoVPk",
		},
		{
			name:     "query string ignored",
			url:      "https://www.instagram.com/p/DEmCZkWoVPk/?igsh=abc",
			expected: "DEmCZkWoVPk",
		},
		{
			name:      "profile URL is not a post",
			url:       "https://www.instagram.com/someuser/",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := ShortcodeFromURL(tt.url)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, code)
		})
	}
}

func TestMediaPkFromShortcode(t *testing.T) {
	t.Run("known shortcodes", func(t *testing.T) {
		tests := []struct {
			shortcode string
			expected  int64
		}{
			{"B", 1},
			{"DEmCZkWoVPk", 3541528710087791588},
			{"CAfDTL1kW3H", 2314583246011198919},
		}
		for _, tt := range tests {
			pk, err := MediaPkFromShortcode(tt.shortcode)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, pk)
		}
	})

	t.Run("long shortcode truncates to eleven characters", func(t *testing.T) {
		short, err := MediaPkFromShortcode("DEmCZkWoVPk")
		require.NoError(t, err)
		long, err := MediaPkFromShortcode("DEmCZkWoVPkEXTRABYTES")
		require.NoError(t, err)
		assert.Equal(t, short, long)
	})

	t.Run("invalid characters rejected", func(t *testing.T) {
		_, err := MediaPkFromShortcode("abc!def")
		require.Error(t, err)
	})

	t.Run("empty shortcode rejected", func(t *testing.T) {
		_, err := MediaPkFromShortcode("")
		require.Error(t, err)
	})
}
