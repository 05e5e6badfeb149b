package message

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogLookup(t *testing.T) {
	catalog := DefaultCatalog()

	t.Run("exact language match", func(t *testing.T) {
		book := catalog.Lookup("es")
		assert.Equal(t, "Sinfonía de la Oscuridad", book.Title)
		assert.Contains(t, book.Link, "amazon.es")
	})

	t.Run("unknown language falls back to english", func(t *testing.T) {
		book := catalog.Lookup("fr")
		assert.Equal(t, "Darkness Symphony", book.Title)
		assert.Contains(t, book.Link, "amazon.com")
	})

	t.Run("empty language falls back to english", func(t *testing.T) {
		assert.Equal(t, "Darkness Symphony", catalog.Lookup("").Title)
	})
}

func TestTruncate(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", Truncate("hello"))
	})

	t.Run("long text capped", func(t *testing.T) {
		long := strings.Repeat("a", MaxLength+50)
		assert.Len(t, Truncate(long), MaxLength)
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		long := strings.Repeat("ñ", MaxLength+1)
		truncated := Truncate(long)
		assert.Equal(t, MaxLength, len([]rune(truncated)))
	})
}

func TestPrompts(t *testing.T) {
	book := DefaultCatalog().Lookup("en")

	system := systemPrompt("en")
	assert.Contains(t, system, `"en"`)
	assert.Contains(t, system, "250")

	user := userPrompt("booklover", "en", book)
	assert.Contains(t, user, "booklover")
	assert.Contains(t, user, book.Title)
	assert.Contains(t, user, book.Link)
}

func TestNewOpenAIGeneratorDefaults(t *testing.T) {
	g := NewOpenAIGenerator("key", "", nil, nil)
	assert.NotNil(t, g.client)
	assert.NotEmpty(t, g.model)
	assert.NotNil(t, g.catalog)
}
