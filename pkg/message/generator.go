// Package message produces short, localized direct-message texts promoting a
// book, delegating the wording to a chat-completion model.
package message

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"instadm/pkg/logger"
)

// MaxLength is the hard cap on a generated message. Longer completions are
// truncated rather than rejected.
const MaxLength = 250

// Book is the promoted title for one language.
type Book struct {
	Title string `yaml:"title"`
	Link  string `yaml:"link"`
}

// Generator produces one outreach text for a recipient in a given language.
type Generator interface {
	Generate(ctx context.Context, username, language string) (string, error)
}

// Catalog maps ISO 639-1 language codes to the book promoted in that
// language. Lookups fall back to "en".
type Catalog map[string]Book

// DefaultCatalog returns the built-in title catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		"en": {
			Title: "Darkness Symphony",
			Link:  "https://www.amazon.com/dp/B0DYSNXD4B",
		},
		"es": {
			Title: "Sinfonía de la Oscuridad",
			Link:  "https://www.amazon.es/dp/B0DV5NZ9RX",
		},
	}
}

// Lookup returns the book for language, falling back to English.
func (c Catalog) Lookup(language string) Book {
	if book, ok := c[language]; ok {
		return book
	}
	return c["en"]
}

// OpenAIGenerator builds messages with the OpenAI chat-completion API.
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	catalog Catalog
	logger  logger.Logger
}

// NewOpenAIGenerator creates a generator authenticated with apiKey. An empty
// model selects gpt-4o-mini.
func NewOpenAIGenerator(apiKey, model string, catalog Catalog, log logger.Logger) *OpenAIGenerator {
	if model == "" {
		model = openai.GPT4oMini
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &OpenAIGenerator{
		client:  openai.NewClient(apiKey),
		model:   model,
		catalog: catalog,
		logger:  log,
	}
}

// Generate produces one personalized message for username in language. The
// returned text never exceeds MaxLength runes.
func (g *OpenAIGenerator) Generate(ctx context.Context, username, language string) (string, error) {
	book := g.catalog.Lookup(language)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt(language),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt(username, language, book),
			},
		},
		Temperature: 0.9,
		MaxTokens:   120,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate message: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("message generation returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	text = strings.Trim(text, `"`)
	text = Truncate(text)

	g.logger.DebugWithFields("message generated", map[string]interface{}{
		"username": username,
		"language": language,
		"length":   len(text),
	})
	return text, nil
}

// Truncate caps text at MaxLength runes.
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxLength {
		return text
	}
	return string(runes[:MaxLength])
}

func systemPrompt(language string) string {
	return fmt.Sprintf(
		"You are a friendly author who wants to connect with new readers. "+
			"You write short, warm, natural messages in the language with ISO 639-1 code %q, "+
			"never longer than %d characters, and never sounding like an advertisement.",
		language, MaxLength)
}

func userPrompt(username, language string, book Book) string {
	return fmt.Sprintf(
		"Write a short message addressed to %s inviting them to read the first free chapters "+
			"of a powermetal thriller titled %q. Include the link %s once. "+
			"Reply with the message text only, in the language with code %q.",
		username, book.Title, book.Link, language)
}
