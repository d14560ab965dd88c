// Package translation translates card text, falling back to the original on failure.
package translation

import (
	"context"
	"log/slog"
	"regexp"

	"golang.org/x/sync/errgroup"

	"github.com/at-ishikawa/learncards/internal/card"
)

//go:generate mockgen -source=translation.go -destination=../mocks/translation/mock_client.go -package=mock_translation

// DefaultTargetLanguage is used when no target language is given.
const DefaultTargetLanguage = "zh-CN"

var languagePattern = regexp.MustCompile(`^[A-Za-z]{2,3}(-[A-Za-z0-9]+)?$`)

// IsValidLanguage reports whether language looks like a language code such as "ja" or "zh-CN".
func IsValidLanguage(language string) bool {
	return languagePattern.MatchString(language)
}

// Client translates text into a target language.
type Client interface {
	Translate(ctx context.Context, text string, targetLanguage string) (string, error)
}

// Translator translates cards field by field.
// A field that fails to translate keeps its original text.
type Translator struct {
	client          Client
	defaultLanguage string
}

// NewTranslator creates a Translator. An empty defaultLanguage means DefaultTargetLanguage.
func NewTranslator(client Client, defaultLanguage string) *Translator {
	if defaultLanguage == "" {
		defaultLanguage = DefaultTargetLanguage
	}
	return &Translator{
		client:          client,
		defaultLanguage: defaultLanguage,
	}
}

// DefaultLanguage returns the language used when none is requested.
func (t *Translator) DefaultLanguage() string {
	return t.defaultLanguage
}

// Text translates text, or returns it unchanged when translation fails.
func (t *Translator) Text(ctx context.Context, text string, targetLanguage string) string {
	if text == "" {
		return text
	}
	if targetLanguage == "" {
		targetLanguage = t.defaultLanguage
	}

	translated, err := t.client.Translate(ctx, text, targetLanguage)
	if err != nil {
		slog.Default().Warn("translation failed, keeping the original text",
			slog.String("targetLanguage", targetLanguage),
			slog.Any("error", err))
		return text
	}
	return translated
}

// Card translates the title, one-line essence, use-when, each typical case,
// risks and when-not-to-use of content concurrently.
// Other fields are copied unchanged.
func (t *Translator) Card(ctx context.Context, content card.Content, targetLanguage string) card.Content {
	result := content
	result.TypicalCases = make([]string, len(content.TypicalCases))

	// Every task returns nil; Text already falls back per field.
	var g errgroup.Group
	translateInto := func(dst *string, src string) {
		g.Go(func() error {
			*dst = t.Text(ctx, src, targetLanguage)
			return nil
		})
	}

	translateInto(&result.Title, content.Title)
	translateInto(&result.OneLineEssence, content.OneLineEssence)
	translateInto(&result.UseWhen, content.UseWhen)
	for i, typicalCase := range content.TypicalCases {
		translateInto(&result.TypicalCases[i], typicalCase)
	}
	if content.Risks != nil {
		result.Risks = new(string)
		translateInto(result.Risks, *content.Risks)
	}
	if content.WhenNotToUse != nil {
		result.WhenNotToUse = new(string)
		translateInto(result.WhenNotToUse, *content.WhenNotToUse)
	}

	_ = g.Wait()
	return result
}
