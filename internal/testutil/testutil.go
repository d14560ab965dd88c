// Package testutil provides shared test helpers for creating config files and card fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/learncards/internal/card"
)

// SetupTestConfig creates a minimal config file using the YAML progress backend
// and the card directory under tmpDir. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	for _, d := range []string{"cards", "progress", "outputs"} {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}

	configContent := fmt.Sprintf(`cards:
  directory: %s
progress:
  backend: yaml
  yaml_file: %s
outputs:
  pdf_directory: %s
`,
		filepath.Join(tmpDir, "cards"),
		filepath.Join(tmpDir, "progress", "card_progress.yml"),
		filepath.Join(tmpDir, "outputs"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// CardOption configures optional fields of a card fixture.
type CardOption func(*card.Content)

// WithCategory sets the category of the card fixture.
func WithCategory(category string) CardOption {
	return func(c *card.Content) {
		c.Category = category
	}
}

// NewCard returns valid content for id with every required field set.
func NewCard(id string, opts ...CardOption) card.Content {
	content := card.Content{
		ID:             id,
		Title:          "Title " + id,
		Category:       "Patterns",
		Type:           card.KnowledgeTypeHighFrequency,
		OneLineEssence: "Essence of " + id,
		UseWhen:        "When " + id + " fits",
		TypicalCases:   []string{"Case of " + id},
		Related:        []string{},
	}
	for _, opt := range opts {
		opt(&content)
	}
	return content
}

// WriteCardFile writes content as <dir>/<id>.md and returns its path.
func WriteCardFile(t *testing.T, dir string, content card.Content) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))

	path := filepath.Join(dir, content.ID+".md")
	require.NoError(t, os.WriteFile(path, card.MarshalMarkdown(content), 0644))
	return path
}
