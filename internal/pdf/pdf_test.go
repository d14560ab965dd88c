package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/learncards/internal/card"
)

func testContents() []card.Content {
	return []card.Content{
		{
			ID:             "cache-aside",
			Title:          "Cache-Aside",
			Category:       "Caching",
			Type:           card.KnowledgeTypeHighFrequency,
			UseWhen:        "Reads dominate writes",
			TypicalCases:   []string{"Product pages", "User profiles"},
			OneLineEssence: "Check the cache, then the database",
			Example:        card.StringPtr("value, ok := cache.Get(key)"),
			Related:        []string{"Write-Through"},
		},
		{
			ID:             "bulkhead",
			Title:          "Bulkhead",
			Category:       "Resilience",
			Type:           card.KnowledgeTypeAwarenessOnly,
			UseWhen:        "One dependency must not starve the others",
			TypicalCases:   []string{"Separate pools"},
			OneLineEssence: "Compartments contain failure",
		},
	}
}

func TestRenderDocument(t *testing.T) {
	got := string(RenderDocument(testContents()))

	assert.Contains(t, got, "# Cache-Aside\n\n*Category: Caching | Type: high-frequency*\n\n## One-Line Essence")
	assert.Contains(t, got, "\n---\n\n# Bulkhead\n\n*Category: Resilience | Type: awareness-only*\n\n")
	assert.Contains(t, got, "```\nvalue, ok := cache.Get(key)\n```")
	assert.NotContains(t, got, "id: cache-aside")
}

func TestExportCards(t *testing.T) {
	tests := []struct {
		name       string
		contents   []card.Content
		fileName   string
		wantErr    bool
		wantErrMsg string
	}{
		{
			name:     "successful export",
			contents: testContents(),
			fileName: "nested/cards.pdf",
		},
		{
			name:       "no cards",
			contents:   nil,
			fileName:   "cards.pdf",
			wantErr:    true,
			wantErrMsg: "no cards to export",
		},
		{
			name:       "invalid extension",
			contents:   testContents(),
			fileName:   "cards.txt",
			wantErr:    true,
			wantErrMsg: "output file must have .pdf extension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdfPath := filepath.Join(t.TempDir(), tt.fileName)

			got, err := ExportCards(tt.contents, pdfPath)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				return
			}

			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(got))
			data, err := os.ReadFile(got)
			require.NoError(t, err)
			assert.Equal(t, "%PDF", string(data[:4]))
		})
	}
}

func TestConvertCardFileToPDF(t *testing.T) {
	tests := []struct {
		name       string
		setupFile  func(t *testing.T) string
		wantErr    bool
		wantErrMsg string
		wantName   string
	}{
		{
			name: "invalid extension",
			setupFile: func(t *testing.T) string {
				return "cache-aside.txt"
			},
			wantErr:    true,
			wantErrMsg: "input file must have .md extension",
		},
		{
			name: "file not found",
			setupFile: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.md")
			},
			wantErr:    true,
			wantErrMsg: "os.ReadFile",
		},
		{
			name: "not a card file",
			setupFile: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "notes.md")
				require.NoError(t, os.WriteFile(path, []byte("# Just notes\n"), 0644))
				return path
			},
			wantErr:    true,
			wantErrMsg: "card.UnmarshalMarkdown",
		},
		{
			name: "successful conversion",
			setupFile: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "cache-aside.md")
				require.NoError(t, os.WriteFile(path, card.MarshalMarkdown(testContents()[0]), 0644))
				return path
			},
			wantName: "cache-aside.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputDirectory := t.TempDir()

			got, err := ConvertCardFileToPDF(tt.setupFile(t), outputDirectory)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, filepath.Join(outputDirectory, tt.wantName), got)
			_, err = os.Stat(got)
			assert.NoError(t, err)
		})
	}
}
