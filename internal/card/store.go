package card

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:generate mockgen -source=store.go -destination=../mocks/card/mock_store.go -package=mock_card

// ContentStore persists card content, one document per card id.
type ContentStore interface {
	// Read returns nil without an error when the card does not exist.
	Read(ctx context.Context, id string) (*Content, error)
	Write(ctx context.Context, content Content) error
	ListIDs(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}

const (
	markdownExtension = ".md"
	readmeFile        = "README.md"
)

// MarkdownStore keeps each card as <id>.md in a directory.
type MarkdownStore struct {
	directory string
}

// NewMarkdownStore creates a MarkdownStore rooted at directory.
// The directory is created on first use.
func NewMarkdownStore(directory string) *MarkdownStore {
	return &MarkdownStore{directory: directory}
}

// Directory returns the directory the cards are stored in.
func (s *MarkdownStore) Directory() string {
	return s.directory
}

func (s *MarkdownStore) ensureDirectory() error {
	if err := os.MkdirAll(s.directory, 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", s.directory, err)
	}
	return nil
}

func (s *MarkdownStore) path(id string) string {
	return filepath.Join(s.directory, id+markdownExtension)
}

// Read loads and parses <id>.md.
func (s *MarkdownStore) Read(ctx context.Context, id string) (*Content, error) {
	if err := s.ensureDirectory(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", s.path(id), err)
	}

	content, err := UnmarshalMarkdown(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path(id), err)
	}
	return &content, nil
}

// Write overwrites <id>.md with the rendered content.
func (s *MarkdownStore) Write(ctx context.Context, content Content) error {
	if err := s.ensureDirectory(); err != nil {
		return err
	}

	path := s.path(content.ID)
	if err := os.WriteFile(path, MarshalMarkdown(content), 0o644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return nil
}

// ListIDs returns the ids of all card files in sorted order, skipping README.md.
func (s *MarkdownStore) ListIDs(ctx context.Context) ([]string, error) {
	if err := s.ensureDirectory(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("os.ReadDir(%s) > %w", s.directory, err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != markdownExtension {
			continue
		}
		if strings.EqualFold(name, readmeFile) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, markdownExtension))
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes <id>.md.
func (s *MarkdownStore) Delete(ctx context.Context, id string) error {
	if err := os.Remove(s.path(id)); err != nil {
		return fmt.Errorf("os.Remove(%s) > %w", s.path(id), err)
	}
	return nil
}
