package translation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// FileCache is a Client that keeps every translation of client in a file
// under rootDir/<language>/, keyed by a hash of the source text.
type FileCache struct {
	rootDir string
	client  Client
}

func NewFileCache(cacheDirectory string, client Client) *FileCache {
	return &FileCache{
		rootDir: cacheDirectory,
		client:  client,
	}
}

func (cache *FileCache) filePath(text string, targetLanguage string) string {
	sum := sha256.Sum256([]byte(text))
	return filepath.Join(cache.rootDir, targetLanguage, hex.EncodeToString(sum[:])+".txt")
}

// Translate returns the cached translation, or translates text and caches the result.
// Failures to write the cache are logged and do not fail the translation.
func (cache *FileCache) Translate(ctx context.Context, text string, targetLanguage string) (string, error) {
	if !IsValidLanguage(targetLanguage) {
		return "", fmt.Errorf("invalid target language %q", targetLanguage)
	}
	localFilePath := cache.filePath(text, targetLanguage)
	contents, err := os.ReadFile(localFilePath)
	if err == nil {
		return string(contents), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", localFilePath, err)
	}

	translated, err := cache.client.Translate(ctx, text, targetLanguage)
	if err != nil {
		return "", err
	}

	if err := cache.write(localFilePath, translated); err != nil {
		slog.Default().Warn("failed to cache a translation",
			slog.String("path", localFilePath),
			slog.Any("error", err))
	}
	return translated, nil
}

func (cache *FileCache) write(path string, translated string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("os.MkdirAll > %w", err)
	}
	if err := os.WriteFile(path, []byte(translated), 0644); err != nil {
		return fmt.Errorf("os.WriteFile > %w", err)
	}
	return nil
}
