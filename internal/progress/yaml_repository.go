package progress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/learncards/internal/card"
)

// YAMLRepository keeps all progress records in a single YAML file.
type YAMLRepository struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewYAMLRepository creates a YAMLRepository backed by path.
// The file and its directory are created on the first write.
func NewYAMLRepository(path string) *YAMLRepository {
	return &YAMLRepository{
		path: path,
		now:  time.Now,
	}
}

func (r *YAMLRepository) load() (map[string]Record, error) {
	file, err := os.Open(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s)> %w", r.path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	var records []Record
	if err := yaml.NewDecoder(file).Decode(&records); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("yaml.NewDecoder().Decode()> %w", err)
	}

	result := make(map[string]Record, len(records))
	for _, record := range records {
		result[record.CardID] = record
	}
	return result, nil
}

// save writes records sorted by card id to a temporary file and renames it over the original.
func (r *YAMLRepository) save(records map[string]Record) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
	}

	list := make([]Record, 0, len(records))
	for _, record := range records {
		list = append(list, record)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CardID < list[j].CardID
	})

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("os.CreateTemp(%s) > %w", dir, err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	encoder := yaml.NewEncoder(tmp)
	encoder.SetIndent(2)
	if err := encoder.Encode(list); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("yaml.NewEncoder().Encode()> %w", err)
	}
	if err := encoder.Close(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encoder.Close() > %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("os.Rename(%s) > %w", r.path, err)
	}
	return nil
}

// Find returns the progress of cardID.
func (r *YAMLRepository) Find(ctx context.Context, cardID string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, fmt.Errorf("load card progress: %w", err)
	}
	record, ok := records[cardID]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// FindAll returns all progress records keyed by card id.
func (r *YAMLRepository) FindAll(ctx context.Context) (map[string]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, fmt.Errorf("load card progress: %w", err)
	}
	return records, nil
}

// Upsert replaces the progress of cardID.
func (r *YAMLRepository) Upsert(ctx context.Context, cardID string, p card.Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return fmt.Errorf("load card progress: %w", err)
	}
	records[cardID] = Record{
		CardID:    cardID,
		Progress:  p,
		UpdatedAt: r.now(),
	}
	if err := r.save(records); err != nil {
		return fmt.Errorf("save card progress: %w", err)
	}
	return nil
}

// UpsertAll replaces the given records in one write, keeping their UpdatedAt.
func (r *YAMLRepository) UpsertAll(ctx context.Context, records []Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.load()
	if err != nil {
		return fmt.Errorf("load card progress: %w", err)
	}
	for _, record := range records {
		existing[record.CardID] = record
	}
	if err := r.save(existing); err != nil {
		return fmt.Errorf("save card progress: %w", err)
	}
	return nil
}

// Delete removes the progress of cardID.
func (r *YAMLRepository) Delete(ctx context.Context, cardID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return fmt.Errorf("load card progress: %w", err)
	}
	if _, ok := records[cardID]; !ok {
		return nil
	}
	delete(records, cardID)
	if err := r.save(records); err != nil {
		return fmt.Errorf("save card progress: %w", err)
	}
	return nil
}
