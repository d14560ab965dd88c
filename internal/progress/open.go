package progress

import (
	"context"
	"fmt"

	"github.com/at-ishikawa/learncards/internal/config"
	"github.com/at-ishikawa/learncards/internal/database"
)

// Store is a Repository that can also replace many records at once.
type Store interface {
	Repository
	UpsertAll(ctx context.Context, records []Record) error
}

// Open creates the configured progress backend.
// The returned close function releases the backend's resources.
func Open(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	switch cfg.Progress.Backend {
	case config.ProgressBackendYAML:
		return NewYAMLRepository(cfg.Progress.YAMLFile), func() error { return nil }, nil
	case config.ProgressBackendDatabase:
		repo, closeFn, err := OpenDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return repo, closeFn, nil
	}
	return nil, nil, fmt.Errorf("unsupported progress backend %q", cfg.Progress.Backend)
}

// OpenDatabase connects to the database, applies migrations when enabled,
// and returns a DBRepository on it.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*DBRepository, func() error, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database.Open() > %w", err)
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db, cfg.Driver); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("database.Migrate() > %w", err)
		}
	}
	return NewDBRepository(db), db.Close, nil
}
