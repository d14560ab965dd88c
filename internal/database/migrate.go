package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/at-ishikawa/learncards/internal/config"
	"github.com/at-ishikawa/learncards/schemas"
)

func migrationDialect(driver string) (goose.Dialect, error) {
	switch driver {
	case config.DriverSQLite:
		return goose.DialectSQLite3, nil
	case config.DriverMySQL:
		return goose.DialectMySQL, nil
	case config.DriverPostgres:
		return goose.DialectPostgres, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// Migrate applies all pending migrations for the driver.
func Migrate(ctx context.Context, db *sqlx.DB, driver string) error {
	dialect, err := migrationDialect(driver)
	if err != nil {
		return err
	}

	migrations, err := fs.Sub(schemas.Migrations, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("fs.Sub(%s) > %w", driver, err)
	}

	provider, err := goose.NewProvider(dialect, db.DB, migrations)
	if err != nil {
		return fmt.Errorf("goose.NewProvider > %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, result := range results {
		slog.Info("applied migration",
			"driver", driver,
			"version", result.Source.Version,
			"duration", result.Duration)
	}
	return nil
}
