package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/learncards/internal/card"
	"github.com/at-ishikawa/learncards/internal/config"
	"github.com/at-ishikawa/learncards/internal/datasync"
	"github.com/at-ishikawa/learncards/internal/progress"
)

func newMigrateCommand() *cobra.Command {
	migrateCommand := &cobra.Command{
		Use:   "migrate",
		Short: "Migration commands",
	}

	progressCommand := &cobra.Command{
		Use:   "progress",
		Short: "Copy review progress between the YAML file and the database",
	}
	progressCommand.AddCommand(newMigrateProgressCommand(
		"import-db",
		"Import the YAML progress file into the database",
		func(yamlRepo *progress.YAMLRepository, dbRepo *progress.DBRepository) (progress.Repository, progress.Store) {
			return yamlRepo, dbRepo
		},
	))
	progressCommand.AddCommand(newMigrateProgressCommand(
		"export-yaml",
		"Export the database progress into the YAML progress file",
		func(yamlRepo *progress.YAMLRepository, dbRepo *progress.DBRepository) (progress.Repository, progress.Store) {
			return dbRepo, yamlRepo
		},
	))

	migrateCommand.AddCommand(progressCommand)
	return migrateCommand
}

func newMigrateProgressCommand(
	use string,
	short string,
	direction func(yamlRepo *progress.YAMLRepository, dbRepo *progress.DBRepository) (progress.Repository, progress.Store),
) *cobra.Command {
	var dryRun bool
	var updateExisting bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			dbRepo, closeDB, err := progress.OpenDatabase(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("progress.OpenDatabase() > %w", err)
			}
			defer func() {
				_ = closeDB()
			}()

			knownIDs, err := cardIDs(ctx, cfg)
			if err != nil {
				return err
			}

			source, sink := direction(progress.NewYAMLRepository(cfg.Progress.YAMLFile), dbRepo)
			opts := datasync.ImportOptions{
				DryRun:         dryRun,
				UpdateExisting: updateExisting,
				KnownCardIDs:   knownIDs,
			}
			result, err := datasync.NewImporter(source, sink, os.Stdout).Import(ctx, opts)
			if err != nil {
				return fmt.Errorf("importer.Import() > %w", err)
			}

			fmt.Println("\nImport Summary:")
			if opts.DryRun {
				fmt.Println("  (dry-run mode, no changes made)")
			}
			fmt.Printf("  Progress: %d new, %d skipped, %d updated, %d warnings\n",
				result.New, result.Skipped, result.Updated, result.Warnings)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without writing progress")
	cmd.Flags().BoolVar(&updateExisting, "update-existing", false, "Update existing records with new data")
	return cmd
}

func cardIDs(ctx context.Context, cfg *config.Config) ([]string, error) {
	ids, err := card.NewMarkdownStore(cfg.Cards.Directory).ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListIDs(%s) > %w", cfg.Cards.Directory, err)
	}
	return ids, nil
}
