package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/learncards/internal/importer"
)

func newImportCommand() *cobra.Command {
	var opts importer.ImportOptions

	cmd := &cobra.Command{
		Use:   "import <file.xlsx|file.csv>",
		Short: "Create cards from the rows of a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, repo, closeFn, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeFn()
			}()

			result, err := importer.NewImporter(repo, os.Stdout).ImportFile(ctx, args[0], opts)
			if err != nil {
				return fmt.Errorf("importer.ImportFile(%s) > %w", args[0], err)
			}

			fmt.Println("\nImport Summary:")
			if opts.DryRun {
				fmt.Println("  (dry-run mode, no changes made)")
			}
			fmt.Printf("  Cards: %d rows, %d new, %d updated, %d skipped, %d errors\n",
				result.Rows, result.New, result.Updated, result.Skipped, len(result.Errors))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.SheetName, "sheet", "", "Worksheet of an xlsx file (default is the first sheet)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Preview changes without writing cards")
	cmd.Flags().BoolVar(&opts.UpdateExisting, "update", false, "Overwrite cards whose id already exists")
	return cmd
}
