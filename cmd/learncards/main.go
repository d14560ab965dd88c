package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/learncards/internal/cli"
)

var (
	configFile string
	debugMode  bool
	noColor    bool
)

// setupLogger configures the default logger based on debug mode.
// Logs go to stderr so that command output stays on stdout.
func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})),
	)
}

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "learncards",
		Short:         "Review learning cards with spaced repetition",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			if noColor {
				cli.SetColor(false)
			}
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("godotenv.Load() > %w", err)
			}
			return nil
		},
	}

	flags := rootCommand.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default is ./config.yml or $HOME/.config/learncards/config.yml)")
	flags.BoolVar(&debugMode, "debug", false, "enable debug logging")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCommand.AddCommand(
		newListCommand(),
		newShowCommand(),
		newCreateCommand(),
		newDeleteCommand(),
		newCategoriesCommand(),
		newReviewCommand(),
		newImportCommand(),
		newExportCommand(),
		newCardsCommand(),
		newMigrateCommand(),
	)
	return rootCommand
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
}
