package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/learncards/internal/cardsource"
)

func newCardsCommand() *cobra.Command {
	cardsCommand := &cobra.Command{
		Use:   "cards",
		Short: "Manage the card directory",
	}

	cardsCommand.AddCommand(&cobra.Command{
		Use:   "pull",
		Short: "Clone or pull the card directory from its git remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			result, err := cardsource.Sync(cmd.Context(), cfg.Cards.GitURL, cfg.Cards.GitBranch, cfg.Cards.Directory, os.Stdout)
			if err != nil {
				return fmt.Errorf("cardsource.Sync() > %w", err)
			}
			fmt.Printf("%s: %s\n", cfg.Cards.Directory, result)
			return nil
		},
	})
	return cardsCommand
}
