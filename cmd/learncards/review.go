package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/learncards/internal/cli"
	"github.com/at-ishikawa/learncards/internal/view"
)

func newReviewCommand() *cobra.Command {
	var category string
	var shuffle bool

	cmd := &cobra.Command{
		Use:   "review [card id]",
		Short: "Mark a card reviewed, or review every due card interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, repo, closeFn, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeFn()
			}()

			if len(args) == 1 {
				reviewed, err := repo.RecordReview(ctx, args[0])
				if err != nil {
					return fmt.Errorf("repo.RecordReview(%s) > %w", args[0], err)
				}
				if reviewed == nil {
					return fmt.Errorf("card %q not found", args[0])
				}
				printer := cli.NewCardPrinter(os.Stdout)
				printer.PrintHeader(reviewed.Content)
				printer.PrintProgress(reviewed.Progress, time.Now())
				return nil
			}

			cards, err := repo.ListAll(ctx)
			if err != nil {
				return fmt.Errorf("repo.ListAll() > %w", err)
			}
			due := view.Select(cards, view.Filter{Mode: view.ModeDue, Category: category}, time.Now())
			if len(due) == 0 {
				fmt.Println("Nothing to review right now.")
				return nil
			}

			translator, closeTranslator := newTranslator(cfg.Translation)
			defer func() {
				_ = closeTranslator()
			}()

			session := cli.NewReviewSessionCLI(repo, due, os.Stdin, os.Stdout,
				cli.WithTranslator(translator, cfg.Translation.TargetLanguage))
			if shuffle {
				session.ShuffleCards()
			}
			fmt.Printf("%d cards to review\n\n", session.GetCardCount())
			return session.Run(ctx, session)
		},
	}

	cmd.Flags().StringVar(&category, "category", view.AllCategories, "Only review cards in this category")
	cmd.Flags().BoolVar(&shuffle, "shuffle", false, "Review the due cards in random order")
	return cmd
}
