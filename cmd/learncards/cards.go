package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/learncards/internal/card"
	"github.com/at-ishikawa/learncards/internal/cli"
	"github.com/at-ishikawa/learncards/internal/view"
)

func newListCommand() *cobra.Command {
	viewFlag := ViewFlag(view.ModeDue)
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cards with their next review date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, repo, closeFn, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeFn()
			}()

			cards, err := repo.ListAll(ctx)
			if err != nil {
				return fmt.Errorf("repo.ListAll() > %w", err)
			}

			now := time.Now()
			selected := view.Select(cards, view.Filter{Mode: view.Mode(viewFlag), Category: category}, now)
			printer := cli.NewCardPrinter(os.Stdout)
			printer.PrintSummary(selected, now)
			fmt.Printf("\n%d shown, %d due, %d total\n", len(selected), view.DueCount(cards, now), len(cards))
			return nil
		},
	}

	cmd.Flags().Var(&viewFlag, "view", "Cards to list. Options: due, all")
	cmd.Flags().StringVar(&category, "category", view.AllCategories, "Only list cards in this category")
	return cmd
}

func newShowCommand() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "show <card id>",
		Short: "Show a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, repo, closeFn, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeFn()
			}()

			c, err := repo.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("repo.Get(%s) > %w", args[0], err)
			}
			if c == nil {
				return fmt.Errorf("card %q not found", args[0])
			}

			if language != "" {
				translator, closeTranslator := newTranslator(cfg.Translation)
				defer func() {
					_ = closeTranslator()
				}()
				c.Content = translator.Card(ctx, c.Content, language)
			}

			cli.NewCardPrinter(os.Stdout).PrintCard(*c, time.Now())
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "lang", "", "Translate the card into this language, e.g. zh-CN")
	return cmd
}

func newCreateCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a card from a markdown file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("os.ReadFile(%s) > %w", file, err)
			}
			content, err := card.UnmarshalMarkdown(data)
			if err != nil {
				return fmt.Errorf("card.UnmarshalMarkdown(%s) > %w", file, err)
			}

			ctx := cmd.Context()
			_, repo, closeFn, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeFn()
			}()

			created, err := repo.Create(ctx, content)
			if err != nil {
				return fmt.Errorf("repo.Create() > %w", err)
			}
			fmt.Printf("Created %s\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Markdown file with frontmatter")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <card id>",
		Short: "Delete a card and its progress",
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

			repo.Delete(ctx, args[0])
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}

func newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List card categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, repo, closeFn, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeFn()
			}()

			cards, err := repo.ListAll(ctx)
			if err != nil {
				return fmt.Errorf("repo.ListAll() > %w", err)
			}
			for _, category := range view.Categories(cards) {
				fmt.Println(category)
			}
			return nil
		},
	}
}
