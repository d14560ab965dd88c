package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/learncards/internal/card"
	"github.com/at-ishikawa/learncards/internal/pdf"
	"github.com/at-ishikawa/learncards/internal/view"
)

func newExportCommand() *cobra.Command {
	exportCommand := &cobra.Command{
		Use:   "export",
		Short: "Export cards to printable files",
	}
	exportCommand.AddCommand(newExportPDFCommand())
	exportCommand.AddCommand(newExportCardCommand())
	return exportCommand
}

func newExportPDFCommand() *cobra.Command {
	viewFlag := ViewFlag(view.ModeAll)
	var category string
	var output string

	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Export the selected cards into one PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, repo, closeFn, err := openRepository(ctx)
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
			selected := view.Select(cards, view.Filter{Mode: view.Mode(viewFlag), Category: category}, time.Now())
			contents := make([]card.Content, 0, len(selected))
			for _, c := range selected {
				contents = append(contents, c.Content)
			}

			if output == "" {
				output = filepath.Join(cfg.Outputs.PDFDirectory, "cards.pdf")
			}
			path, err := pdf.ExportCards(contents, output)
			if err != nil {
				return fmt.Errorf("pdf.ExportCards() > %w", err)
			}
			fmt.Printf("Exported %d cards to %s\n", len(contents), path)
			return nil
		},
	}

	cmd.Flags().Var(&viewFlag, "view", "Cards to export. Options: due, all")
	cmd.Flags().StringVar(&category, "category", view.AllCategories, "Only export cards in this category")
	cmd.Flags().StringVarP(&output, "output", "o", "", "PDF file to write (default is <outputs.pdf_directory>/cards.pdf)")
	return cmd
}

func newExportCardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "card <card id>",
		Short: "Export one card file into a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			markdownPath := filepath.Join(cfg.Cards.Directory, args[0]+".md")
			path, err := pdf.ConvertCardFileToPDF(markdownPath, cfg.Outputs.PDFDirectory)
			if err != nil {
				return fmt.Errorf("pdf.ConvertCardFileToPDF(%s) > %w", markdownPath, err)
			}
			fmt.Printf("Exported %s to %s\n", args[0], path)
			return nil
		},
	}
}
