// Package pdf exports cards as printable PDF documents.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mandolyte/mdtopdf"

	"github.com/at-ishikawa/learncards/internal/card"
)

var errNoCards = errors.New("no cards to export")

// RenderDocument joins the markdown bodies of contents into one document,
// separated by horizontal rules.
func RenderDocument(contents []card.Content) []byte {
	var buf bytes.Buffer
	for i, content := range contents {
		if i > 0 {
			buf.WriteString("\n---\n\n")
		}
		body := card.MarshalMarkdownBody(content)
		title, rest, _ := bytes.Cut(body, []byte("\n\n"))
		buf.Write(title)
		fmt.Fprintf(&buf, "\n\n*Category: %s | Type: %s*\n\n", content.Category, content.Type)
		buf.Write(rest)
	}
	return buf.Bytes()
}

// ExportCards writes contents into a single PDF at pdfPath and returns its absolute path.
func ExportCards(contents []card.Content, pdfPath string) (string, error) {
	if len(contents) == 0 {
		return "", errNoCards
	}
	if !strings.HasSuffix(pdfPath, ".pdf") {
		return "", fmt.Errorf("output file must have .pdf extension: %s", pdfPath)
	}
	if err := os.MkdirAll(filepath.Dir(pdfPath), 0755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(pdfPath), err)
	}

	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process(RenderDocument(contents)); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}
	return absPath, nil
}

// ConvertCardFileToPDF converts a card markdown file into a PDF with the same
// base name in outputDirectory.
func ConvertCardFileToPDF(markdownPath string, outputDirectory string) (string, error) {
	if !strings.HasSuffix(markdownPath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", markdownPath)
	}

	data, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", markdownPath, err)
	}
	content, err := card.UnmarshalMarkdown(data)
	if err != nil {
		return "", fmt.Errorf("card.UnmarshalMarkdown(%s) > %w", markdownPath, err)
	}

	name := strings.TrimSuffix(filepath.Base(markdownPath), ".md") + ".pdf"
	return ExportCards([]card.Content{content}, filepath.Join(outputDirectory, name))
}
