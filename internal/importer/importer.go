// Package importer creates cards in bulk from spreadsheet rows.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/at-ishikawa/learncards/internal/card"
)

// Column headers recognised in the first row, compared case-insensitively.
// Spaces and hyphens in headers are read as underscores.
const (
	ColumnID             = "id"
	ColumnTitle          = "title"
	ColumnEmoji          = "emoji"
	ColumnCategory       = "category"
	ColumnType           = "type"
	ColumnOneLineEssence = "one_line_essence"
	ColumnUseWhen        = "use_when"
	ColumnTypicalCases   = "typical_cases"
	ColumnExample        = "example"
	ColumnRisks          = "risks"
	ColumnWhenNotToUse   = "when_not_to_use"
	ColumnRelated        = "related"
)

// ListSeparator splits multi-value cells. Line breaks separate items too.
const ListSeparator = ";"

var errMissingTitleColumn = errors.New("the header row has no title column")

// CardWriter is the part of the card repository the importer needs.
type CardWriter interface {
	Get(ctx context.Context, id string) (*card.Card, error)
	Create(ctx context.Context, content card.Content) (card.Card, error)
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	// SheetName selects the worksheet of an xlsx file. Empty means the first sheet.
	SheetName      string
	DryRun         bool
	UpdateExisting bool
}

// ImportResult tracks counts for an import.
type ImportResult struct {
	Rows    int
	New     int
	Updated int
	Skipped int
	Errors  []string
}

// Importer turns sheet rows into cards.
type Importer struct {
	cards  CardWriter
	writer io.Writer
}

// NewImporter creates a new Importer that reports each row to writer.
func NewImporter(cards CardWriter, writer io.Writer) *Importer {
	return &Importer{
		cards:  cards,
		writer: writer,
	}
}

// ImportFile reads a .xlsx or .csv file and imports its rows.
func (imp *Importer) ImportFile(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	var rows [][]string
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = readExcel(path, opts.SheetName)
	default:
		return nil, fmt.Errorf("unsupported file extension %q, must be .xlsx or .csv", ext)
	}
	if err != nil {
		return nil, err
	}
	return imp.ImportRows(ctx, rows, opts)
}

func readExcel(path string, sheetName string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("excelize.OpenFile(%s) > %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("f.GetRows(%s) > %w", sheetName, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reader.ReadAll() > %w", err)
	}
	return rows, nil
}

func normalizeHeader(header string) string {
	header = strings.ToLower(strings.TrimSpace(header))
	header = strings.TrimPrefix(header, "\ufeff")
	return strings.NewReplacer(" ", "_", "-", "_").Replace(header)
}

type row struct {
	number  int
	columns map[string]int
	cells   []string
}

func (r row) get(column string) string {
	index, ok := r.columns[column]
	if !ok || index >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[index])
}

func (r row) optional(column string) *string {
	if value := r.get(column); value != "" {
		return &value
	}
	return nil
}

func (r row) list(column string) []string {
	items := make([]string, 0)
	value := strings.ReplaceAll(r.get(column), "\n", ListSeparator)
	for _, item := range strings.Split(value, ListSeparator) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func (r row) blank() bool {
	for _, cell := range r.cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func (r row) content() card.Content {
	cardType := card.KnowledgeType(r.get(ColumnType))
	if cardType == "" {
		cardType = card.DefaultKnowledgeType
	}
	return card.Content{
		ID:             r.get(ColumnID),
		Title:          r.get(ColumnTitle),
		Emoji:          r.optional(ColumnEmoji),
		Category:       r.get(ColumnCategory),
		Type:           cardType,
		OneLineEssence: r.get(ColumnOneLineEssence),
		UseWhen:        r.get(ColumnUseWhen),
		TypicalCases:   r.list(ColumnTypicalCases),
		Example:        r.optional(ColumnExample),
		Risks:          r.optional(ColumnRisks),
		WhenNotToUse:   r.optional(ColumnWhenNotToUse),
		Related:        r.list(ColumnRelated),
	}
}

// ImportRows imports rows whose first row is the header.
// A row that fails validation is recorded in the result and does not stop the import.
func (imp *Importer) ImportRows(ctx context.Context, rows [][]string, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{Errors: make([]string, 0)}
	if len(rows) == 0 {
		return result, nil
	}

	columns := make(map[string]int)
	for i, header := range rows[0] {
		columns[normalizeHeader(header)] = i
	}
	if _, ok := columns[ColumnTitle]; !ok {
		return nil, errMissingTitleColumn
	}

	for i, cells := range rows[1:] {
		r := row{number: i + 2, columns: columns, cells: cells}
		if r.blank() {
			continue
		}
		result.Rows++
		if err := imp.importRow(ctx, r, opts, result); err != nil {
			return nil, fmt.Errorf("importRow(%d) > %w", r.number, err)
		}
	}
	return result, nil
}

func (imp *Importer) importRow(ctx context.Context, r row, opts ImportOptions, result *ImportResult) error {
	content := r.content()

	status := "NEW"
	if content.ID != "" {
		existing, err := imp.cards.Get(ctx, content.ID)
		if err != nil {
			return fmt.Errorf("Get(%s) > %w", content.ID, err)
		}
		if existing != nil {
			if !opts.UpdateExisting {
				fmt.Fprintf(imp.writer, "  [SKIP]  %s %q\n", content.ID, content.Title)
				result.Skipped++
				return nil
			}
			status = "UPDATE"
		}
	}

	id := content.ID
	if !opts.DryRun {
		created, err := imp.cards.Create(ctx, content)
		var validationErr *card.ValidationError
		if errors.As(err, &validationErr) {
			fmt.Fprintf(imp.writer, "  [ERROR]  row %d: %v\n", r.number, err)
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", r.number, err))
			return nil
		}
		if err != nil {
			return fmt.Errorf("Create() > %w", err)
		}
		id = created.ID
	}

	fmt.Fprintf(imp.writer, "  [%s]  %s %q\n", status, id, content.Title)
	if status == "UPDATE" {
		result.Updated++
	} else {
		result.New++
	}
	return nil
}
