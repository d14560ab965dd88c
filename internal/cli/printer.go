package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/at-ishikawa/learncards/internal/card"
	"github.com/at-ishikawa/learncards/internal/scheduler"
)

const dateLayout = "2006-01-02"

// CardPrinter writes cards to a terminal.
type CardPrinter struct {
	*InteractiveCLI
}

// NewCardPrinter creates a CardPrinter writing to w.
func NewCardPrinter(w io.Writer) *CardPrinter {
	return &CardPrinter{InteractiveCLI: newInteractiveCLI(strings.NewReader(""), w)}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func indent(text string, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// PrintHeader prints the title line of a card.
func (p *CardPrinter) PrintHeader(content card.Content) {
	title := content.Title
	if content.Emoji != nil {
		title = *content.Emoji + " " + title
	}
	_, _ = p.cyan.Fprintln(p.stdoutWriter, title)
	_, _ = p.faint.Fprintf(p.stdoutWriter, "%s · %s\n", content.Category, content.Type)
}

// PrintContent prints every present section of a card.
func (p *CardPrinter) PrintContent(content card.Content) {
	w := p.stdoutWriter
	_, _ = fmt.Fprintln(w)
	_, _ = p.italic.Fprintln(w, indent(content.OneLineEssence, "  > "))

	p.printSection("Use When", content.UseWhen)
	if len(content.TypicalCases) > 0 {
		_, _ = p.bold.Fprintln(w, "\nTypical Cases")
		for _, typicalCase := range content.TypicalCases {
			_, _ = fmt.Fprintf(w, "  - %s\n", typicalCase)
		}
	}
	if content.Example != nil {
		_, _ = p.bold.Fprintln(w, "\nExample")
		_, _ = fmt.Fprintln(w, indent(*content.Example, "    "))
	}
	if content.Risks != nil {
		_, _ = p.yellow.Fprintln(w, "\nRisks")
		_, _ = fmt.Fprintln(w, indent(*content.Risks, "  "))
	}
	if content.WhenNotToUse != nil {
		_, _ = p.red.Fprintln(w, "\nWhen NOT to Use")
		_, _ = fmt.Fprintln(w, indent(*content.WhenNotToUse, "  "))
	}
	if len(content.Related) > 0 {
		_, _ = p.bold.Fprintln(w, "\nRelated Concepts")
		_, _ = fmt.Fprintf(w, "  %s\n", strings.Join(content.Related, ", "))
	}
}

func (p *CardPrinter) printSection(name string, text string) {
	_, _ = p.bold.Fprintf(p.stdoutWriter, "\n%s\n", name)
	_, _ = fmt.Fprintln(p.stdoutWriter, indent(text, "  "))
}

// PrintProgress prints the review count and the next review date.
func (p *CardPrinter) PrintProgress(progress card.Progress, now time.Time) {
	next := scheduler.NextDueDate(progress)
	status := p.green.Sprint("scheduled")
	if scheduler.IsDue(progress, now) {
		status = p.red.Sprint("due")
	}
	_, _ = fmt.Fprintf(p.stdoutWriter, "\nReviewed %d times, last %s. Next review %s (%s)\n",
		progress.ReviewCount,
		formatDate(progress.LastReviewed),
		formatDate(next),
		status)
}

// PrintCard prints the header, content and progress of c.
func (p *CardPrinter) PrintCard(c card.Card, now time.Time) {
	p.PrintHeader(c.Content)
	p.PrintContent(c.Content)
	p.PrintProgress(c.Progress, now)
}

// PrintSummary prints one line per card for listings.
func (p *CardPrinter) PrintSummary(cards []card.Card, now time.Time) {
	for _, c := range cards {
		marker := " "
		if scheduler.IsDue(c.Progress, now) {
			marker = p.red.Sprint("*")
		}
		_, _ = fmt.Fprintf(p.stdoutWriter, "%s %-36s %-24s %-16s next %s\n",
			marker,
			c.ID,
			c.Title,
			c.Category,
			formatDate(scheduler.NextDueDate(c.Progress)))
	}
}

// SetColor forces colors on or off for every printer.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}
