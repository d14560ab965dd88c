package cli

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/at-ishikawa/learncards/internal/card"
	"github.com/at-ishikawa/learncards/internal/scheduler"
)

// Reviewer records that a card was reviewed.
type Reviewer interface {
	RecordReview(ctx context.Context, id string) (*card.Card, error)
}

// CardTranslator translates the text of a card.
type CardTranslator interface {
	Card(ctx context.Context, content card.Content, targetLanguage string) card.Content
}

// ReviewSessionCLI walks through cards one at a time.
// Each card shows its header first and its content after Enter is pressed.
type ReviewSessionCLI struct {
	*CardPrinter
	reviewer   Reviewer
	translator CardTranslator
	language   string
	cards      []card.Card

	reviewed int
	skipped  int
}

// ReviewSessionOption configures a ReviewSessionCLI.
type ReviewSessionOption func(*ReviewSessionCLI)

// WithTranslator enables the translate action.
func WithTranslator(translator CardTranslator, language string) ReviewSessionOption {
	return func(r *ReviewSessionCLI) {
		r.translator = translator
		r.language = language
	}
}

// NewReviewSessionCLI creates a session over cards, in the given order.
func NewReviewSessionCLI(
	reviewer Reviewer,
	cards []card.Card,
	stdin io.Reader,
	stdout io.Writer,
	opts ...ReviewSessionOption,
) *ReviewSessionCLI {
	session := &ReviewSessionCLI{
		CardPrinter: &CardPrinter{InteractiveCLI: newInteractiveCLI(stdin, stdout)},
		reviewer:    reviewer,
		cards:       cards,
	}
	for _, opt := range opts {
		opt(session)
	}
	return session
}

// ShuffleCards shuffles the remaining cards
func (r *ReviewSessionCLI) ShuffleCards() {
	rand.Shuffle(len(r.cards), func(i, j int) {
		r.cards[i], r.cards[j] = r.cards[j], r.cards[i]
	})
}

// GetCardCount returns the number of remaining cards
func (r *ReviewSessionCLI) GetCardCount() int {
	return len(r.cards)
}

// Reviewed returns how many cards were marked reviewed in this session.
func (r *ReviewSessionCLI) Reviewed() int {
	return r.reviewed
}

// Skipped returns how many cards were skipped in this session.
func (r *ReviewSessionCLI) Skipped() int {
	return r.skipped
}

func (r *ReviewSessionCLI) removeCurrentCard() {
	if len(r.cards) > 0 {
		r.cards = r.cards[1:]
	}
}

func (r *ReviewSessionCLI) prompt(message string) (string, error) {
	_, _ = r.bold.Fprint(r.stdoutWriter, message)
	input, err := r.stdinReader.ReadString('\n')
	if err != nil {
		if err == io.EOF && input != "" {
			return strings.ToLower(strings.TrimSpace(input)), nil
		}
		return "", fmt.Errorf("error reading input: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(input)), nil
}

func (r *ReviewSessionCLI) actions() string {
	if r.translator != nil {
		return "[r]eviewed, [t]ranslate, [s]kip, [q]uit: "
	}
	return "[r]eviewed, [s]kip, [q]uit: "
}

// Session shows the next card and handles the actions for it.
func (r *ReviewSessionCLI) Session(ctx context.Context) error {
	if len(r.cards) == 0 {
		_, _ = fmt.Fprintf(r.stdoutWriter, "No more cards to review! Reviewed %d, skipped %d.\n", r.reviewed, r.skipped)
		return errEnd
	}
	current := r.cards[0]

	_, _ = r.faint.Fprintf(r.stdoutWriter, "\n(%d left)\n", len(r.cards))
	r.PrintHeader(current.Content)
	input, err := r.prompt("Press Enter to show the card, or q to quit: ")
	if err != nil {
		return err
	}
	if input == "q" {
		return errEnd
	}

	r.PrintContent(current.Content)
	for {
		_, _ = fmt.Fprintln(r.stdoutWriter)
		input, err := r.prompt(r.actions())
		if err != nil {
			return err
		}

		switch input {
		case "r", "":
			reviewed, err := r.reviewer.RecordReview(ctx, current.ID)
			if err != nil {
				return fmt.Errorf("reviewer.RecordReview(%s) > %w", current.ID, err)
			}
			if reviewed == nil {
				_, _ = r.yellow.Fprintf(r.stdoutWriter, "%s no longer exists, skipping\n", current.ID)
				r.skipped++
			} else {
				_, _ = fmt.Fprint(r.stdoutWriter, "✅ ")
				_, _ = r.green.Fprintf(r.stdoutWriter, "Reviewed %d times. Next review on %s\n",
					reviewed.ReviewCount,
					formatDate(scheduler.NextDueDate(reviewed.Progress)))
				r.reviewed++
			}
			r.removeCurrentCard()
			return nil
		case "t":
			if r.translator == nil {
				continue
			}
			translated := r.translator.Card(ctx, current.Content, r.language)
			r.PrintHeader(translated)
			r.PrintContent(translated)
		case "s":
			r.skipped++
			r.removeCurrentCard()
			return nil
		case "q":
			return errEnd
		default:
			_, _ = r.red.Fprintf(r.stdoutWriter, "Unknown action %q\n", input)
		}
	}
}
