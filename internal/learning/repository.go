// Package learning merges authored card content with review progress.
package learning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/at-ishikawa/learncards/internal/card"
	"github.com/at-ishikawa/learncards/internal/progress"
	"github.com/at-ishikawa/learncards/internal/scheduler"
)

const maxConcurrentReads = 16

// CardRepository reads and writes cards across the content store and the progress store.
// Content and progress are written in two steps without a transaction; a card
// whose progress is missing gets the default schedule when it is read.
type CardRepository struct {
	contents  card.ContentStore
	progress  progress.Repository
	validator *card.Validator
	now       func() time.Time
	newID     func() string
}

// Option configures a CardRepository.
type Option func(*CardRepository)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *CardRepository) {
		r.now = now
	}
}

// WithIDGenerator replaces the generator of ids for cards created without one.
func WithIDGenerator(newID func() string) Option {
	return func(r *CardRepository) {
		r.newID = newID
	}
}

// NewCardRepository creates a new CardRepository.
func NewCardRepository(contents card.ContentStore, progressRepo progress.Repository, opts ...Option) (*CardRepository, error) {
	validator, err := card.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("card.NewValidator() > %w", err)
	}

	r := &CardRepository{
		contents:  contents,
		progress:  progressRepo,
		validator: validator,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func merge(content card.Content, record *progress.Record, now time.Time) card.Card {
	if record == nil {
		return card.Card{Content: content, Progress: scheduler.DefaultProgress(now)}
	}
	return card.Card{Content: content, Progress: record.Progress}
}

// ListAll returns every readable card in id order.
// Content files are read concurrently with a single query for all progress.
// Cards that cannot be read or parsed are logged and left out.
func (r *CardRepository) ListAll(ctx context.Context) ([]card.Card, error) {
	ids, err := r.contents.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list card ids: %w", err)
	}

	contents := make([]*card.Content, len(ids))
	var records map[string]progress.Record

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	g.Go(func() error {
		result, err := r.progress.FindAll(gctx)
		if err != nil {
			return fmt.Errorf("load card progress: %w", err)
		}
		records = result
		return nil
	})
	for i, id := range ids {
		g.Go(func() error {
			content, err := r.contents.Read(gctx, id)
			if err != nil {
				slog.Default().Warn("skip unreadable card",
					slog.String("id", id),
					slog.Any("error", err))
				return nil
			}
			contents[i] = content
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := r.now()
	cards := make([]card.Card, 0, len(ids))
	for i, content := range contents {
		if content == nil {
			continue
		}
		content.ID = ids[i]
		var record *progress.Record
		if found, ok := records[ids[i]]; ok {
			record = &found
		}
		cards = append(cards, merge(*content, record, now))
	}
	return cards, nil
}

// Get returns the card with id, or nil when its content does not exist.
func (r *CardRepository) Get(ctx context.Context, id string) (*card.Card, error) {
	content, err := r.contents.Read(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read card %s: %w", id, err)
	}
	if content == nil {
		return nil, nil
	}
	content.ID = id

	record, err := r.progress.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find card progress %s: %w", id, err)
	}

	c := merge(*content, record, r.now())
	return &c, nil
}

func normalize(content *card.Content) {
	if content.TypicalCases == nil {
		content.TypicalCases = []string{}
	}
	if content.Related == nil {
		content.Related = []string{}
	}
	if content.Type == "" {
		content.Type = card.DefaultKnowledgeType
	}
}

// Create writes new content and seeds its progress with the default schedule.
// An id is generated when content has none. Existing content and progress
// with the same id are overwritten.
func (r *CardRepository) Create(ctx context.Context, content card.Content) (card.Card, error) {
	if content.ID == "" {
		content.ID = r.newID()
	}
	normalize(&content)
	if err := r.validator.Validate(content); err != nil {
		return card.Card{}, err
	}

	if err := r.contents.Write(ctx, content); err != nil {
		return card.Card{}, fmt.Errorf("write card %s: %w", content.ID, err)
	}

	p := scheduler.DefaultProgress(r.now())
	if err := r.progress.Upsert(ctx, content.ID, p); err != nil {
		return card.Card{}, fmt.Errorf("seed card progress %s: %w", content.ID, err)
	}
	return card.Card{Content: content, Progress: p}, nil
}

// UpdateContent rewrites the content of an existing card and keeps its progress.
// It returns nil when no card with id exists.
func (r *CardRepository) UpdateContent(ctx context.Context, id string, content card.Content) (*card.Card, error) {
	existing, err := r.contents.Read(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read card %s: %w", id, err)
	}
	if existing == nil {
		return nil, nil
	}

	content.ID = id
	normalize(&content)
	if err := r.validator.Validate(content); err != nil {
		return nil, err
	}
	if err := r.contents.Write(ctx, content); err != nil {
		return nil, fmt.Errorf("write card %s: %w", id, err)
	}

	record, err := r.progress.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find card progress %s: %w", id, err)
	}
	c := merge(content, record, r.now())
	return &c, nil
}

// RecordReview marks the card reviewed now and stores the advanced progress.
// It returns nil when no card with id exists.
func (r *CardRepository) RecordReview(ctx context.Context, id string) (*card.Card, error) {
	content, err := r.contents.Read(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read card %s: %w", id, err)
	}
	if content == nil {
		return nil, nil
	}
	content.ID = id

	record, err := r.progress.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find card progress %s: %w", id, err)
	}

	now := r.now()
	current := merge(*content, record, now)
	next := scheduler.Advance(current.Progress, now)
	if err := r.progress.Upsert(ctx, id, next); err != nil {
		return nil, fmt.Errorf("save card progress %s: %w", id, err)
	}

	slog.Default().Debug("recorded review",
		slog.String("id", id),
		slog.Int("reviewCount", next.ReviewCount))
	return &card.Card{Content: *content, Progress: next}, nil
}

// Delete removes the content and then the progress of id.
// Failures are logged and never returned.
func (r *CardRepository) Delete(ctx context.Context, id string) {
	if err := r.contents.Delete(ctx, id); err != nil {
		slog.Default().Warn("failed to delete card content",
			slog.String("id", id),
			slog.Any("error", err))
	}
	if err := r.progress.Delete(ctx, id); err != nil {
		slog.Default().Warn("failed to delete card progress",
			slog.String("id", id),
			slog.Any("error", err))
	}
}
