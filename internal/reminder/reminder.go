// Package reminder periodically reports how many cards are due for review.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/at-ishikawa/learncards/internal/card"
	"github.com/at-ishikawa/learncards/internal/config"
	"github.com/at-ishikawa/learncards/internal/view"
)

const checkTimeout = 30 * time.Second

// CardLister lists every card with its progress.
type CardLister interface {
	ListAll(ctx context.Context) ([]card.Card, error)
}

// Reminder runs a due-card check on a cron schedule.
type Reminder struct {
	cron   *cron.Cron
	cards  CardLister
	now    func() time.Time
	notify func(ctx context.Context, due int)
}

type Option func(*Reminder)

// WithNotify is called with the due count after each successful check.
func WithNotify(notify func(ctx context.Context, due int)) Option {
	return func(r *Reminder) {
		r.notify = notify
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Reminder) {
		r.now = now
	}
}

// New creates a Reminder for the cron expression schedule.
func New(schedule string, cards CardLister, opts ...Option) (*Reminder, error) {
	parsed, err := config.ParseSchedule(schedule)
	if err != nil {
		return nil, fmt.Errorf("config.ParseSchedule(%s) > %w", schedule, err)
	}

	r := &Reminder{
		cron:  cron.New(),
		cards: cards,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.cron.Schedule(parsed, cron.FuncJob(r.run))
	return r, nil
}

func (r *Reminder) run() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	if _, err := r.Check(ctx); err != nil {
		slog.Default().Warn("failed to check due cards", slog.Any("error", err))
	}
}

// Check counts the cards due now and logs the count.
func (r *Reminder) Check(ctx context.Context) (int, error) {
	cards, err := r.cards.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("cards.ListAll() > %w", err)
	}

	due := view.DueCount(cards, r.now())
	slog.Default().Info("cards due for review",
		slog.Int("due", due),
		slog.Int("total", len(cards)))
	if r.notify != nil {
		r.notify(ctx, due)
	}
	return due, nil
}

// Start runs the schedule in its own goroutine.
func (r *Reminder) Start() {
	r.cron.Start()
}

// Stop stops the schedule and waits for a running check until ctx is done.
func (r *Reminder) Stop(ctx context.Context) error {
	stopped := r.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for the running reminder > %w", ctx.Err())
	}
}
