package learning

import (
	"context"
	"fmt"

	"github.com/at-ishikawa/learncards/internal/card"
	"github.com/at-ishikawa/learncards/internal/config"
	"github.com/at-ishikawa/learncards/internal/progress"
)

// Open creates a CardRepository over the configured card directory and progress backend.
// The returned close function releases the progress backend.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*CardRepository, func() error, error) {
	store, closeStore, err := progress.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("progress.Open() > %w", err)
	}

	repo, err := NewCardRepository(card.NewMarkdownStore(cfg.Cards.Directory), store, opts...)
	if err != nil {
		_ = closeStore()
		return nil, nil, fmt.Errorf("NewCardRepository() > %w", err)
	}
	return repo, closeStore, nil
}
