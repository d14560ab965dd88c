// Package progress stores the review progress of cards, keyed by card id.
package progress

import (
	"context"
	"time"

	"github.com/at-ishikawa/learncards/internal/card"
)

//go:generate mockgen -source=repository.go -destination=../mocks/progress/mock_repository.go -package=mock_progress

// Record is the stored progress of one card.
type Record struct {
	CardID        string `json:"card_id" yaml:"card_id"`
	card.Progress `yaml:",inline"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"updated_at"`
}

// Repository defines operations for managing card progress.
type Repository interface {
	// Find returns nil without an error when no progress exists for cardID.
	Find(ctx context.Context, cardID string) (*Record, error)
	FindAll(ctx context.Context) (map[string]Record, error)
	// Upsert replaces the progress of cardID, inserting it if missing.
	Upsert(ctx context.Context, cardID string, p card.Progress) error
	// Delete removes the progress of cardID. Deleting a missing record is not an error.
	Delete(ctx context.Context, cardID string) error
}
