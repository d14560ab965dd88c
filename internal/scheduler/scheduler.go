// Package scheduler implements the fixed four-step review curve.
//
// After the n-th review the card is due again 2, 7, 14 and then every 30 days.
package scheduler

import (
	"time"

	"github.com/at-ishikawa/learncards/internal/card"
)

const day = 24 * time.Hour

const (
	FirstInterval   = 2 * day
	SecondInterval  = 7 * day
	ThirdInterval   = 14 * day
	MonthlyInterval = 30 * day
)

// DefaultProgress is the progress of a card that has never been reviewed.
// Its first review is due immediately.
func DefaultProgress(now time.Time) card.Progress {
	return card.Progress{
		ReviewCount: 0,
		Schedule: card.Schedule{
			Initial:       now,
			FirstReview:   card.TimePtr(now),
			SecondReview:  card.TimePtr(now.Add(SecondInterval)),
			ThirdReview:   card.TimePtr(now.Add(ThirdInterval)),
			MonthlyReview: card.TimePtr(now.Add(MonthlyInterval)),
		},
	}
}

// Advance records one review at now and returns the new progress.
// It sets exactly one schedule field, chosen by the incremented review count.
func Advance(p card.Progress, now time.Time) card.Progress {
	next := card.Progress{
		ReviewCount:  p.ReviewCount + 1,
		Schedule:     p.Schedule,
		LastReviewed: card.TimePtr(now),
	}

	switch next.ReviewCount {
	case 1:
		next.Schedule.FirstReview = card.TimePtr(now.Add(FirstInterval))
	case 2:
		next.Schedule.SecondReview = card.TimePtr(now.Add(SecondInterval))
	case 3:
		next.Schedule.ThirdReview = card.TimePtr(now.Add(ThirdInterval))
	default:
		next.Schedule.MonthlyReview = card.TimePtr(now.Add(MonthlyInterval))
	}
	return next
}

// NextDueDate returns the review date selected by the current review count,
// or nil when that field is unset.
//
// The selection is one step behind Advance: after the first review the
// count is 1 and the second review date is shown, not the first one that
// Advance just wrote.
func NextDueDate(p card.Progress) *time.Time {
	switch p.ReviewCount {
	case 0:
		return p.Schedule.FirstReview
	case 1:
		return p.Schedule.SecondReview
	case 2:
		return p.Schedule.ThirdReview
	default:
		return p.Schedule.MonthlyReview
	}
}

// IsDue reports whether the next due date exists and is not after now.
func IsDue(p card.Progress, now time.Time) bool {
	due := NextDueDate(p)
	return due != nil && !due.After(now)
}
