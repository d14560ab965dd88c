// Package view selects which cards to show.
package view

import (
	"fmt"
	"sort"
	"time"

	"github.com/at-ishikawa/learncards/internal/card"
	"github.com/at-ishikawa/learncards/internal/scheduler"
)

// AllCategories disables category filtering.
const AllCategories = "all"

// Mode is either the due subset or every card.
type Mode string

const (
	ModeDue Mode = "due"
	ModeAll Mode = "all"
)

// ParseMode returns the Mode named by s.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDue, ModeAll:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown view mode %q, must be one of %s or %s", s, ModeDue, ModeAll)
}

// Filter combines a view mode with a category.
type Filter struct {
	Mode     Mode
	Category string
}

// DueCards returns the cards due at now, in input order.
func DueCards(cards []card.Card, now time.Time) []card.Card {
	result := make([]card.Card, 0, len(cards))
	for _, c := range cards {
		if scheduler.IsDue(c.Progress, now) {
			result = append(result, c)
		}
	}
	return result
}

// ByCategory returns the cards in category, in input order.
// AllCategories returns cards unfiltered.
func ByCategory(cards []card.Card, category string) []card.Card {
	if category == AllCategories {
		return cards
	}
	result := make([]card.Card, 0, len(cards))
	for _, c := range cards {
		if c.Category == category {
			result = append(result, c)
		}
	}
	return result
}

// Categories returns the distinct categories of cards in lexicographic order.
func Categories(cards []card.Card) []string {
	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, c := range cards {
		if seen[c.Category] {
			continue
		}
		seen[c.Category] = true
		categories = append(categories, c.Category)
	}
	sort.Strings(categories)
	return categories
}

// DueCount is the number of cards due at now.
func DueCount(cards []card.Card, now time.Time) int {
	return len(DueCards(cards, now))
}

// Select applies the mode and then the category of f.
// An empty mode behaves like ModeAll and an empty category like AllCategories.
func Select(cards []card.Card, f Filter, now time.Time) []card.Card {
	if f.Mode == ModeDue {
		cards = DueCards(cards, now)
	}
	if f.Category == "" {
		return cards
	}
	return ByCategory(cards, f.Category)
}
