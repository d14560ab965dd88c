// Package card defines learning cards and the markdown files they are authored in.
package card

import (
	"fmt"
	"time"
)

// KnowledgeType classifies how often a concept comes up in practice.
type KnowledgeType string

const (
	KnowledgeTypeHighFrequency KnowledgeType = "high-frequency"
	KnowledgeTypeLowFrequency  KnowledgeType = "low-frequency"
	KnowledgeTypeAwarenessOnly KnowledgeType = "awareness-only"
)

// DefaultKnowledgeType is used when a card file omits its type.
const DefaultKnowledgeType = KnowledgeTypeLowFrequency

var knowledgeTypes = []KnowledgeType{
	KnowledgeTypeHighFrequency,
	KnowledgeTypeLowFrequency,
	KnowledgeTypeAwarenessOnly,
}

// ParseKnowledgeType returns the KnowledgeType for s, or an error if s is not one of the known values.
func ParseKnowledgeType(s string) (KnowledgeType, error) {
	for _, t := range knowledgeTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown knowledge type %q", s)
}

// Content is the authored, read-only part of a card.
// Optional text fields are nil when the section is absent from the file.
type Content struct {
	ID             string        `json:"id" yaml:"id" validate:"required,excludesall=/\\"`
	Title          string        `json:"title" yaml:"title" validate:"required"`
	Emoji          *string       `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Category       string        `json:"category" yaml:"category" validate:"required"`
	Type           KnowledgeType `json:"type" yaml:"type" validate:"required,oneof=high-frequency low-frequency awareness-only"`
	UseWhen        string        `json:"use_when" yaml:"use_when"`
	TypicalCases   []string      `json:"typical_cases" yaml:"typical_cases"`
	OneLineEssence string        `json:"one_line_essence" yaml:"one_line_essence"`
	Example        *string       `json:"example,omitempty" yaml:"example,omitempty"`
	Risks          *string       `json:"risks,omitempty" yaml:"risks,omitempty"`
	WhenNotToUse   *string       `json:"when_not_to_use,omitempty" yaml:"when_not_to_use,omitempty"`
	Related        []string      `json:"related" yaml:"related"`
}

// Schedule holds the planned review dates of a card.
type Schedule struct {
	Initial       time.Time  `json:"initial" yaml:"initial"`
	FirstReview   *time.Time `json:"first_review,omitempty" yaml:"first_review,omitempty"`
	SecondReview  *time.Time `json:"second_review,omitempty" yaml:"second_review,omitempty"`
	ThirdReview   *time.Time `json:"third_review,omitempty" yaml:"third_review,omitempty"`
	MonthlyReview *time.Time `json:"monthly_review,omitempty" yaml:"monthly_review,omitempty"`
}

// Progress is the mutable review state of a card.
type Progress struct {
	ReviewCount  int        `json:"review_count" yaml:"review_count"`
	Schedule     Schedule   `json:"review_schedule" yaml:"review_schedule"`
	LastReviewed *time.Time `json:"last_reviewed,omitempty" yaml:"last_reviewed,omitempty"`
}

// Card is content merged with its progress. It is never stored as a unit.
type Card struct {
	Content
	Progress
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time {
	return &t
}
