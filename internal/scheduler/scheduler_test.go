package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/learncards/internal/card"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestDefaultProgress(t *testing.T) {
	got := DefaultProgress(t0)

	assert.Equal(t, 0, got.ReviewCount)
	assert.Equal(t, t0, got.Schedule.Initial)
	assert.Equal(t, t0, *got.Schedule.FirstReview)
	assert.Equal(t, t0.AddDate(0, 0, 7), *got.Schedule.SecondReview)
	assert.Equal(t, t0.AddDate(0, 0, 14), *got.Schedule.ThirdReview)
	assert.Equal(t, t0.AddDate(0, 0, 30), *got.Schedule.MonthlyReview)
	assert.Nil(t, got.LastReviewed)

	assert.True(t, IsDue(got, t0), "a new card is due immediately")
}

func TestAdvance(t *testing.T) {
	now := t0.AddDate(0, 0, 3)

	tests := []struct {
		name        string
		reviewCount int
		wantField   func(s card.Schedule) *time.Time
		wantOffset  time.Duration
	}{
		{
			name:        "first review sets first review date",
			reviewCount: 0,
			wantField:   func(s card.Schedule) *time.Time { return s.FirstReview },
			wantOffset:  2 * day,
		},
		{
			name:        "second review sets second review date",
			reviewCount: 1,
			wantField:   func(s card.Schedule) *time.Time { return s.SecondReview },
			wantOffset:  7 * day,
		},
		{
			name:        "third review sets third review date",
			reviewCount: 2,
			wantField:   func(s card.Schedule) *time.Time { return s.ThirdReview },
			wantOffset:  14 * day,
		},
		{
			name:        "fourth review sets monthly review date",
			reviewCount: 3,
			wantField:   func(s card.Schedule) *time.Time { return s.MonthlyReview },
			wantOffset:  30 * day,
		},
		{
			name:        "later reviews keep moving the monthly review date",
			reviewCount: 9,
			wantField:   func(s card.Schedule) *time.Time { return s.MonthlyReview },
			wantOffset:  30 * day,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := DefaultProgress(t0)
			before.ReviewCount = tt.reviewCount
			original := DefaultProgress(t0)
			original.ReviewCount = tt.reviewCount

			got := Advance(before, now)

			assert.Equal(t, tt.reviewCount+1, got.ReviewCount)
			require.NotNil(t, got.LastReviewed)
			assert.Equal(t, now, *got.LastReviewed)
			require.NotNil(t, tt.wantField(got.Schedule))
			assert.Equal(t, now.Add(tt.wantOffset), *tt.wantField(got.Schedule))
			assert.Equal(t, t0, got.Schedule.Initial)
			assert.Equal(t, original, before, "input must not be modified")

			changed := 0
			for _, field := range []func(s card.Schedule) *time.Time{
				func(s card.Schedule) *time.Time { return s.FirstReview },
				func(s card.Schedule) *time.Time { return s.SecondReview },
				func(s card.Schedule) *time.Time { return s.ThirdReview },
				func(s card.Schedule) *time.Time { return s.MonthlyReview },
			} {
				if !field(before.Schedule).Equal(*field(got.Schedule)) {
					changed++
				}
			}
			assert.Equal(t, 1, changed, "exactly one schedule field changes")
		})
	}
}

func TestNextDueDate(t *testing.T) {
	schedule := card.Schedule{
		Initial:       t0,
		FirstReview:   card.TimePtr(t0.Add(1 * day)),
		SecondReview:  card.TimePtr(t0.Add(2 * day)),
		ThirdReview:   card.TimePtr(t0.Add(3 * day)),
		MonthlyReview: card.TimePtr(t0.Add(4 * day)),
	}

	tests := []struct {
		name        string
		reviewCount int
		schedule    card.Schedule
		want        *time.Time
	}{
		{name: "count 0 uses first review", reviewCount: 0, schedule: schedule, want: schedule.FirstReview},
		{name: "count 1 uses second review", reviewCount: 1, schedule: schedule, want: schedule.SecondReview},
		{name: "count 2 uses third review", reviewCount: 2, schedule: schedule, want: schedule.ThirdReview},
		{name: "count 3 uses monthly review", reviewCount: 3, schedule: schedule, want: schedule.MonthlyReview},
		{name: "count 7 uses monthly review", reviewCount: 7, schedule: schedule, want: schedule.MonthlyReview},
		{name: "unset field", reviewCount: 2, schedule: card.Schedule{Initial: t0}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDueDate(card.Progress{ReviewCount: tt.reviewCount, Schedule: tt.schedule})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsDue(t *testing.T) {
	due := t0.Add(5 * day)
	progress := card.Progress{
		ReviewCount: 1,
		Schedule:    card.Schedule{Initial: t0, SecondReview: &due},
	}

	tests := []struct {
		name     string
		progress card.Progress
		now      time.Time
		want     bool
	}{
		{name: "before due date", progress: progress, now: due.Add(-time.Millisecond), want: false},
		{name: "exactly at due date", progress: progress, now: due, want: true},
		{name: "after due date", progress: progress, now: due.Add(time.Millisecond), want: true},
		{name: "no due date", progress: card.Progress{ReviewCount: 0, Schedule: card.Schedule{Initial: t0}}, now: due, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDue(tt.progress, tt.now))
		})
	}
}

func TestReviewLifecycle(t *testing.T) {
	p := DefaultProgress(t0)
	require.True(t, IsDue(p, t0))

	p = Advance(p, t0)
	assert.Equal(t, t0.Add(2*day), *p.Schedule.FirstReview)
	assert.Equal(t, t0.Add(7*day), *NextDueDate(p))
	assert.False(t, IsDue(p, t0.Add(2*day)), "the first review date is not consulted at count 1")

	t1 := t0.Add(7 * day)
	require.True(t, IsDue(p, t1))
	p = Advance(p, t1)
	assert.Equal(t, t1.Add(7*day), *p.Schedule.SecondReview)
	assert.Equal(t, t0.Add(14*day), *NextDueDate(p))

	t2 := t0.Add(14 * day)
	require.True(t, IsDue(p, t2))
	p = Advance(p, t2)
	assert.Equal(t, t2.Add(14*day), *p.Schedule.ThirdReview)
	assert.Equal(t, t0.Add(30*day), *NextDueDate(p))

	t3 := t0.Add(30 * day)
	require.True(t, IsDue(p, t3))
	p = Advance(p, t3)
	assert.Equal(t, 4, p.ReviewCount)
	assert.Equal(t, t3.Add(30*day), *NextDueDate(p))
	assert.Equal(t, t3, *p.LastReviewed)
}
