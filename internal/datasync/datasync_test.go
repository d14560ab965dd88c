package datasync

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/learncards/internal/card"
	mock_progress "github.com/at-ishikawa/learncards/internal/mocks/progress"
	"github.com/at-ishikawa/learncards/internal/progress"
)

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func testRecord(id string, count int) progress.Record {
	return progress.Record{
		CardID: id,
		Progress: card.Progress{
			ReviewCount: count,
			Schedule: card.Schedule{
				Initial:     testNow,
				FirstReview: card.TimePtr(testNow.AddDate(0, 0, 2)),
			},
			LastReviewed: card.TimePtr(testNow),
		},
		UpdatedAt: testNow,
	}
}

func TestImporter_Import(t *testing.T) {
	tests := []struct {
		name       string
		source     map[string]progress.Record
		existing   []progress.Record
		opts       ImportOptions
		want       *ImportResult
		wantOutput []string
		wantSink   map[string]int
	}{
		{
			name: "new records",
			source: map[string]progress.Record{
				"b-card": testRecord("b-card", 2),
				"a-card": testRecord("a-card", 0),
			},
			want: &ImportResult{New: 2},
			wantOutput: []string{
				"  [NEW]  a-card (reviewed 0 times)\n",
				"  [NEW]  b-card (reviewed 2 times)\n",
			},
			wantSink: map[string]int{"a-card": 0, "b-card": 2},
		},
		{
			name:     "existing records are skipped by default",
			source:   map[string]progress.Record{"a-card": testRecord("a-card", 3)},
			existing: []progress.Record{testRecord("a-card", 1)},
			want:     &ImportResult{Skipped: 1},
			wantSink: map[string]int{"a-card": 1},
		},
		{
			name:     "changed records are updated",
			source:   map[string]progress.Record{"a-card": testRecord("a-card", 3)},
			existing: []progress.Record{testRecord("a-card", 1)},
			opts:     ImportOptions{UpdateExisting: true},
			want:     &ImportResult{Updated: 1},
			wantOutput: []string{
				"  [UPDATE]  a-card (reviewed 1 -> 3 times)\n",
			},
			wantSink: map[string]int{"a-card": 3},
		},
		{
			name:     "identical records are skipped",
			source:   map[string]progress.Record{"a-card": testRecord("a-card", 1)},
			existing: []progress.Record{testRecord("a-card", 1)},
			opts:     ImportOptions{UpdateExisting: true},
			want:     &ImportResult{Skipped: 1},
			wantSink: map[string]int{"a-card": 1},
		},
		{
			name:   "dry run does not write",
			source: map[string]progress.Record{"a-card": testRecord("a-card", 1)},
			opts:   ImportOptions{DryRun: true},
			want:   &ImportResult{New: 1},
			wantOutput: []string{
				"  [NEW]  a-card (reviewed 1 times)\n",
			},
			wantSink: map[string]int{},
		},
		{
			name:   "orphan progress is reported and copied",
			source: map[string]progress.Record{"gone": testRecord("gone", 1)},
			opts:   ImportOptions{KnownCardIDs: []string{"other"}},
			want:   &ImportResult{New: 1, Warnings: 1},
			wantOutput: []string{
				"  [WARN]  no card for progress \"gone\"\n",
				"  [NEW]  gone (reviewed 1 times)\n",
			},
			wantSink: map[string]int{"gone": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ctrl := gomock.NewController(t)
			source := mock_progress.NewMockRepository(ctrl)
			source.EXPECT().FindAll(gomock.Any()).Return(tt.source, nil)

			sink := progress.NewYAMLRepository(filepath.Join(t.TempDir(), "progress.yml"))
			if len(tt.existing) > 0 {
				require.NoError(t, sink.UpsertAll(ctx, tt.existing))
			}

			var out bytes.Buffer
			got, err := NewImporter(source, sink, &out).Import(ctx, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			wantOutput := ""
			for _, line := range tt.wantOutput {
				wantOutput += line
			}
			assert.Equal(t, wantOutput, out.String())

			records, err := sink.FindAll(ctx)
			require.NoError(t, err)
			gotSink := make(map[string]int, len(records))
			for id, record := range records {
				gotSink[id] = record.ReviewCount
			}
			assert.Equal(t, tt.wantSink, gotSink)
		})
	}
}

func TestImporter_Import_SourceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mock_progress.NewMockRepository(ctrl)
	source.EXPECT().FindAll(gomock.Any()).Return(nil, errors.New("connection refused"))

	sink := progress.NewYAMLRepository(filepath.Join(t.TempDir(), "progress.yml"))
	_, err := NewImporter(source, sink, &bytes.Buffer{}).Import(context.Background(), ImportOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source.FindAll()")
}

func TestSameProgress(t *testing.T) {
	base := testRecord("a", 1).Progress
	later := base
	later.LastReviewed = card.TimePtr(testNow.Add(time.Hour))
	sameInstant := base
	sameInstant.LastReviewed = card.TimePtr(testNow.In(time.FixedZone("JST", 9*60*60)))
	noLast := base
	noLast.LastReviewed = nil

	assert.True(t, sameProgress(base, base))
	assert.True(t, sameProgress(base, sameInstant))
	assert.False(t, sameProgress(base, later))
	assert.False(t, sameProgress(base, noLast))
}
