// Package datasync copies review progress between progress backends,
// such as from the YAML file into a database and back.
package datasync

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/at-ishikawa/learncards/internal/card"
	"github.com/at-ishikawa/learncards/internal/progress"
)

// ImportResult tracks counts for an import.
type ImportResult struct {
	New      int
	Updated  int
	Skipped  int
	Warnings int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun         bool
	UpdateExisting bool
	// KnownCardIDs, when set, reports records whose card no longer exists.
	// Such records are still copied.
	KnownCardIDs []string
}

// Importer copies progress records from source into sink.
type Importer struct {
	source progress.Repository
	sink   progress.Store
	writer io.Writer
}

// NewImporter creates a new Importer that reports each record to writer.
func NewImporter(source progress.Repository, sink progress.Store, writer io.Writer) *Importer {
	return &Importer{
		source: source,
		sink:   sink,
		writer: writer,
	}
}

// Import copies every source record missing from the sink. Records present
// in both are replaced only with UpdateExisting and when they differ.
// All writes go to the sink in one UpsertAll call.
func (imp *Importer) Import(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	sourceRecords, err := imp.source.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("source.FindAll() > %w", err)
	}
	sinkRecords, err := imp.sink.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("sink.FindAll() > %w", err)
	}

	var known map[string]bool
	if opts.KnownCardIDs != nil {
		known = make(map[string]bool, len(opts.KnownCardIDs))
		for _, id := range opts.KnownCardIDs {
			known[id] = true
		}
	}

	ids := make([]string, 0, len(sourceRecords))
	for id := range sourceRecords {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var result ImportResult
	writes := make([]progress.Record, 0, len(ids))
	for _, id := range ids {
		record := sourceRecords[id]
		if known != nil && !known[id] {
			fmt.Fprintf(imp.writer, "  [WARN]  no card for progress %q\n", id)
			result.Warnings++
		}

		existing, ok := sinkRecords[id]
		switch {
		case !ok:
			fmt.Fprintf(imp.writer, "  [NEW]  %s (reviewed %d times)\n", id, record.ReviewCount)
			result.New++
		case !opts.UpdateExisting || sameProgress(existing.Progress, record.Progress):
			result.Skipped++
			continue
		default:
			fmt.Fprintf(imp.writer, "  [UPDATE]  %s (reviewed %d -> %d times)\n", id, existing.ReviewCount, record.ReviewCount)
			result.Updated++
		}
		writes = append(writes, record)
	}

	if !opts.DryRun && len(writes) > 0 {
		if err := imp.sink.UpsertAll(ctx, writes); err != nil {
			return nil, fmt.Errorf("sink.UpsertAll() > %w", err)
		}
	}
	return &result, nil
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func sameProgress(a, b card.Progress) bool {
	return a.ReviewCount == b.ReviewCount &&
		sameTime(a.LastReviewed, b.LastReviewed) &&
		a.Schedule.Initial.Equal(b.Schedule.Initial) &&
		sameTime(a.Schedule.FirstReview, b.Schedule.FirstReview) &&
		sameTime(a.Schedule.SecondReview, b.Schedule.SecondReview) &&
		sameTime(a.Schedule.ThirdReview, b.Schedule.ThirdReview) &&
		sameTime(a.Schedule.MonthlyReview, b.Schedule.MonthlyReview)
}
