package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/learncards/internal/card"
	"github.com/at-ishikawa/learncards/internal/database"
)

var progressColumns = []string{
	"card_id",
	"review_count",
	"initial_review_at",
	"first_review_at",
	"second_review_at",
	"third_review_at",
	"monthly_review_at",
	"last_reviewed_at",
	"updated_at",
}

type progressRow struct {
	CardID          string     `db:"card_id"`
	ReviewCount     int        `db:"review_count"`
	InitialReviewAt time.Time  `db:"initial_review_at"`
	FirstReviewAt   *time.Time `db:"first_review_at"`
	SecondReviewAt  *time.Time `db:"second_review_at"`
	ThirdReviewAt   *time.Time `db:"third_review_at"`
	MonthlyReviewAt *time.Time `db:"monthly_review_at"`
	LastReviewedAt  *time.Time `db:"last_reviewed_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (row progressRow) record() Record {
	return Record{
		CardID: row.CardID,
		Progress: card.Progress{
			ReviewCount: row.ReviewCount,
			Schedule: card.Schedule{
				Initial:       row.InitialReviewAt,
				FirstReview:   row.FirstReviewAt,
				SecondReview:  row.SecondReviewAt,
				ThirdReview:   row.ThirdReviewAt,
				MonthlyReview: row.MonthlyReviewAt,
			},
			LastReviewed: row.LastReviewedAt,
		},
		UpdatedAt: row.UpdatedAt,
	}
}

func (record Record) args() []interface{} {
	return []interface{}{
		record.CardID,
		record.ReviewCount,
		record.Schedule.Initial,
		record.Schedule.FirstReview,
		record.Schedule.SecondReview,
		record.Schedule.ThirdReview,
		record.Schedule.MonthlyReview,
		record.LastReviewed,
		record.UpdatedAt,
	}
}

// DBRepository implements Repository on the card_progress table.
// It supports MySQL, SQLite and PostgreSQL.
type DBRepository struct {
	db          *sqlx.DB
	now         func() time.Time
	upsertQuery string
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{
		db:          db,
		now:         time.Now,
		upsertQuery: db.Rebind(buildUpsertQuery(db.DriverName())),
	}
}

func buildUpsertQuery(driverName string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(progressColumns)), ", ")
	query := fmt.Sprintf("INSERT INTO card_progress (%s) VALUES (%s)", strings.Join(progressColumns, ", "), placeholders)

	updates := make([]string, 0, len(progressColumns)-1)
	if driverName == "mysql" {
		for _, column := range progressColumns[1:] {
			updates = append(updates, fmt.Sprintf("%s = VALUES(%s)", column, column))
		}
		return query + " ON DUPLICATE KEY UPDATE " + strings.Join(updates, ", ")
	}
	for _, column := range progressColumns[1:] {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", column, column))
	}
	return query + " ON CONFLICT (card_id) DO UPDATE SET " + strings.Join(updates, ", ")
}

func (r *DBRepository) selectQuery(where string) string {
	query := "SELECT " + strings.Join(progressColumns, ", ") + " FROM card_progress"
	if where != "" {
		query += " WHERE " + where
	}
	return r.db.Rebind(query)
}

// Find returns the progress of cardID.
func (r *DBRepository) Find(ctx context.Context, cardID string) (*Record, error) {
	var row progressRow
	if err := r.db.GetContext(ctx, &row, r.selectQuery("card_id = ?"), cardID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find card progress %s: %w", cardID, err)
	}
	record := row.record()
	return &record, nil
}

// FindAll returns all progress records keyed by card id.
func (r *DBRepository) FindAll(ctx context.Context) (map[string]Record, error) {
	var rows []progressRow
	if err := r.db.SelectContext(ctx, &rows, r.selectQuery("")+" ORDER BY card_id"); err != nil {
		return nil, fmt.Errorf("load all card progress: %w", err)
	}

	records := make(map[string]Record, len(rows))
	for _, row := range rows {
		records[row.CardID] = row.record()
	}
	return records, nil
}

// Upsert inserts or replaces the progress of cardID.
func (r *DBRepository) Upsert(ctx context.Context, cardID string, p card.Progress) error {
	record := Record{CardID: cardID, Progress: p, UpdatedAt: r.now()}
	if _, err := r.db.ExecContext(ctx, r.upsertQuery, record.args()...); err != nil {
		return fmt.Errorf("upsert card progress %s: %w", cardID, err)
	}
	return nil
}

// UpsertAll writes all records in a single transaction, keeping their UpdatedAt.
func (r *DBRepository) UpsertAll(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		for _, record := range records {
			if _, err := tx.ExecContext(ctx, r.upsertQuery, record.args()...); err != nil {
				return fmt.Errorf("upsert card progress %s: %w", record.CardID, err)
			}
		}
		return nil
	})
}

// Delete removes the progress of cardID.
func (r *DBRepository) Delete(ctx context.Context, cardID string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM card_progress WHERE card_id = ?"), cardID); err != nil {
		return fmt.Errorf("delete card progress %s: %w", cardID, err)
	}
	return nil
}
