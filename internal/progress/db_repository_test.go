package progress

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/learncards/internal/card"
	"github.com/at-ishikawa/learncards/internal/config"
)

const selectAllQuery = "SELECT card_id, review_count, initial_review_at, first_review_at, second_review_at, third_review_at, monthly_review_at, last_reviewed_at, updated_at FROM card_progress"

func TestBuildUpsertQuery(t *testing.T) {
	tests := []struct {
		name       string
		driverName string
		want       string
	}{
		{
			name:       "mysql",
			driverName: "mysql",
			want: "INSERT INTO card_progress (card_id, review_count, initial_review_at, first_review_at, second_review_at, third_review_at, monthly_review_at, last_reviewed_at, updated_at) " +
				"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) ON DUPLICATE KEY UPDATE " +
				"review_count = VALUES(review_count), initial_review_at = VALUES(initial_review_at), first_review_at = VALUES(first_review_at), " +
				"second_review_at = VALUES(second_review_at), third_review_at = VALUES(third_review_at), monthly_review_at = VALUES(monthly_review_at), " +
				"last_reviewed_at = VALUES(last_reviewed_at), updated_at = VALUES(updated_at)",
		},
		{
			name:       "sqlite",
			driverName: "sqlite",
			want: "INSERT INTO card_progress (card_id, review_count, initial_review_at, first_review_at, second_review_at, third_review_at, monthly_review_at, last_reviewed_at, updated_at) " +
				"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT (card_id) DO UPDATE SET " +
				"review_count = excluded.review_count, initial_review_at = excluded.initial_review_at, first_review_at = excluded.first_review_at, " +
				"second_review_at = excluded.second_review_at, third_review_at = excluded.third_review_at, monthly_review_at = excluded.monthly_review_at, " +
				"last_reviewed_at = excluded.last_reviewed_at, updated_at = excluded.updated_at",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildUpsertQuery(tt.driverName))
		})
	}
}

func TestNewDBRepository_PostgresPlaceholders(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDBRepository(sqlx.NewDb(db, "pgx"))
	assert.Contains(t, repo.upsertQuery, "VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)")
	assert.Contains(t, repo.upsertQuery, "ON CONFLICT (card_id)")
}

func TestDBRepository_Find(t *testing.T) {
	p := testProgress(2)

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      *Record
		wantErr   bool
	}{
		{
			name: "found",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{
					"card_id", "review_count", "initial_review_at", "first_review_at", "second_review_at", "third_review_at", "monthly_review_at", "last_reviewed_at", "updated_at",
				}).AddRow("saga", 2, testNow, *p.Schedule.FirstReview, *p.Schedule.SecondReview, *p.Schedule.ThirdReview, *p.Schedule.MonthlyReview, testNow, testUpdated)
				mock.ExpectQuery(regexp.QuoteMeta(selectAllQuery + " WHERE card_id = ?")).
					WithArgs("saga").
					WillReturnRows(rows)
			},
			want: &Record{CardID: "saga", Progress: p, UpdatedAt: testUpdated},
		},
		{
			name: "nullable dates",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{
					"card_id", "review_count", "initial_review_at", "first_review_at", "second_review_at", "third_review_at", "monthly_review_at", "last_reviewed_at", "updated_at",
				}).AddRow("saga", 0, testNow, nil, nil, nil, nil, nil, testUpdated)
				mock.ExpectQuery(regexp.QuoteMeta(selectAllQuery + " WHERE card_id = ?")).
					WithArgs("saga").
					WillReturnRows(rows)
			},
			want: &Record{
				CardID:    "saga",
				Progress:  card.Progress{Schedule: card.Schedule{Initial: testNow}},
				UpdatedAt: testUpdated,
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(selectAllQuery + " WHERE card_id = ?")).
					WithArgs("saga").
					WillReturnRows(sqlmock.NewRows([]string{"card_id"}))
			},
			want: nil,
		},
		{
			name: "db error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(selectAllQuery + " WHERE card_id = ?")).
					WithArgs("saga").
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewDBRepository(sqlx.NewDb(db, "mysql"))
			tt.setupMock(mock)

			got, err := repo.Find(context.Background(), "saga")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_FindAll(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantIDs   []string
		wantErr   bool
	}{
		{
			name: "returns all records keyed by card id",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{
					"card_id", "review_count", "initial_review_at", "first_review_at", "second_review_at", "third_review_at", "monthly_review_at", "last_reviewed_at", "updated_at",
				}).
					AddRow("a", 0, testNow, testNow, nil, nil, nil, nil, testUpdated).
					AddRow("b", 4, testNow, testNow, testNow, testNow, testNow, testNow, testUpdated)
				mock.ExpectQuery(regexp.QuoteMeta(selectAllQuery + " ORDER BY card_id")).WillReturnRows(rows)
			},
			wantIDs: []string{"a", "b"},
		},
		{
			name: "db error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(selectAllQuery + " ORDER BY card_id")).
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewDBRepository(sqlx.NewDb(db, "mysql"))
			tt.setupMock(mock)

			got, err := repo.FindAll(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, len(tt.wantIDs))
			for _, id := range tt.wantIDs {
				assert.Equal(t, id, got[id].CardID)
			}
			assert.Equal(t, 4, got["b"].ReviewCount)
			assert.Nil(t, got["a"].Schedule.SecondReview)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_Upsert(t *testing.T) {
	p := testProgress(1)

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   bool
	}{
		{
			name: "upserts with updated_at",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO card_progress")).
					WithArgs("saga", 1, testNow, *p.Schedule.FirstReview, *p.Schedule.SecondReview, *p.Schedule.ThirdReview, *p.Schedule.MonthlyReview, testNow, testUpdated).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "db error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO card_progress")).
					WillReturnError(fmt.Errorf("deadlock"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewDBRepository(sqlx.NewDb(db, "mysql"))
			repo.now = func() time.Time { return testUpdated }
			tt.setupMock(mock)

			err = repo.Upsert(context.Background(), "saga", p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_UpsertAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDBRepository(sqlx.NewDb(db, "mysql"))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO card_progress")).
		WithArgs("a", 0, testNow, nil, nil, nil, nil, nil, testUpdated).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO card_progress")).
		WithArgs("b", 0, testNow, nil, nil, nil, nil, nil, testUpdated).
		WillReturnError(fmt.Errorf("deadlock"))
	mock.ExpectRollback()

	err = repo.UpsertAll(context.Background(), []Record{
		{CardID: "a", Progress: card.Progress{Schedule: card.Schedule{Initial: testNow}}, UpdatedAt: testUpdated},
		{CardID: "b", Progress: card.Progress{Schedule: card.Schedule{Initial: testNow}}, UpdatedAt: testUpdated},
	})
	assert.ErrorContains(t, err, "upsert card progress b")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDBRepository(sqlx.NewDb(db, "mysql"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM card_progress WHERE card_id = ?")).
		WithArgs("saga").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "saga"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	repo, closeFn, err := OpenDatabase(ctx, config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		Path:        filepath.Join(t.TempDir(), "learncards.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, closeFn())
	}()
	repo.now = func() time.Time { return testUpdated }

	got, err := repo.Find(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Upsert(ctx, "a", testProgress(0)))
	require.NoError(t, repo.Upsert(ctx, "a", testProgress(3)))

	got, err = repo.Find(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.ReviewCount)
	assert.True(t, testNow.Equal(got.Schedule.Initial))
	require.NotNil(t, got.Schedule.MonthlyReview)
	assert.True(t, testNow.AddDate(0, 0, 30).Equal(*got.Schedule.MonthlyReview))
	assert.True(t, testUpdated.Equal(got.UpdatedAt))

	require.NoError(t, repo.Delete(ctx, "a"))
	require.NoError(t, repo.Delete(ctx, "a"))
	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
