package history

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	appendQ = `(?s)^INSERT\s+INTO\s+history\s*\(id,\s*user_id,\s*original_text,\s*processed_text,\s*mode\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+created_at\s*$`
	listQ   = `^SELECT id, user_id, original_text, processed_text, mode, created_at FROM history WHERE user_id = \$1 ORDER BY created_at DESC, id LIMIT 10$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestAppend(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	uid := "u-1"
	ts := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(appendQ).
		WithArgs("h-1", &uid, "in", "out", "summarize").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(ts))

	got, err := repo.Append(context.Background(), &models.HistoryEntry{
		ID: "h-1", UserID: &uid, OriginalText: "in", ProcessedText: "out", Mode: models.ModeSummarize,
	})
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(ts))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppend_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(appendQ).WillReturnError(errors.New("down"))

	_, err := repo.Append(context.Background(), &models.HistoryEntry{ID: "h-1", Mode: models.ModeParaphrase})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestListByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	uid := "u-1"
	ts := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(listQ).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "original_text", "processed_text", "mode", "created_at"}).
			AddRow("h-2", uid, "b", "B", "formal", ts).
			AddRow("h-1", uid, "a", "A", "paraphrase", ts.Add(-time.Minute)))

	got, err := repo.ListByOwner(context.Background(), "u-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.ModeFormal, got[0].Mode)
	require.NotNil(t, got[0].UserID)
	assert.Equal(t, uid, *got[0].UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOwner_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listQ).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "original_text", "processed_text", "mode", "created_at"}))

	got, err := repo.ListByOwner(context.Background(), "u-1", 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListByOwner_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listQ).WillReturnError(errors.New("down"))

	_, err := repo.ListByOwner(context.Background(), "u-1", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query history")
}
