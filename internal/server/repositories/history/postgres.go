// Package history persists AI rewrite records in PostgreSQL.
package history

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/tracing"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append stores entry. UserID may be nil for unattributed records.
func (r *PostgresRepository) Append(ctx context.Context, entry *models.HistoryEntry) (*models.HistoryEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "history.Append")
	defer span.End()

	query := `
		INSERT INTO history (id, user_id, original_text, processed_text, mode)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		entry.ID, entry.UserID, entry.OriginalText, entry.ProcessedText, string(entry.Mode),
	).Scan(&entry.CreatedAt)
	if err != nil {
		return nil, tracing.RecordError(span, fmt.Errorf("db error: %w", err))
	}
	return entry, nil
}

// ListByOwner returns at most limit entries for userID, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string, limit uint64) ([]*models.HistoryEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "history.ListByOwner")
	defer span.End()

	query, args, err := squirrel.
		Select("id", "user_id", "original_text", "processed_text", "mode", "created_at").
		From("history").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id").
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, tracing.RecordError(span, fmt.Errorf("failed to query history: %w", err))
	}
	defer rows.Close()

	result := make([]*models.HistoryEntry, 0)
	for rows.Next() {
		var (
			e    models.HistoryEntry
			mode string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.OriginalText, &e.ProcessedText, &mode, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.Mode = models.Mode(mode)
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return result, nil
}
