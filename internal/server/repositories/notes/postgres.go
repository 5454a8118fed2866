// Package notes provides the PostgreSQL-backed, ownership-scoped note store.
package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/tracing"
)

var noteColumns = []string{"id", "user_id", "title", "content", "created_at", "updated_at"}

// PostgresRepository implements note storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts note and fills its timestamps from the database.
func (r *PostgresRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	ctx, span := tracing.StartSpan(ctx, "notes.Create")
	defer span.End()

	query := `
		INSERT INTO notes (id, user_id, title, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, note.ID, note.UserID, note.Title, note.Content).
		Scan(&note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return nil, tracing.RecordError(span, fmt.Errorf("db error: %w", err))
	}
	return note, nil
}

// ListByOwner returns userID's notes, most recently updated first. The
// result is never nil.
func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Note, error) {
	ctx, span := tracing.StartSpan(ctx, "notes.ListByOwner")
	defer span.End()

	query, args, err := squirrel.
		Select(noteColumns...).
		From("notes").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("updated_at DESC", "id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, tracing.RecordError(span, fmt.Errorf("failed to query notes: %w", err))
	}
	defer rows.Close()

	result := make([]*models.Note, 0)
	for rows.Next() {
		var note models.Note
		if err := rows.Scan(&note.ID, &note.UserID, &note.Title, &note.Content, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		result = append(result, &note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}
	return result, nil
}

// GetByOwner fetches a note only if userID owns it.
func (r *PostgresRepository) GetByOwner(ctx context.Context, noteID, userID string) (*models.Note, error) {
	ctx, span := tracing.StartSpan(ctx, "notes.GetByOwner")
	defer span.End()

	query := `
		SELECT id, user_id, title, content, created_at, updated_at
		FROM notes
		WHERE id = $1 AND user_id = $2
	`
	return scanNote(r.db.QueryRowContext(ctx, query, noteID, userID))
}

// UpdateByOwner applies upd and bumps updated_at in one statement filtered
// by owner, so there is no window between the ownership check and the write.
func (r *PostgresRepository) UpdateByOwner(ctx context.Context, noteID, userID string, upd models.NoteUpdate) (*models.Note, error) {
	ctx, span := tracing.StartSpan(ctx, "notes.UpdateByOwner")
	defer span.End()

	builder := squirrel.
		Update("notes").
		Set("updated_at", squirrel.Expr("NOW()"))
	if upd.Title != nil {
		builder = builder.Set("title", *upd.Title)
	}
	if upd.Content != nil {
		builder = builder.Set("content", *upd.Content)
	}

	query, args, err := builder.
		Where(squirrel.Eq{"id": noteID, "user_id": userID}).
		Suffix("RETURNING id, user_id, title, content, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	return scanNote(r.db.QueryRowContext(ctx, query, args...))
}

// DeleteByOwner removes a note only if userID owns it.
func (r *PostgresRepository) DeleteByOwner(ctx context.Context, noteID, userID string) error {
	ctx, span := tracing.StartSpan(ctx, "notes.DeleteByOwner")
	defer span.End()

	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, noteID, userID)
	if err != nil {
		return tracing.RecordError(span, fmt.Errorf("db error: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 0:
		return common.ErrorNotFound
	case 1:
		return nil
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func scanNote(row *sql.Row) (*models.Note, error) {
	note := &models.Note{}
	err := row.Scan(&note.ID, &note.UserID, &note.Title, &note.Content, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return note, nil
}
