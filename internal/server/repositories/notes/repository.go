package notes

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

// Repository stores notes. Every read or write of an existing note is keyed
// by the (noteID, userID) pair; a note owned by someone else behaves exactly
// like a missing one and yields common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.Note, error)
	GetByOwner(ctx context.Context, noteID, userID string) (*models.Note, error)
	UpdateByOwner(ctx context.Context, noteID, userID string, upd models.NoteUpdate) (*models.Note, error)
	DeleteByOwner(ctx context.Context, noteID, userID string) error
}
