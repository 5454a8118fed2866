package history

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

// Repository is an append-only log of AI transformations.
type Repository interface {
	Append(ctx context.Context, entry *models.HistoryEntry) (*models.HistoryEntry, error)
	ListByOwner(ctx context.Context, userID string, limit uint64) ([]*models.HistoryEntry, error)
}
