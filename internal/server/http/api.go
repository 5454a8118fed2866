// Package http exposes the JSON REST API over gin.
package http

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	VerifyToken(token string) (string, error)
}

type NoteService interface {
	List(ctx context.Context, userID string) ([]*models.Note, error)
	Create(ctx context.Context, userID, title, content string) (*models.Note, error)
	Get(ctx context.Context, userID, noteID string) (*models.Note, error)
	Update(ctx context.Context, userID, noteID string, upd models.NoteUpdate) (*models.Note, error)
	Delete(ctx context.Context, userID, noteID string) error
}

type AIService interface {
	Process(ctx context.Context, userID, text, mode string) (*services.ProcessResult, error)
	History(ctx context.Context, userID string, limit int) ([]*models.HistoryEntry, error)
}

type ExportService interface {
	Export(ctx context.Context, userID, noteID, format string) (*services.Export, error)
}
