package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// NoteService implements owner-scoped note CRUD. A note that is missing and
// a note that belongs to someone else are both reported as
// common.ErrorNotFound.
type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager) *NoteService {
	return &NoteService{db: db, repomanager: m}
}

func (s *NoteService) List(ctx context.Context, userID string) ([]*models.Note, error) {
	notes, err := s.repomanager.Notes(s.db).ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	return notes, nil
}

// Create stores a new note. A blank title is replaced by models.DefaultNoteTitle.
func (s *NoteService) Create(ctx context.Context, userID, title, content string) (*models.Note, error) {
	note := &models.Note{
		ID:      uuid.NewString(),
		UserID:  userID,
		Title:   normalizeTitle(title),
		Content: content,
	}
	n, err := s.repomanager.Notes(s.db).Create(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("error creating note: %w", err)
	}
	return n, nil
}

func (s *NoteService) Get(ctx context.Context, userID, noteID string) (*models.Note, error) {
	if !isUUID(noteID) {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Notes(s.db).GetByOwner(ctx, noteID, userID)
}

// Update applies a partial update. Supplying a blank title resets it to
// models.DefaultNoteTitle.
func (s *NoteService) Update(ctx context.Context, userID, noteID string, upd models.NoteUpdate) (*models.Note, error) {
	if !isUUID(noteID) {
		return nil, common.ErrorNotFound
	}
	if upd.Title != nil {
		t := normalizeTitle(*upd.Title)
		upd.Title = &t
	}
	return s.repomanager.Notes(s.db).UpdateByOwner(ctx, noteID, userID, upd)
}

func (s *NoteService) Delete(ctx context.Context, userID, noteID string) error {
	if !isUUID(noteID) {
		return common.ErrorNotFound
	}
	return s.repomanager.Notes(s.db).DeleteByOwner(ctx, noteID, userID)
}

func normalizeTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return models.DefaultNoteTitle
	}
	return title
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
