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

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

// TextProcessor rewrites text in the given mode.
type TextProcessor interface {
	Process(ctx context.Context, text string, mode models.Mode) (string, error)
}

// ProcessResult is the outcome of an AI rewrite; Mode is the mode actually used.
type ProcessResult struct {
	Result string
	Mode   models.Mode
}

// AIService runs rewrites through a TextProcessor and records them in the
// history log.
type AIService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	processor   TextProcessor
}

func NewAIService(db *sql.DB, m repomanager.RepositoryManager, p TextProcessor) *AIService {
	return &AIService{db: db, repomanager: m, processor: p}
}

// Process validates text, resolves mode (unknown falls back to the default),
// calls the processor and appends a history entry for userID.
func (s *AIService) Process(ctx context.Context, userID, text, mode string) (*ProcessResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.NewValidationError("Please provide some text to process.")
	}
	m := models.ParseMode(mode)

	result, err := s.processor.Process(ctx, text, m)
	if err != nil {
		return nil, err
	}

	entry := &models.HistoryEntry{
		ID:            uuid.NewString(),
		OriginalText:  text,
		ProcessedText: result,
		Mode:          m,
	}
	if userID != "" {
		entry.UserID = &userID
	}
	if _, err := s.repomanager.History(s.db).Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("error saving history: %w", err)
	}

	return &ProcessResult{Result: result, Mode: m}, nil
}

// History returns userID's most recent rewrites. limit 0 selects
// DefaultHistoryLimit; anything outside 1..MaxHistoryLimit is rejected.
func (s *AIService) History(ctx context.Context, userID string, limit int) ([]*models.HistoryEntry, error) {
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, common.NewValidationError(fmt.Sprintf("limit must be between 1 and %d", MaxHistoryLimit))
	}
	entries, err := s.repomanager.History(s.db).ListByOwner(ctx, userID, uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("error listing history: %w", err)
	}
	return entries, nil
}
