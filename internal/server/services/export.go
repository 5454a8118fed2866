package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"
)

// ExportURLValidity is how long a presigned export link stays usable.
const ExportURLValidity = 15 * time.Minute

const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// ObjectStore is the subset of object storage used by exports.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Export describes an uploaded note rendering.
type Export struct {
	URL       string
	Key       string
	Format    string
	ExpiresAt time.Time
}

// ExportService renders notes and uploads them to object storage.
type ExportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	md          goldmark.Markdown
	now         func() time.Time
}

func NewExportService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore) *ExportService {
	return &ExportService{
		db:          db,
		repomanager: m,
		store:       store,
		md:          goldmark.New(),
		now:         time.Now,
	}
}

// ExportStorageKey builds a unique key for a user's export.
func ExportStorageKey(userID, ext string, d time.Time) string {
	return fmt.Sprintf("exports/%s/%d/%02d/%02d/%v.%s", userID, d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

// Export renders the owner's note in format ("markdown" when empty), uploads
// it and returns a presigned download link.
func (s *ExportService) Export(ctx context.Context, userID, noteID, format string) (*Export, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" || format == "md" {
		format = FormatMarkdown
	}
	if format != FormatMarkdown && format != FormatHTML {
		return nil, common.NewValidationError("Unsupported export format")
	}

	if !isUUID(noteID) {
		return nil, common.ErrorNotFound
	}
	note, err := s.repomanager.Notes(s.db).GetByOwner(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}

	src := renderMarkdown(note)
	body, contentType, ext := src, "text/markdown; charset=utf-8", "md"
	if format == FormatHTML {
		body, err = s.renderHTML(note.Title, src)
		if err != nil {
			return nil, fmt.Errorf("render html: %w", err)
		}
		contentType, ext = "text/html; charset=utf-8", "html"
	}

	now := s.now()
	key := ExportStorageKey(userID, ext, now)
	if err := s.store.Put(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}
	url, err := s.store.PresignGet(ctx, key, ExportURLValidity)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	return &Export{URL: url, Key: key, Format: format, ExpiresAt: now.Add(ExportURLValidity)}, nil
}

func renderMarkdown(n *models.Note) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n\n", n.Title)
	b.WriteString(n.Content)
	if !strings.HasSuffix(n.Content, "\n") {
		b.WriteByte('\n')
	}
	return b.Bytes()
}

func (s *ExportService) renderHTML(title string, src []byte) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", html.EscapeString(title))
	if err := s.md.Convert(src, &b); err != nil {
		return nil, err
	}
	b.WriteString("</body>\n</html>\n")
	return b.Bytes(), nil
}
