package http

import (
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// noteRequest is shared by create and update; absent fields stay nil.
type noteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type processRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

type exportRequest struct {
	Format string `json:"format"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sessionResponse struct {
	userResponse
	Token string `json:"token"`
}

type noteResponse struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type processResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
	Mode    string `json:"mode"`
}

type historyResponse struct {
	ID            string    `json:"id"`
	OriginalText  string    `json:"originalText"`
	ProcessedText string    `json:"processedText"`
	Mode          string    `json:"mode"`
	CreatedAt     time.Time `json:"createdAt"`
}

type exportResponse struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	Format    string    `json:"format"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func toUser(u *models.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toSession(s *services.Session) sessionResponse {
	return sessionResponse{userResponse: toUser(s.User), Token: s.Token}
}

func toNote(n *models.Note) noteResponse {
	return noteResponse{
		ID:        n.ID,
		User:      n.UserID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func toNotes(ns []*models.Note) []noteResponse {
	out := make([]noteResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, toNote(n))
	}
	return out
}

func toHistory(es []*models.HistoryEntry) []historyResponse {
	out := make([]historyResponse, 0, len(es))
	for _, e := range es {
		out = append(out, historyResponse{
			ID:            e.ID,
			OriginalText:  e.OriginalText,
			ProcessedText: e.ProcessedText,
			Mode:          string(e.Mode),
			CreatedAt:     e.CreatedAt,
		})
	}
	return out
}
