// Package repotest provides in-memory repositories with the same ownership
// and ordering semantics as the PostgreSQL ones, for use in tests.
package repotest

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/history"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/users"
)

// Manager implements repomanager.RepositoryManager over maps. The same
// repositories are returned regardless of the DBTX passed in. Set the *Err
// fields to make the corresponding repository fail.
type Manager struct {
	mu sync.Mutex

	users   map[string]*models.User
	notes   map[string]*models.Note
	history []*models.HistoryEntry

	clock time.Time

	UsersErr   error
	NotesErr   error
	HistoryErr error
}

func NewManager() *Manager {
	return &Manager{
		users: make(map[string]*models.User),
		notes: make(map[string]*models.Note),
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *Manager) Users(dbx.DBTX) users.Repository     { return userRepo{m} }
func (m *Manager) Notes(dbx.DBTX) notes.Repository     { return noteRepo{m} }
func (m *Manager) History(dbx.DBTX) history.Repository { return historyRepo{m} }

// HistoryEntries returns a snapshot of every appended entry in append order.
func (m *Manager) HistoryEntries() []models.HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.HistoryEntry, len(m.history))
	for i, e := range m.history {
		out[i] = *e
	}
	return out
}

// tick returns a strictly increasing timestamp so ordering is deterministic.
func (m *Manager) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

type userRepo struct{ m *Manager }

func (r userRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.UsersErr != nil {
		return nil, r.m.UsersErr
	}
	for _, existing := range r.m.users {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.CreatedAt = r.m.tick()
	cp := *u
	r.m.users[u.ID] = &cp
	return u, nil
}

func (r userRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.UsersErr != nil {
		return nil, r.m.UsersErr
	}
	for _, u := range r.m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r userRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.UsersErr != nil {
		return nil, r.m.UsersErr
	}
	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

type noteRepo struct{ m *Manager }

func (r noteRepo) Create(_ context.Context, n *models.Note) (*models.Note, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.NotesErr != nil {
		return nil, r.m.NotesErr
	}
	n.CreatedAt = r.m.tick()
	n.UpdatedAt = n.CreatedAt
	cp := *n
	r.m.notes[n.ID] = &cp
	return n, nil
}

func (r noteRepo) ListByOwner(_ context.Context, userID string) ([]*models.Note, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.NotesErr != nil {
		return nil, r.m.NotesErr
	}
	out := make([]*models.Note, 0)
	for _, n := range r.m.notes {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r noteRepo) owned(noteID, userID string) (*models.Note, error) {
	if r.m.NotesErr != nil {
		return nil, r.m.NotesErr
	}
	n, ok := r.m.notes[noteID]
	if !ok || n.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return n, nil
}

func (r noteRepo) GetByOwner(_ context.Context, noteID, userID string) (*models.Note, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n, err := r.owned(noteID, userID)
	if err != nil {
		return nil, err
	}
	cp := *n
	return &cp, nil
}

func (r noteRepo) UpdateByOwner(_ context.Context, noteID, userID string, upd models.NoteUpdate) (*models.Note, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n, err := r.owned(noteID, userID)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		n.Title = *upd.Title
	}
	if upd.Content != nil {
		n.Content = *upd.Content
	}
	n.UpdatedAt = r.m.tick()
	cp := *n
	return &cp, nil
}

func (r noteRepo) DeleteByOwner(_ context.Context, noteID, userID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, err := r.owned(noteID, userID); err != nil {
		return err
	}
	delete(r.m.notes, noteID)
	return nil
}

type historyRepo struct{ m *Manager }

func (r historyRepo) Append(_ context.Context, e *models.HistoryEntry) (*models.HistoryEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.HistoryErr != nil {
		return nil, r.m.HistoryErr
	}
	e.CreatedAt = r.m.tick()
	cp := *e
	r.m.history = append(r.m.history, &cp)
	return e, nil
}

func (r historyRepo) ListByOwner(_ context.Context, userID string, limit uint64) ([]*models.HistoryEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.HistoryErr != nil {
		return nil, r.m.HistoryErr
	}
	out := make([]*models.HistoryEntry, 0)
	for i := len(r.m.history) - 1; i >= 0 && uint64(len(out)) < limit; i-- {
		e := r.m.history[i]
		if e.UserID != nil && *e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}
