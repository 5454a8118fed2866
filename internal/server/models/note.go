package models

import "time"

// DefaultNoteTitle replaces an empty or blank title.
const DefaultNoteTitle = "Untitled Note"

type Note struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteUpdate carries the fields of a partial update; nil means "leave as is".
type NoteUpdate struct {
	Title   *string
	Content *string
}
