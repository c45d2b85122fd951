package services

import (
	"errors"
	"or_flow_app_go/models"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// Note-related errors
var (
	ErrEmptyNote = errors.New("note text is empty")
)

// notePolicy strips all markup from note text. Voice transcripts come back
// from the recognizer as plain text, but manual notes can be pasted from
// anywhere.
var notePolicy = bluemonday.StrictPolicy()

// CreateNote sanitizes and stores a note on a case
func CreateNote(db *gorm.DB, note *models.CaseNote) error {
	note.Text = strings.TrimSpace(notePolicy.Sanitize(note.Text))
	if note.Text == "" {
		return ErrEmptyNote
	}
	if note.Source == "" {
		note.Source = models.NoteSourceManual
	}
	return db.Create(note).Error
}

// GetNotesByCase retrieves all notes for a case, newest first
func GetNotesByCase(db *gorm.DB, caseID string) ([]models.CaseNote, error) {
	var notes []models.CaseNote
	err := db.Where("case_id = ?", caseID).
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}
