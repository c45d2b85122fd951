package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note source constants
const (
	NoteSourceVoice  = "voice"
	NoteSourceManual = "manual"
)

// CaseNote is a free-text note attached to a case, typically a voice
// transcript. Text is sanitized before storage.
type CaseNote struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CaseID string       `gorm:"type:uuid;not null;index" json:"case_id"`
	Case   SurgicalCase `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	Text     string  `gorm:"type:text;not null" json:"text"`
	Source   string  `gorm:"not null;default:manual" json:"source"` // voice or manual
	Author   string  `json:"author,omitempty"`
	AuthorID *string `gorm:"type:uuid" json:"author_id,omitempty"`
}

// BeforeCreate hook to generate UUID
func (n *CaseNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for CaseNote model
func (CaseNote) TableName() string {
	return "case_notes"
}
