package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Delay type constants
const (
	DelayTypeStart = "START"
	DelayTypeEnd   = "END"
)

// DelayRecord represents a submitted delay reason for a case. Records are
// immutable: once a record of a given type exists for a case, that side's
// delay prompt is never shown again.
type DelayRecord struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CaseID string       `gorm:"type:uuid;not null;index:idx_delay_case_type" json:"case_id"`
	Case   SurgicalCase `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	DelayType        string  `gorm:"not null;index:idx_delay_case_type" json:"delay_type"` // START or END
	ReasonCode       string  `gorm:"not null" json:"reason_code"`
	CustomReasonText *string `gorm:"type:text" json:"custom_reason_text,omitempty"`
	DelayMinutes     float64 `gorm:"not null" json:"delay_minutes"`

	SubmittedBy   string  `json:"submitted_by"`
	SubmittedByID *string `gorm:"type:uuid" json:"submitted_by_id,omitempty"`
}

// BeforeCreate hook to generate UUID
func (d *DelayRecord) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for DelayRecord model
func (DelayRecord) TableName() string {
	return "delay_records"
}

// IsValidDelayType checks if the delay type is valid
func IsValidDelayType(delayType string) bool {
	return delayType == DelayTypeStart || delayType == DelayTypeEnd
}
