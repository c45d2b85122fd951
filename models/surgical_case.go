package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case status constants
const (
	CaseStatusPlanned   = "PLANNED"
	CaseStatusActive    = "ACTIVE"
	CaseStatusSubmitted = "SUBMITTED"
	CaseStatusSuspended = "SUSPENDED"
	CaseStatusNoShow    = "NO_SHOW"
)

// SurgicalCase represents one surgical case tracked through the OR
type SurgicalCase struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Case identification
	CaseNumber    string `gorm:"not null;uniqueIndex" json:"case_number"`
	RoomName      string `gorm:"not null;index:idx_case_room_start" json:"room_name"`
	ProcedureName string `gorm:"not null" json:"procedure_name"`
	SurgeonName   string `json:"surgeon_name"`
	PatientLabel  string `json:"patient_label"` // Display label only, no PHI beyond what the board shows

	// Scheduled window vs observed reality
	StartTime       time.Time  `gorm:"not null;index:idx_case_room_start" json:"start_time"`
	EndTime         time.Time  `gorm:"not null" json:"end_time"`
	ActualStartTime *time.Time `json:"actual_start_time,omitempty"`
	ActualEndTime   *time.Time `json:"actual_end_time,omitempty"`

	// First case of the day in its room gets stricter delay reporting
	IsFirstCase bool `gorm:"not null;default:false" json:"is_first_case"`

	// Status and lifecycle
	Status           string     `gorm:"not null;default:PLANNED;index" json:"status"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`
	SubmittedBy      *string    `gorm:"type:uuid" json:"submitted_by,omitempty"`
	StartAlertSentAt *time.Time `json:"start_alert_sent_at,omitempty"`

	// Relationships
	Milestones   []Milestone   `gorm:"foreignKey:CaseID" json:"milestones,omitempty"`
	Timers       []CaseTimer   `gorm:"foreignKey:CaseID" json:"timers,omitempty"`
	Notes        []CaseNote    `gorm:"foreignKey:CaseID" json:"notes,omitempty"`
	DelayRecords []DelayRecord `gorm:"foreignKey:CaseID" json:"delay_records,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *SurgicalCase) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for SurgicalCase model
func (SurgicalCase) TableName() string {
	return "surgical_cases"
}

// IsPlanned checks if the case has not yet wheeled in
func (c *SurgicalCase) IsPlanned() bool {
	return c.Status == CaseStatusPlanned
}

// IsActive checks if the case is in progress
func (c *SurgicalCase) IsActive() bool {
	return c.Status == CaseStatusActive
}

// IsSubmitted checks if the case has been wheeled out and submitted
func (c *SurgicalCase) IsSubmitted() bool {
	return c.Status == CaseStatusSubmitted
}

// IsValidCaseStatus checks if the status is valid
func IsValidCaseStatus(status string) bool {
	validStatuses := []string{
		CaseStatusPlanned,
		CaseStatusActive,
		CaseStatusSubmitted,
		CaseStatusSuspended,
		CaseStatusNoShow,
	}
	for _, s := range validStatuses {
		if s == status {
			return true
		}
	}
	return false
}
