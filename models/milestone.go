package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Well-known milestone names in OR flow order
const (
	MilestonePatientReady    = "PATIENT_READY"
	MilestoneAnesthesiaStart = "ANESTHESIA_START"
	MilestonePatientAsleep   = "PATIENT_ASLEEP"
	MilestoneProcedureStart  = "PROCEDURE_START"
	MilestoneTimeout         = "TIMEOUT"
	MilestoneProcedureEnd    = "PROCEDURE_END"
	MilestonePatientAwake    = "PATIENT_AWAKE"
	MilestoneWheelsOut       = "WHEELS_OUT"
	MilestoneRoomClean       = "ROOM_CLEAN"
)

// Milestone logging source constants
const (
	MilestoneLoggedByTap   = "tap"
	MilestoneLoggedByVoice = "voice"
)

// Milestone represents a named step in the surgical workflow
type Milestone struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Parent relationship
	CaseID string       `gorm:"type:uuid;not null;index:idx_milestone_case" json:"case_id"`
	Case   SurgicalCase `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	// Milestone details
	Name        string `gorm:"not null" json:"name"`
	DisplayName string `gorm:"not null" json:"display_name"`
	SortOrder   int    `gorm:"not null;default:0" json:"sort_order"`
	Optional    bool   `gorm:"not null;default:false" json:"optional"`

	// Completion tracking
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Skipped     bool       `gorm:"not null;default:false" json:"skipped"`
	UsedBy      string     `json:"used_by,omitempty"` // tap or voice
	LoggedBy    string     `json:"logged_by,omitempty"`
	LoggedByID  *string    `gorm:"type:uuid" json:"logged_by_id,omitempty"`

	// Corrections applied after the fact
	Revisions []MilestoneRevision `gorm:"foreignKey:MilestoneID" json:"revisions,omitempty"`
}

// BeforeCreate hook to generate UUID
func (m *Milestone) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Milestone model
func (Milestone) TableName() string {
	return "milestones"
}

// IsLogged checks if the milestone has a completion timestamp
func (m *Milestone) IsLogged() bool {
	return m.CompletedAt != nil
}

// IsResolved reports whether the milestone counts as done for submission
// gating. A skip alone does not count: a skipped milestone needs revisions
// supplying a real time before the case can be wheeled out.
func (m *Milestone) IsResolved() bool {
	if m.CompletedAt == nil {
		return false
	}
	if m.Skipped && len(m.Revisions) < 2 {
		return false
	}
	return true
}

// MilestoneRevision records a corrected time for a milestone
type MilestoneRevision struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	MilestoneID string    `gorm:"type:uuid;not null;index" json:"milestone_id"`
	RevisedTime time.Time `gorm:"not null" json:"revised_time"`
	RevisedBy   string    `json:"revised_by"`
	RevisedByID *string   `gorm:"type:uuid" json:"revised_by_id,omitempty"`
}

// BeforeCreate hook to generate UUID
func (r *MilestoneRevision) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for MilestoneRevision model
func (MilestoneRevision) TableName() string {
	return "milestone_revisions"
}
