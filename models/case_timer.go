package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Timer type constants
const (
	TimerTypeTimer     = "TIMER"
	TimerTypeAlarm     = "ALARM"
	TimerTypeStopwatch = "STOPWATCH"
)

// Timer status constants
const (
	TimerStatusRunning = "RUNNING"
	TimerStatusPaused  = "PAUSED"
	TimerStatusStopped = "STOPPED"
)

// CaseTimer is a countdown unit attached to an active case. Timers and alarms
// count down toward an absolute end time; stopwatches count up. An alarm may
// instead be bound to a milestone trigger name and fires when that milestone
// is reached.
type CaseTimer struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CaseID string       `gorm:"type:uuid;not null;index:idx_timer_case_status" json:"case_id"`
	Case   SurgicalCase `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	Label  string `gorm:"not null" json:"label"`
	Type   string `gorm:"not null;default:TIMER" json:"type"`                                 // TIMER, ALARM, STOPWATCH
	Status string `gorm:"not null;default:RUNNING;index:idx_timer_case_status" json:"status"` // RUNNING, PAUSED, STOPPED

	// Duration bookkeeping. CompletedDurationMs is meaningful while paused or
	// stopped; while running it is derived from EndTime.
	DurationMs          int64 `gorm:"not null;default:0" json:"duration_ms"`
	CompletedDurationMs int64 `gorm:"not null;default:0" json:"completed_duration_ms"`

	// Wall-clock markers
	StartTime   time.Time  `gorm:"not null" json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"` // absolute deadline while running
	PauseTime   *time.Time `json:"pause_time,omitempty"`
	ResumeTime  *time.Time `json:"resume_time,omitempty"`
	DismissTime *time.Time `json:"dismiss_time,omitempty"`

	// Alarms only: milestone name that fires the alarm instead of a deadline
	Trigger *string `json:"trigger,omitempty"`

	// Set once the long-pause advisory alert has gone out for the current pause
	LongPauseAlerted bool `gorm:"not null;default:false" json:"long_pause_alerted"`

	CreatedBy   string  `json:"created_by,omitempty"`
	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`
}

// BeforeCreate hook to generate UUID
func (t *CaseTimer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for CaseTimer model
func (CaseTimer) TableName() string {
	return "case_timers"
}

func (t *CaseTimer) IsRunning() bool {
	return t.Status == TimerStatusRunning
}

func (t *CaseTimer) IsPaused() bool {
	return t.Status == TimerStatusPaused
}

func (t *CaseTimer) IsStopped() bool {
	return t.Status == TimerStatusStopped
}

// IsTriggerAlarm reports whether the timer fires on a milestone instead of a deadline
func (t *CaseTimer) IsTriggerAlarm() bool {
	return t.Type == TimerTypeAlarm && t.Trigger != nil && *t.Trigger != ""
}

// IsValidTimerType checks if the timer type is valid
func IsValidTimerType(timerType string) bool {
	switch timerType {
	case TimerTypeTimer, TimerTypeAlarm, TimerTypeStopwatch:
		return true
	}
	return false
}
