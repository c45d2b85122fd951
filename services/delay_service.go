package services

import (
	"errors"
	"or_flow_app_go/models"
	"time"

	"gorm.io/gorm"
)

// DelayToleranceMs is the fixed tolerance applied when comparing actual
// against scheduled times. The literal formula `actual + tolerance > scheduled`
// flags on-time starts and early arrivals under the tolerance as delayed;
// kept as-is for compatibility with the tracker client.
const DelayToleranceMs = 5000

// Delay prompt type constants
const (
	DelayPromptStart = "START"
	DelayPromptEnd   = "END"
	DelayPromptBoth  = "BOTH"
)

// Delay-related errors
var (
	ErrInvalidDelayType = errors.New("invalid delay type")
)

// DelayPrompt tells the caller a late-reason prompt is due before its action
// may proceed. Late-by values are signed minutes, unrounded.
type DelayPrompt struct {
	Type        string  `json:"type"` // START, END or BOTH
	StartLateBy float64 `json:"start_late_by,omitempty"`
	EndLateBy   float64 `json:"end_late_by,omitempty"`
}

// GetDelayRecordsByCase retrieves all delay records for a case in submission order
func GetDelayRecordsByCase(db *gorm.DB, caseID string) ([]models.DelayRecord, error) {
	var records []models.DelayRecord
	err := db.Where("case_id = ?", caseID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

// CreateDelayRecord persists a delay reason. Records are append-only.
func CreateDelayRecord(db *gorm.DB, record *models.DelayRecord) error {
	if !models.IsValidDelayType(record.DelayType) {
		return ErrInvalidDelayType
	}
	return db.Create(record).Error
}

// CheckCaseDelayStatus decides whether a start/end delay occurred for the
// case and whether the late-reason prompt must be shown. Returns nil when
// nothing needs prompting. The delay record list is always queried fresh so
// a just-submitted reason is observed on re-entry: each (case, side) pair is
// prompted at most once.
func CheckCaseDelayStatus(db *gorm.DB, caseDetail *models.SurgicalCase, now time.Time) (*DelayPrompt, error) {
	if caseDetail == nil {
		return nil, nil
	}

	records, err := GetDelayRecordsByCase(db, caseDetail.ID)
	if err != nil {
		return nil, err
	}

	isStartDelayAdded := false
	isEndDelayAdded := false
	for _, r := range records {
		switch r.DelayType {
		case models.DelayTypeStart:
			isStartDelayAdded = true
		case models.DelayTypeEnd:
			isEndDelayAdded = true
		}
	}

	// Both sides already resolved: never re-prompt
	if isStartDelayAdded && isEndDelayAdded {
		return nil, nil
	}

	startMs := caseDetail.StartTime.UnixMilli()
	endMs := caseDetail.EndTime.UnixMilli()

	// A case with no observed start has nothing to evaluate on the start
	// side; malformed or missing times suppress prompting rather than fail.
	isStartDelay := false
	startLateBy := 0.0
	if caseDetail.ActualStartTime != nil && !caseDetail.ActualStartTime.IsZero() && !caseDetail.StartTime.IsZero() {
		actualStartMs := caseDetail.ActualStartTime.UnixMilli()
		isStartDelay = actualStartMs+DelayToleranceMs > startMs
		startLateBy = float64(actualStartMs-startMs) / 60000
	}

	// The end side falls back to "now" while the case is still open
	isEndDelay := false
	endLateBy := 0.0
	if !caseDetail.EndTime.IsZero() {
		actualEndMs := now.UnixMilli()
		if caseDetail.ActualEndTime != nil && !caseDetail.ActualEndTime.IsZero() {
			actualEndMs = caseDetail.ActualEndTime.UnixMilli()
		}
		isEndDelay = actualEndMs+DelayToleranceMs > endMs
		endLateBy = float64(actualEndMs-endMs) / 60000
	}

	// Decision table: first matching branch wins, one prompt per occurrence
	switch {
	case isStartDelay && isEndDelay && !isStartDelayAdded && !isEndDelayAdded:
		return &DelayPrompt{Type: DelayPromptBoth, StartLateBy: startLateBy, EndLateBy: endLateBy}, nil
	case isStartDelay && !isStartDelayAdded:
		return &DelayPrompt{Type: DelayPromptStart, StartLateBy: startLateBy}, nil
	case isEndDelay && !isEndDelayAdded:
		return &DelayPrompt{Type: DelayPromptEnd, EndLateBy: endLateBy}, nil
	default:
		return nil, nil
	}
}
