package services

import (
	"errors"
	"fmt"
	"or_flow_app_go/models"
	"time"

	"gorm.io/gorm"
)

// Case-related errors
var (
	ErrCaseNotFound     = errors.New("case not found")
	ErrCaseNotActive    = errors.New("case is not active")
	ErrWheelsOutBlocked = errors.New("wheels out blocked")
)

// defaultMilestone describes one entry of the standard OR flow
type defaultMilestone struct {
	name     string
	display  string
	optional bool
}

// The standard milestone sequence seeded onto every new case
var defaultMilestones = []defaultMilestone{
	{models.MilestonePatientReady, "Patient Ready", false},
	{models.MilestoneAnesthesiaStart, "Anesthesia Start", true},
	{models.MilestonePatientAsleep, "Patient Asleep", true},
	{models.MilestoneProcedureStart, "Procedure Start", false},
	{models.MilestoneTimeout, "Timeout", true},
	{models.MilestoneProcedureEnd, "Procedure End", false},
	{models.MilestonePatientAwake, "Patient Awake", true},
	{models.MilestoneWheelsOut, "Wheels Out", false},
	{models.MilestoneRoomClean, "Room Clean", false},
}

// GenerateCaseNumber generates a unique case number
// Format: OR-{YEAR}-{SEQUENCE}, e.g. OR-2026-00042
func GenerateCaseNumber(db *gorm.DB) (string, error) {
	currentYear := time.Now().Year()

	var maxCase models.SurgicalCase
	err := db.Where("case_number LIKE ?", fmt.Sprintf("OR-%d-%%", currentYear)).
		Order("case_number DESC").
		First(&maxCase).Error

	sequence := 1
	if err == nil {
		var parsedSeq int
		_, scanErr := fmt.Sscanf(maxCase.CaseNumber, fmt.Sprintf("OR-%d-%%d", currentYear), &parsedSeq)
		if scanErr == nil {
			sequence = parsedSeq + 1
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to query max case number: %w", err)
	}

	return fmt.Sprintf("OR-%d-%05d", currentYear, sequence), nil
}

// CreateCase persists a new planned case and seeds its milestone sequence
func CreateCase(db *gorm.DB, caseRecord *models.SurgicalCase) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if caseRecord.CaseNumber == "" {
			number, err := GenerateCaseNumber(tx)
			if err != nil {
				return err
			}
			caseRecord.CaseNumber = number
		}
		if caseRecord.Status == "" {
			caseRecord.Status = models.CaseStatusPlanned
		}

		if err := tx.Create(caseRecord).Error; err != nil {
			return err
		}
		return CreateDefaultMilestones(tx, caseRecord)
	})
}

// CreateDefaultMilestones creates the standard OR milestone sequence for a case
func CreateDefaultMilestones(db *gorm.DB, caseRecord *models.SurgicalCase) error {
	for i, dm := range defaultMilestones {
		milestone := models.Milestone{
			CaseID:      caseRecord.ID,
			Name:        dm.name,
			DisplayName: dm.display,
			SortOrder:   i + 1,
			Optional:    dm.optional,
		}
		if err := db.Create(&milestone).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetCaseByID retrieves a case with its milestones in sequence order
func GetCaseByID(db *gorm.DB, caseID string) (*models.SurgicalCase, error) {
	var caseRecord models.SurgicalCase
	err := db.Preload("Milestones", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Preload("Milestones.Revisions").
		First(&caseRecord, "id = ?", caseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}
	return &caseRecord, nil
}

// GetCasesByRoom retrieves cases for a room on a given day, earliest first
func GetCasesByRoom(db *gorm.DB, roomName string, day time.Time) ([]models.SurgicalCase, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var cases []models.SurgicalCase
	err := db.Where("room_name = ? AND start_time >= ? AND start_time < ?", roomName, dayStart, dayEnd).
		Order("start_time ASC").
		Find(&cases).Error
	return cases, err
}

// StartCase records the observed start of a case and activates it
func StartCase(db *gorm.DB, caseID string, now time.Time) (*models.SurgicalCase, error) {
	caseRecord, err := GetCaseByID(db, caseID)
	if err != nil {
		return nil, err
	}
	if caseRecord.Status != models.CaseStatusPlanned && caseRecord.Status != models.CaseStatusSuspended {
		return nil, ErrCaseNotActive
	}

	err = db.Model(caseRecord).Updates(map[string]interface{}{
		"status":            models.CaseStatusActive,
		"actual_start_time": now,
	}).Error
	if err != nil {
		return nil, err
	}
	return GetCaseByID(db, caseID)
}

// SuspendCase places an active case on hold
func SuspendCase(db *gorm.DB, caseID string) error {
	return db.Model(&models.SurgicalCase{}).
		Where("id = ?", caseID).
		Update("status", models.CaseStatusSuspended).Error
}

// MarkNoShow flags a planned case whose patient never arrived
func MarkNoShow(db *gorm.DB, caseID string) error {
	return db.Model(&models.SurgicalCase{}).
		Where("id = ?", caseID).
		Update("status", models.CaseStatusNoShow).Error
}

// WheelsOut submits the case. The submission is gated twice: every milestone
// outside the wheels-out pair must be resolved, and any unrecorded start/end
// delay must have its reason collected first. When a delay prompt is due it
// is returned and the submission does not happen; the caller collects the
// reasons and calls WheelsOut again.
func WheelsOut(db *gorm.DB, caseID, userID, userName string, now time.Time) (*DelayPrompt, error) {
	caseRecord, err := GetCaseByID(db, caseID)
	if err != nil {
		return nil, err
	}
	if !caseRecord.IsActive() {
		return nil, ErrCaseNotActive
	}

	allowed, reason := CanWheelOut(caseRecord.Milestones)
	if !allowed {
		return nil, fmt.Errorf("%w: %s", ErrWheelsOutBlocked, reason)
	}

	prompt, err := CheckCaseDelayStatus(db, caseRecord, now)
	if err != nil {
		return nil, err
	}
	if prompt != nil {
		// Suspend the submission until the delay reasons are recorded
		return prompt, nil
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// Log the wheels-out milestone itself
		for i := range caseRecord.Milestones {
			m := &caseRecord.Milestones[i]
			if m.Name == models.MilestoneWheelsOut && m.CompletedAt == nil {
				if _, err := CompleteMilestone(tx, m.ID, userID, userName, models.MilestoneLoggedByTap, now); err != nil {
					return err
				}
			}
		}

		updates := map[string]interface{}{
			"status":       models.CaseStatusSubmitted,
			"submitted_at": now,
			"submitted_by": userID,
		}
		if caseRecord.ActualEndTime == nil {
			updates["actual_end_time"] = now
		}
		return tx.Model(caseRecord).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return nil, nil
}
