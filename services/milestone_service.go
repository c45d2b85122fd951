package services

import (
	"errors"
	"fmt"
	"or_flow_app_go/models"
	"time"

	"gorm.io/gorm"
)

// Milestone-related errors
var (
	ErrMilestoneNotFound = errors.New("milestone not found")
	ErrAdvanceBlocked    = errors.New("milestone advance blocked")
)

// GetMilestonesByCase retrieves all milestones for a case ordered by sort_order
func GetMilestonesByCase(db *gorm.DB, caseID string) ([]models.Milestone, error) {
	var milestones []models.Milestone
	err := db.Where("case_id = ?", caseID).
		Preload("Revisions").
		Order("sort_order ASC").
		Find(&milestones).Error
	return milestones, err
}

// GetMilestoneByID retrieves a milestone by ID
func GetMilestoneByID(db *gorm.DB, milestoneID string) (*models.Milestone, error) {
	var milestone models.Milestone
	err := db.Preload("Revisions").
		First(&milestone, "id = ?", milestoneID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMilestoneNotFound
		}
		return nil, err
	}
	return &milestone, nil
}

// CurrentMilestone returns the first milestone in sequence order that has
// neither been logged nor skipped, or nil when the flow is finished
func CurrentMilestone(milestones []models.Milestone) *models.Milestone {
	for i := range milestones {
		if milestones[i].CompletedAt == nil && !milestones[i].Skipped {
			return &milestones[i]
		}
	}
	return nil
}

// CompleteMilestone logs a milestone at the given time
func CompleteMilestone(db *gorm.DB, milestoneID, userID, userName, usedBy string, at time.Time) (*models.Milestone, error) {
	milestone, err := GetMilestoneByID(db, milestoneID)
	if err != nil {
		return nil, err
	}

	err = db.Model(milestone).Updates(map[string]interface{}{
		"completed_at": at,
		"skipped":      false,
		"used_by":      usedBy,
		"logged_by":    userName,
		"logged_by_id": userID,
	}).Error
	if err != nil {
		return nil, err
	}
	return GetMilestoneByID(db, milestoneID)
}

// SkipMilestone marks a milestone as skipped. The log time is a placeholder:
// a skipped milestone still needs revisions with a real time before the case
// can be wheeled out.
func SkipMilestone(db *gorm.DB, milestoneID, userID, userName string, at time.Time) (*models.Milestone, error) {
	milestone, err := GetMilestoneByID(db, milestoneID)
	if err != nil {
		return nil, err
	}

	err = db.Model(milestone).Updates(map[string]interface{}{
		"completed_at": at,
		"skipped":      true,
		"logged_by":    userName,
		"logged_by_id": userID,
	}).Error
	if err != nil {
		return nil, err
	}
	return GetMilestoneByID(db, milestoneID)
}

// ReviseMilestone appends a corrected time to a milestone and moves its
// logged time to the revised value
func ReviseMilestone(db *gorm.DB, milestoneID string, revisedTime time.Time, userID, userName string) (*models.Milestone, error) {
	milestone, err := GetMilestoneByID(db, milestoneID)
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		revision := models.MilestoneRevision{
			MilestoneID: milestoneID,
			RevisedTime: revisedTime,
			RevisedBy:   userName,
			RevisedByID: &userID,
		}
		if err := tx.Create(&revision).Error; err != nil {
			return err
		}
		return tx.Model(milestone).Update("completed_at", revisedTime).Error
	})
	if err != nil {
		return nil, err
	}
	return GetMilestoneByID(db, milestoneID)
}

// NextRequiredMilestone returns the first required milestone that has neither
// been logged nor skipped, or nil when the required flow is finished
func NextRequiredMilestone(milestones []models.Milestone) *models.Milestone {
	for i := range milestones {
		m := &milestones[i]
		if !m.Optional && m.CompletedAt == nil && !m.Skipped {
			return m
		}
	}
	return nil
}

// CanAdvance determines whether the "next milestone" action is allowed.
// Advancing is blocked while a mutation is already in flight and while an
// optional milestone earlier in the sequence is still outstanding: the
// anesthesia pair at the patient-ready stage, the timeout check at the
// procedure-start stage. Returns the blocking reason when not allowed.
func CanAdvance(milestones []models.Milestone, mutationInFlight bool) (bool, string) {
	if mutationInFlight {
		return false, "another milestone update is already in progress"
	}

	target := NextRequiredMilestone(milestones)
	if target == nil {
		return false, "all milestones are already logged"
	}

	// An outstanding optional milestone earlier in the sequence blocks the
	// required one from being logged over it
	for i := range milestones {
		m := &milestones[i]
		if m.SortOrder >= target.SortOrder {
			break
		}
		if m.Optional && m.CompletedAt == nil && !m.Skipped {
			return false, fmt.Sprintf("log or skip %s before advancing", m.DisplayName)
		}
	}

	return true, ""
}

// AdvanceMilestone logs the current milestone if the progression guard allows
// it. When blocked, ErrAdvanceBlocked is returned with the reason and no
// write happens.
func AdvanceMilestone(db *gorm.DB, caseID, userID, userName, usedBy string, at time.Time) (*models.Milestone, error) {
	milestones, err := GetMilestonesByCase(db, caseID)
	if err != nil {
		return nil, err
	}

	allowed, reason := CanAdvance(milestones, false)
	if !allowed {
		return nil, fmt.Errorf("%w: %s", ErrAdvanceBlocked, reason)
	}

	target := NextRequiredMilestone(milestones)
	return CompleteMilestone(db, target.ID, userID, userName, usedBy, at)
}

// CanWheelOut reports whether the case may be wheeled out: every milestone
// other than WHEELS_OUT and ROOM_CLEAN must be logged, and any skipped
// milestone must carry enough revisions to supply a real time
func CanWheelOut(milestones []models.Milestone) (bool, string) {
	for i := range milestones {
		m := &milestones[i]
		if m.Name == models.MilestoneWheelsOut || m.Name == models.MilestoneRoomClean {
			continue
		}
		if m.CompletedAt == nil {
			return false, fmt.Sprintf("%s has not been logged", m.DisplayName)
		}
		if m.Skipped && len(m.Revisions) < 2 {
			return false, fmt.Sprintf("%s was skipped and needs a corrected time", m.DisplayName)
		}
	}
	return true, ""
}
