package services

import (
	"or_flow_app_go/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMilestoneTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SurgicalCase{}, &models.Milestone{}, &models.MilestoneRevision{}, &models.DelayRecord{}))
	return db
}

func milestoneTestCase(t *testing.T, db *gorm.DB) *models.SurgicalCase {
	c := &models.SurgicalCase{
		RoomName:      "OR-2",
		ProcedureName: "Cholecystectomy",
		StartTime:     time.Now(),
		EndTime:       time.Now().Add(2 * time.Hour),
		Status:        models.CaseStatusActive,
	}
	require.NoError(t, CreateCase(db, c))
	return c
}

func milestoneByName(t *testing.T, milestones []models.Milestone, name string) *models.Milestone {
	for i := range milestones {
		if milestones[i].Name == name {
			return &milestones[i]
		}
	}
	t.Fatalf("milestone %s not found", name)
	return nil
}

func TestMilestoneLifecycle(t *testing.T) {
	db := setupMilestoneTestDB(t)
	c := milestoneTestCase(t, db)
	userID := "user-1"
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	milestones, err := GetMilestonesByCase(db, c.ID)
	require.NoError(t, err)
	require.Len(t, milestones, 9)

	t.Run("Current Pointer Starts At First", func(t *testing.T) {
		current := CurrentMilestone(milestones)
		require.NotNil(t, current)
		assert.Equal(t, models.MilestonePatientReady, current.Name)
	})

	t.Run("Complete Moves The Pointer", func(t *testing.T) {
		first := milestoneByName(t, milestones, models.MilestonePatientReady)
		_, err := CompleteMilestone(db, first.ID, userID, "Nurse Chapel", models.MilestoneLoggedByTap, now)
		require.NoError(t, err)

		milestones, _ = GetMilestonesByCase(db, c.ID)
		current := CurrentMilestone(milestones)
		require.NotNil(t, current)
		assert.Equal(t, models.MilestoneAnesthesiaStart, current.Name)
	})

	t.Run("Skip Moves The Pointer Too", func(t *testing.T) {
		anesthesia := milestoneByName(t, milestones, models.MilestoneAnesthesiaStart)
		skipped, err := SkipMilestone(db, anesthesia.ID, userID, "Nurse Chapel", now)
		require.NoError(t, err)
		assert.True(t, skipped.Skipped)
		require.NotNil(t, skipped.CompletedAt)

		milestones, _ = GetMilestonesByCase(db, c.ID)
		current := CurrentMilestone(milestones)
		require.NotNil(t, current)
		assert.Equal(t, models.MilestonePatientAsleep, current.Name)
	})

	t.Run("Revise Records The Correction", func(t *testing.T) {
		first := milestoneByName(t, milestones, models.MilestonePatientReady)
		corrected := now.Add(-2 * time.Minute)

		revised, err := ReviseMilestone(db, first.ID, corrected, userID, "Nurse Chapel")
		require.NoError(t, err)
		require.NotNil(t, revised.CompletedAt)
		assert.True(t, revised.CompletedAt.Equal(corrected))
		require.Len(t, revised.Revisions, 1)
		assert.True(t, revised.Revisions[0].RevisedTime.Equal(corrected))
	})

	t.Run("Not Found", func(t *testing.T) {
		_, err := GetMilestoneByID(db, "non-existent")
		assert.ErrorIs(t, err, ErrMilestoneNotFound)
	})
}

func TestCanAdvance(t *testing.T) {
	db := setupMilestoneTestDB(t)
	c := milestoneTestCase(t, db)
	userID := "user-1"
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("First Required Milestone Is Free", func(t *testing.T) {
		milestones, _ := GetMilestonesByCase(db, c.ID)
		allowed, reason := CanAdvance(milestones, false)
		assert.True(t, allowed)
		assert.Empty(t, reason)
	})

	t.Run("Mutation In Flight Blocks", func(t *testing.T) {
		milestones, _ := GetMilestonesByCase(db, c.ID)
		allowed, reason := CanAdvance(milestones, true)
		assert.False(t, allowed)
		assert.Contains(t, reason, "in progress")
	})

	t.Run("Outstanding Anesthesia Pair Blocks Procedure Start", func(t *testing.T) {
		// Advance logs PATIENT_READY, leaving the anesthesia optionals pending
		advanced, err := AdvanceMilestone(db, c.ID, userID, "Nurse Chapel", models.MilestoneLoggedByTap, now)
		require.NoError(t, err)
		assert.Equal(t, models.MilestonePatientReady, advanced.Name)

		_, err = AdvanceMilestone(db, c.ID, userID, "Nurse Chapel", models.MilestoneLoggedByTap, now)
		require.ErrorIs(t, err, ErrAdvanceBlocked)
		assert.Contains(t, err.Error(), "Anesthesia Start")
	})

	t.Run("Resolving The Optionals Unblocks", func(t *testing.T) {
		milestones, _ := GetMilestonesByCase(db, c.ID)
		for _, name := range []string{models.MilestoneAnesthesiaStart, models.MilestonePatientAsleep} {
			m := milestoneByName(t, milestones, name)
			_, err := SkipMilestone(db, m.ID, userID, "Nurse Chapel", now)
			require.NoError(t, err)
		}

		advanced, err := AdvanceMilestone(db, c.ID, userID, "Nurse Chapel", models.MilestoneLoggedByTap, now)
		require.NoError(t, err)
		assert.Equal(t, models.MilestoneProcedureStart, advanced.Name)
	})

	t.Run("Timeout Check Blocks Procedure End", func(t *testing.T) {
		_, err := AdvanceMilestone(db, c.ID, userID, "Nurse Chapel", models.MilestoneLoggedByTap, now)
		require.ErrorIs(t, err, ErrAdvanceBlocked)
		assert.Contains(t, err.Error(), "Timeout")
	})
}

func TestCanWheelOut(t *testing.T) {
	db := setupMilestoneTestDB(t)
	c := milestoneTestCase(t, db)
	userID := "user-1"
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	completeAllExceptWheelsOutPair := func(t *testing.T) []models.Milestone {
		milestones, err := GetMilestonesByCase(db, c.ID)
		require.NoError(t, err)
		for i := range milestones {
			m := &milestones[i]
			if m.Name == models.MilestoneWheelsOut || m.Name == models.MilestoneRoomClean {
				continue
			}
			if m.CompletedAt == nil && !m.Skipped {
				_, err := CompleteMilestone(db, m.ID, userID, "Nurse Chapel", models.MilestoneLoggedByTap, now)
				require.NoError(t, err)
			}
		}
		milestones, err = GetMilestonesByCase(db, c.ID)
		require.NoError(t, err)
		return milestones
	}

	t.Run("Unlogged Milestone Blocks", func(t *testing.T) {
		milestones, _ := GetMilestonesByCase(db, c.ID)
		allowed, reason := CanWheelOut(milestones)
		assert.False(t, allowed)
		assert.Contains(t, reason, "Patient Ready")
	})

	t.Run("Wheels-Out Pair Is Exempt", func(t *testing.T) {
		milestones := completeAllExceptWheelsOutPair(t)
		allowed, reason := CanWheelOut(milestones)
		assert.True(t, allowed, reason)
	})

	t.Run("Skipped Milestone Needs Two Revisions", func(t *testing.T) {
		milestones, _ := GetMilestonesByCase(db, c.ID)
		timeout := milestoneByName(t, milestones, models.MilestoneTimeout)

		_, err := SkipMilestone(db, timeout.ID, userID, "Nurse Chapel", now)
		require.NoError(t, err)

		milestones, _ = GetMilestonesByCase(db, c.ID)
		allowed, reason := CanWheelOut(milestones)
		assert.False(t, allowed)
		assert.Contains(t, reason, "Timeout")

		// One revision is not enough
		_, err = ReviseMilestone(db, timeout.ID, now.Add(time.Minute), userID, "Nurse Chapel")
		require.NoError(t, err)
		milestones, _ = GetMilestonesByCase(db, c.ID)
		allowed, _ = CanWheelOut(milestones)
		assert.False(t, allowed)

		// The second revision resolves the skip
		_, err = ReviseMilestone(db, timeout.ID, now.Add(2*time.Minute), userID, "Nurse Chapel")
		require.NoError(t, err)
		milestones, _ = GetMilestonesByCase(db, c.ID)
		allowed, _ = CanWheelOut(milestones)
		assert.True(t, allowed)
	})
}
