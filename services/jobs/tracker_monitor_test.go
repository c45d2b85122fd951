package jobs

import (
	"or_flow_app_go/config"
	"or_flow_app_go/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupJobsTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SurgicalCase{}, &models.CaseTimer{}))
	return db
}

func jobsTestConfig() *config.Config {
	return &config.Config{
		AlertTestMode:    true,
		ChargeNurseEmail: "charge@hospital.test",
		AppURL:           "https://tracker.hospital.test",
	}
}

func TestSweepLongPausedTimers(t *testing.T) {
	db := setupJobsTestDB(t)
	cfg := jobsTestConfig()
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	c := &models.SurgicalCase{
		CaseNumber: "OR-2026-00001", RoomName: "OR-1", ProcedureName: "Appendectomy",
		StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour),
		Status: models.CaseStatusActive,
	}
	require.NoError(t, db.Create(c).Error)

	longPause := now.Add(-15 * time.Minute)
	shortPause := now.Add(-5 * time.Minute)

	forgotten := &models.CaseTimer{
		CaseID: c.ID, Label: "Tourniquet", Type: models.TimerTypeTimer,
		Status: models.TimerStatusPaused, StartTime: now.Add(-time.Hour), PauseTime: &longPause,
	}
	recent := &models.CaseTimer{
		CaseID: c.ID, Label: "Irrigation", Type: models.TimerTypeTimer,
		Status: models.TimerStatusPaused, StartTime: now.Add(-time.Hour), PauseTime: &shortPause,
	}
	require.NoError(t, db.Create(forgotten).Error)
	require.NoError(t, db.Create(recent).Error)

	RunTrackerSweep(db, cfg, now)

	var after models.CaseTimer
	require.NoError(t, db.First(&after, "id = ?", forgotten.ID).Error)
	assert.True(t, after.LongPauseAlerted)

	after = models.CaseTimer{}
	require.NoError(t, db.First(&after, "id = ?", recent.ID).Error)
	assert.False(t, after.LongPauseAlerted)

	// A second sweep does not alert the same pause again
	RunTrackerSweep(db, cfg, now.Add(time.Minute))
	after = models.CaseTimer{}
	require.NoError(t, db.First(&after, "id = ?", forgotten.ID).Error)
	assert.True(t, after.LongPauseAlerted)
}

func TestSweepOverdueCases(t *testing.T) {
	db := setupJobsTestDB(t)
	cfg := jobsTestConfig()
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	overdue := &models.SurgicalCase{
		CaseNumber: "OR-2026-00001", RoomName: "OR-1", ProcedureName: "Appendectomy",
		StartTime: now.Add(-20 * time.Minute), EndTime: now.Add(time.Hour),
		Status: models.CaseStatusPlanned,
	}
	actualStart := now.Add(-10 * time.Minute)
	started := &models.SurgicalCase{
		CaseNumber: "OR-2026-00002", RoomName: "OR-2", ProcedureName: "Hernia repair",
		StartTime: now.Add(-20 * time.Minute), EndTime: now.Add(time.Hour),
		Status: models.CaseStatusActive, ActualStartTime: &actualStart,
	}
	upcoming := &models.SurgicalCase{
		CaseNumber: "OR-2026-00003", RoomName: "OR-3", ProcedureName: "Arthroscopy",
		StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour),
		Status: models.CaseStatusPlanned,
	}
	require.NoError(t, db.Create(overdue).Error)
	require.NoError(t, db.Create(started).Error)
	require.NoError(t, db.Create(upcoming).Error)

	RunTrackerSweep(db, cfg, now)

	var after models.SurgicalCase
	require.NoError(t, db.First(&after, "id = ?", overdue.ID).Error)
	assert.NotNil(t, after.StartAlertSentAt)

	after = models.SurgicalCase{}
	require.NoError(t, db.First(&after, "id = ?", started.ID).Error)
	assert.Nil(t, after.StartAlertSentAt)

	after = models.SurgicalCase{}
	require.NoError(t, db.First(&after, "id = ?", upcoming.ID).Error)
	assert.Nil(t, after.StartAlertSentAt)

	// One alert per case
	RunTrackerSweep(db, cfg, now.Add(time.Minute))
	var count int64
	db.Model(&models.SurgicalCase{}).Where("start_alert_sent_at IS NOT NULL").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSweepSkipsWithoutRecipient(t *testing.T) {
	db := setupJobsTestDB(t)
	cfg := &config.Config{AlertTestMode: true}
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	overdue := &models.SurgicalCase{
		CaseNumber: "OR-2026-00001", RoomName: "OR-1", ProcedureName: "Appendectomy",
		StartTime: now.Add(-20 * time.Minute), EndTime: now.Add(time.Hour),
		Status: models.CaseStatusPlanned,
	}
	require.NoError(t, db.Create(overdue).Error)

	RunTrackerSweep(db, cfg, now)

	var after models.SurgicalCase
	require.NoError(t, db.First(&after, "id = ?", overdue.ID).Error)
	assert.Nil(t, after.StartAlertSentAt)
}
