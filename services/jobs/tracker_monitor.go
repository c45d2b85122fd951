package jobs

import (
	"log"
	"or_flow_app_go/config"
	"or_flow_app_go/models"
	"or_flow_app_go/services"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// StartScheduler starts the background tracker sweep, running once a minute
func StartScheduler(database *gorm.DB, cfg *config.Config) {
	c := cron.New()

	_, err := c.AddFunc("* * * * *", func() {
		RunTrackerSweep(database, cfg, time.Now())
	})

	if err != nil {
		log.Fatalf("[CRON] Failed to schedule tracker sweep: %v", err)
	}

	c.Start()
	log.Println("[CRON] Tracker monitor scheduler started")
}

// RunTrackerSweep checks for forgotten paused timers and planned cases past
// their scheduled start, sending one alert per occurrence
func RunTrackerSweep(database *gorm.DB, cfg *config.Config, now time.Time) {
	sweepLongPausedTimers(database, cfg, now)
	sweepOverdueCases(database, cfg, now)
}

func sweepLongPausedTimers(database *gorm.DB, cfg *config.Config, now time.Time) {
	if cfg.ChargeNurseEmail == "" {
		return
	}

	cutoff := now.Add(-services.LongPauseThreshold)

	var timers []models.CaseTimer
	err := database.Preload("Case").
		Where("status = ? AND pause_time IS NOT NULL AND pause_time < ? AND long_pause_alerted = ?",
			models.TimerStatusPaused, cutoff, false).
		Find(&timers).Error
	if err != nil {
		log.Printf("[JOB] Error fetching long-paused timers: %v", err)
		return
	}

	for _, t := range timers {
		pausedFor := now.Sub(*t.PauseTime)
		alert := services.BuildLongPauseAlert(cfg.ChargeNurseEmail, t.Label, t.Case.CaseNumber, pausedFor, cfg.AppURL)
		if err := services.SendAlert(cfg, alert); err != nil {
			log.Printf("[JOB] Failed to send long-pause alert for timer %s: %v", t.ID, err)
			continue
		}

		database.Model(&t).Update("long_pause_alerted", true)
		log.Printf("[JOB] Sent long-pause alert for timer %s (case %s)", t.ID, t.Case.CaseNumber)
	}
}

func sweepOverdueCases(database *gorm.DB, cfg *config.Config, now time.Time) {
	if cfg.ChargeNurseEmail == "" {
		return
	}

	// Apply the same tolerance the delay evaluator uses
	cutoff := now.Add(-time.Duration(services.DelayToleranceMs) * time.Millisecond)

	var cases []models.SurgicalCase
	err := database.
		Where("status = ? AND start_time < ? AND actual_start_time IS NULL AND start_alert_sent_at IS NULL",
			models.CaseStatusPlanned, cutoff).
		Find(&cases).Error
	if err != nil {
		log.Printf("[JOB] Error fetching overdue cases: %v", err)
		return
	}

	for _, c := range cases {
		lateBy := now.Sub(c.StartTime)
		alert := services.BuildStartDelayAlert(cfg.ChargeNurseEmail, c.CaseNumber, c.RoomName, lateBy, cfg.AppURL)
		if err := services.SendAlert(cfg, alert); err != nil {
			log.Printf("[JOB] Failed to send start-delay alert for case %s: %v", c.CaseNumber, err)
			continue
		}

		database.Model(&c).Update("start_alert_sent_at", now)
		log.Printf("[JOB] Sent start-delay alert for case %s (%s)", c.CaseNumber, c.RoomName)
	}
}
