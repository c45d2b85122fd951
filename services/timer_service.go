package services

import (
	"errors"
	"or_flow_app_go/models"
	"or_flow_app_go/services/voice"
	"time"

	"gorm.io/gorm"
)

// LongPauseThreshold is how long a timer may sit paused before the advisory
// long-pause flag is raised. Advisory only: persisted status is unchanged.
const LongPauseThreshold = 10 * time.Minute

// Timer-related errors
var (
	ErrTimerNotFound    = errors.New("timer not found")
	ErrActionNotAllowed = errors.New("timer action not allowed in current state")
	ErrInvalidTimerType = errors.New("invalid timer type")
)

// CreateTimer starts a new countdown for a case. Timers and fixed-deadline
// alarms get an absolute end time computed from the duration; trigger alarms
// and stopwatches run without one.
func CreateTimer(db *gorm.DB, timer *models.CaseTimer, now time.Time) error {
	if !models.IsValidTimerType(timer.Type) {
		return ErrInvalidTimerType
	}

	timer.Status = models.TimerStatusRunning
	timer.StartTime = now
	timer.CompletedDurationMs = 0

	if timer.Type != models.TimerTypeStopwatch && !timer.IsTriggerAlarm() {
		end := now.Add(time.Duration(timer.DurationMs) * time.Millisecond)
		timer.EndTime = &end
	}

	return db.Create(timer).Error
}

// GetTimerByID retrieves a timer by ID
func GetTimerByID(db *gorm.DB, timerID string) (*models.CaseTimer, error) {
	var timer models.CaseTimer
	err := db.First(&timer, "id = ?", timerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimerNotFound
		}
		return nil, err
	}
	return &timer, nil
}

// GetActiveTimersByCase retrieves the case's timers that have not been
// dismissed, oldest first
func GetActiveTimersByCase(db *gorm.DB, caseID string) ([]models.CaseTimer, error) {
	var timers []models.CaseTimer
	err := db.Where("case_id = ? AND status <> ?", caseID, models.TimerStatusStopped).
		Order("created_at ASC").
		Find(&timers).Error
	return timers, err
}

// CompletedDuration returns elapsed milliseconds at the given instant.
// While running with a deadline the value is derived from the absolute end
// time, so repeated reads never accumulate drift. While paused or stopped the
// frozen bookkeeping value is returned.
func CompletedDuration(timer *models.CaseTimer, now time.Time) int64 {
	if !timer.IsRunning() {
		return timer.CompletedDurationMs
	}

	if timer.EndTime != nil {
		remaining := timer.EndTime.Sub(now).Milliseconds()
		if remaining < 0 {
			remaining = 0
		}
		completed := timer.DurationMs - remaining
		if completed < 0 {
			completed = 0
		}
		return completed
	}

	// Stopwatches and trigger alarms count up from the last resume point
	since := timer.StartTime
	if timer.ResumeTime != nil {
		since = *timer.ResumeTime
	}
	return timer.CompletedDurationMs + now.Sub(since).Milliseconds()
}

// RemainingDuration returns milliseconds left on the countdown, never negative
func RemainingDuration(timer *models.CaseTimer, now time.Time) int64 {
	remaining := timer.DurationMs - CompletedDuration(timer, now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsLongPaused reports whether the timer has sat paused beyond the threshold
func IsLongPaused(timer *models.CaseTimer, now time.Time) bool {
	if !timer.IsPaused() || timer.PauseTime == nil {
		return false
	}
	return now.Sub(*timer.PauseTime) > LongPauseThreshold
}

// IsDismissEnabled reports whether the timer may be dismissed. A countdown
// becomes dismissible once it reaches zero while not paused. A trigger alarm
// becomes dismissible when its trigger milestone has been logged or skipped,
// or when the case's current milestone has already moved past it; this keeps
// an alarm for a skipped-past milestone from staying silently active forever.
// Once a countdown has elapsed the flag only clears via dismiss or delete.
func IsDismissEnabled(timer *models.CaseTimer, milestones []models.Milestone, now time.Time) bool {
	if timer.IsStopped() {
		return false
	}

	if timer.IsTriggerAlarm() {
		return triggerReached(*timer.Trigger, milestones)
	}

	// Stopwatches count up and may be stopped at any point
	if timer.Type == models.TimerTypeStopwatch {
		return true
	}

	// RemainingDuration is frozen above zero while paused and sticks at zero
	// once the deadline passes, so this condition is monotonic on its own:
	// a pause after the countdown elapsed keeps the timer dismissible.
	return RemainingDuration(timer, now) <= 0
}

// triggerReached checks whether the named milestone has been passed
func triggerReached(trigger string, milestones []models.Milestone) bool {
	var target *models.Milestone
	for i := range milestones {
		if milestones[i].Name == trigger {
			target = &milestones[i]
			break
		}
	}
	if target == nil {
		return false
	}

	if target.CompletedAt != nil || target.Skipped {
		return true
	}

	// Current pointer already past the trigger's position in sequence order
	current := CurrentMilestone(milestones)
	if current == nil {
		return true
	}
	return current.SortOrder > target.SortOrder
}

// PauseTimer freezes a running timer. The elapsed duration at the moment of
// pause is preserved so a later resume restores the exact remaining countdown.
func PauseTimer(db *gorm.DB, timerID string, now time.Time) (*models.CaseTimer, error) {
	timer, err := GetTimerByID(db, timerID)
	if err != nil {
		return nil, err
	}
	if !timer.IsRunning() {
		return nil, ErrActionNotAllowed
	}

	completed := CompletedDuration(timer, now)

	err = db.Model(timer).Updates(map[string]interface{}{
		"status":                models.TimerStatusPaused,
		"pause_time":            now,
		"resume_time":           nil,
		"completed_duration_ms": completed,
		"long_pause_alerted":    false,
	}).Error
	if err != nil {
		return nil, err
	}
	return GetTimerByID(db, timerID)
}

// ResumeTimer restarts a paused timer. The deadline shifts forward by the
// pause interval so the remaining countdown is preserved exactly.
func ResumeTimer(db *gorm.DB, timerID string, now time.Time) (*models.CaseTimer, error) {
	timer, err := GetTimerByID(db, timerID)
	if err != nil {
		return nil, err
	}
	if !timer.IsPaused() {
		return nil, ErrActionNotAllowed
	}

	updates := map[string]interface{}{
		"status":             models.TimerStatusRunning,
		"resume_time":        now,
		"pause_time":         nil,
		"long_pause_alerted": false,
	}

	if timer.EndTime != nil && timer.PauseTime != nil {
		newEnd := timer.EndTime.Add(now.Sub(*timer.PauseTime))
		updates["end_time"] = newEnd
	}

	if err := db.Model(timer).Updates(updates).Error; err != nil {
		return nil, err
	}
	return GetTimerByID(db, timerID)
}

// DismissTimer stops a timer whose countdown has elapsed. Dismissing before
// the timer is dismiss-enabled is rejected.
func DismissTimer(db *gorm.DB, timerID string, milestones []models.Milestone, now time.Time) (*models.CaseTimer, error) {
	timer, err := GetTimerByID(db, timerID)
	if err != nil {
		return nil, err
	}
	if !IsDismissEnabled(timer, milestones, now) {
		return nil, ErrActionNotAllowed
	}

	err = db.Model(timer).Updates(map[string]interface{}{
		"status":                models.TimerStatusStopped,
		"dismiss_time":          now,
		"completed_duration_ms": CompletedDuration(timer, now),
	}).Error
	if err != nil {
		return nil, err
	}
	return GetTimerByID(db, timerID)
}

// DeleteTimer removes a timer outright. Allowed any time before the timer
// becomes dismiss-enabled; after that, dismiss is the only way out.
func DeleteTimer(db *gorm.DB, timerID string, milestones []models.Milestone, now time.Time) error {
	timer, err := GetTimerByID(db, timerID)
	if err != nil {
		return err
	}
	if IsDismissEnabled(timer, milestones, now) {
		return ErrActionNotAllowed
	}
	return db.Delete(timer).Error
}

// PauseAllTimers pauses every running timer on the case
func PauseAllTimers(db *gorm.DB, caseID string, now time.Time) error {
	timers, err := GetActiveTimersByCase(db, caseID)
	if err != nil {
		return err
	}
	for _, t := range timers {
		if !t.IsRunning() {
			continue
		}
		if _, err := PauseTimer(db, t.ID, now); err != nil {
			return err
		}
	}
	return nil
}

// ResumeAllTimers resumes every paused timer on the case
func ResumeAllTimers(db *gorm.DB, caseID string, now time.Time) error {
	timers, err := GetActiveTimersByCase(db, caseID)
	if err != nil {
		return err
	}
	for _, t := range timers {
		if !t.IsPaused() {
			continue
		}
		if _, err := ResumeTimer(db, t.ID, now); err != nil {
			return err
		}
	}
	return nil
}

// DismissAllTimers dismisses every dismiss-enabled timer on the case
func DismissAllTimers(db *gorm.DB, caseID string, milestones []models.Milestone, now time.Time) error {
	timers, err := GetActiveTimersByCase(db, caseID)
	if err != nil {
		return err
	}
	for _, t := range timers {
		if !IsDismissEnabled(&t, milestones, now) {
			continue
		}
		if _, err := DismissTimer(db, t.ID, milestones, now); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAllTimers removes every timer on the case
func DeleteAllTimers(db *gorm.DB, caseID string) error {
	return db.Where("case_id = ?", caseID).Delete(&models.CaseTimer{}).Error
}

// ApplyVoiceAction applies a recognized voice command to a timer. Actions
// that are not legal in the timer's current state return ErrActionNotAllowed
// so the caller can report a negative voice status without mutating anything.
func ApplyVoiceAction(db *gorm.DB, cmd voice.Command, milestones []models.Milestone, now time.Time) (*models.CaseTimer, error) {
	switch cmd.Action {
	case voice.ActionPause:
		return PauseTimer(db, cmd.TimerID, now)
	case voice.ActionResume:
		return ResumeTimer(db, cmd.TimerID, now)
	case voice.ActionDismiss:
		return DismissTimer(db, cmd.TimerID, milestones, now)
	case voice.ActionDelete:
		timer, err := GetTimerByID(db, cmd.TimerID)
		if err != nil {
			return nil, err
		}
		if err := DeleteTimer(db, cmd.TimerID, milestones, now); err != nil {
			return nil, err
		}
		return timer, nil
	default:
		return nil, ErrActionNotAllowed
	}
}
