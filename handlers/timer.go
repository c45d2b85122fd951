package handlers

import (
	"errors"
	"net/http"
	"or_flow_app_go/db"
	"or_flow_app_go/middleware"
	"or_flow_app_go/models"
	"or_flow_app_go/services"
	"time"

	"github.com/labstack/echo/v4"
)

type createTimerRequest struct {
	Label      string  `json:"label"`
	Type       string  `json:"type"`
	DurationMs int64   `json:"duration_ms"`
	Trigger    *string `json:"trigger,omitempty"`
}

// timerView augments a timer row with its derived countdown state
type timerView struct {
	models.CaseTimer
	RemainingMs    int64 `json:"remaining_ms"`
	DismissEnabled bool  `json:"dismiss_enabled"`
	LongPaused     bool  `json:"long_paused"`
}

// buildTimerView computes the derived fields the client renders
func buildTimerView(timer *models.CaseTimer, milestones []models.Milestone, now time.Time) timerView {
	return timerView{
		CaseTimer:      *timer,
		RemainingMs:    services.RemainingDuration(timer, now),
		DismissEnabled: services.IsDismissEnabled(timer, milestones, now),
		LongPaused:     services.IsLongPaused(timer, now),
	}
}

// GetCaseTimersHandler lists the active timers of a case with derived state
func GetCaseTimersHandler(c echo.Context) error {
	caseID := c.Param("id")
	now := time.Now()

	timers, err := services.GetActiveTimersByCase(db.DB, caseID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch timers")
	}

	milestones, err := services.GetMilestonesByCase(db.DB, caseID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch milestones")
	}

	views := make([]timerView, 0, len(timers))
	for i := range timers {
		views = append(views, buildTimerView(&timers[i], milestones, now))
	}
	return c.JSON(http.StatusOK, views)
}

// CreateTimerHandler starts a new timer on a case
func CreateTimerHandler(c echo.Context) error {
	caseID := c.Param("id")
	user := middleware.GetCurrentUser(c)

	var req createTimerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Label == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Label is required")
	}
	if req.Type != models.TimerTypeStopwatch && req.Trigger == nil && req.DurationMs <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Duration is required")
	}

	timer := models.CaseTimer{
		CaseID:      caseID,
		Label:       req.Label,
		Type:        req.Type,
		DurationMs:  req.DurationMs,
		Trigger:     req.Trigger,
		CreatedBy:   user.Name,
		CreatedByID: &user.ID,
	}

	if err := services.CreateTimer(db.DB, &timer, time.Now()); err != nil {
		if errors.Is(err, services.ErrInvalidTimerType) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid timer type")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create timer")
	}

	broadcast("timer", "created", caseID, timer)

	return c.JSON(http.StatusCreated, timer)
}

// PauseTimerHandler pauses a running timer
func PauseTimerHandler(c echo.Context) error {
	timer, err := services.PauseTimer(db.DB, c.Param("tid"), time.Now())
	if err != nil {
		return timerActionError(err)
	}
	broadcast("timer", "paused", timer.CaseID, timer)
	return c.JSON(http.StatusOK, timer)
}

// ResumeTimerHandler resumes a paused timer
func ResumeTimerHandler(c echo.Context) error {
	timer, err := services.ResumeTimer(db.DB, c.Param("tid"), time.Now())
	if err != nil {
		return timerActionError(err)
	}
	broadcast("timer", "resumed", timer.CaseID, timer)
	return c.JSON(http.StatusOK, timer)
}

// DismissTimerHandler stops a timer whose countdown has elapsed
func DismissTimerHandler(c echo.Context) error {
	timerID := c.Param("tid")
	now := time.Now()

	milestones, err := milestonesForTimer(timerID)
	if err != nil {
		return err
	}

	timer, err := services.DismissTimer(db.DB, timerID, milestones, now)
	if err != nil {
		return timerActionError(err)
	}
	broadcast("timer", "dismissed", timer.CaseID, timer)
	return c.JSON(http.StatusOK, timer)
}

// DeleteTimerHandler removes a timer before it becomes dismissible
func DeleteTimerHandler(c echo.Context) error {
	timerID := c.Param("tid")
	now := time.Now()

	timer, err := services.GetTimerByID(db.DB, timerID)
	if err != nil {
		return timerActionError(err)
	}

	milestones, err := services.GetMilestonesByCase(db.DB, timer.CaseID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch milestones")
	}

	if err := services.DeleteTimer(db.DB, timerID, milestones, now); err != nil {
		return timerActionError(err)
	}
	broadcast("timer", "deleted", timer.CaseID, map[string]string{"id": timerID})
	return c.NoContent(http.StatusNoContent)
}

// PauseAllTimersHandler pauses every running timer on the case
func PauseAllTimersHandler(c echo.Context) error {
	caseID := c.Param("id")
	if err := services.PauseAllTimers(db.DB, caseID, time.Now()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to pause timers")
	}
	broadcast("timer", "paused_all", caseID, nil)
	return c.NoContent(http.StatusNoContent)
}

// ResumeAllTimersHandler resumes every paused timer on the case
func ResumeAllTimersHandler(c echo.Context) error {
	caseID := c.Param("id")
	if err := services.ResumeAllTimers(db.DB, caseID, time.Now()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to resume timers")
	}
	broadcast("timer", "resumed_all", caseID, nil)
	return c.NoContent(http.StatusNoContent)
}

// DismissAllTimersHandler dismisses every dismiss-enabled timer on the case
func DismissAllTimersHandler(c echo.Context) error {
	caseID := c.Param("id")

	milestones, err := services.GetMilestonesByCase(db.DB, caseID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch milestones")
	}

	if err := services.DismissAllTimers(db.DB, caseID, milestones, time.Now()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to dismiss timers")
	}
	broadcast("timer", "dismissed_all", caseID, nil)
	return c.NoContent(http.StatusNoContent)
}

// DeleteAllTimersHandler removes every timer on the case
func DeleteAllTimersHandler(c echo.Context) error {
	caseID := c.Param("id")
	if err := services.DeleteAllTimers(db.DB, caseID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete timers")
	}
	broadcast("timer", "deleted_all", caseID, nil)
	return c.NoContent(http.StatusNoContent)
}

// milestonesForTimer loads the milestone list of the timer's case
func milestonesForTimer(timerID string) ([]models.Milestone, error) {
	timer, err := services.GetTimerByID(db.DB, timerID)
	if err != nil {
		return nil, timerActionError(err)
	}
	milestones, err := services.GetMilestonesByCase(db.DB, timer.CaseID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch milestones")
	}
	return milestones, nil
}

// timerActionError maps service errors onto HTTP responses
func timerActionError(err error) error {
	if errors.Is(err, services.ErrTimerNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Timer not found")
	}
	if errors.Is(err, services.ErrActionNotAllowed) {
		return echo.NewHTTPError(http.StatusConflict, "Action not allowed in the timer's current state")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update timer")
}
