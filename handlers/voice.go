package handlers

import (
	"errors"
	"net/http"
	"or_flow_app_go/db"
	"or_flow_app_go/services"
	"or_flow_app_go/services/voice"
	"time"

	"github.com/labstack/echo/v4"
)

type voiceIntentRequest struct {
	TimerID string `json:"timer_id"`
	Action  string `json:"action"` // pause, resume, dismiss or delete
}

// voiceIntentResponse tells the recognizer how to announce the outcome
type voiceIntentResponse struct {
	Status string      `json:"status"` // ok or rejected
	Reason string      `json:"reason,omitempty"`
	Timer  interface{} `json:"timer,omitempty"`
}

// VoiceIntentHandler applies a recognized timer command. An action that is not
// legal in the timer's current state is rejected without mutating anything, so
// the recognizer can speak a negative confirmation.
func VoiceIntentHandler(c echo.Context) error {
	var req voiceIntentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	action, ok := voice.ParseAction(req.Action)
	if !ok {
		return c.JSON(http.StatusOK, voiceIntentResponse{
			Status: "rejected",
			Reason: "Unrecognized timer action",
		})
	}
	if req.TimerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Timer ID is required")
	}

	cmd := voice.Command{TimerID: req.TimerID, Action: action}

	milestones, err := milestonesForTimer(req.TimerID)
	if err != nil {
		return err
	}

	timer, err := services.ApplyVoiceAction(db.DB, cmd, milestones, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrActionNotAllowed) {
			return c.JSON(http.StatusOK, voiceIntentResponse{
				Status: "rejected",
				Reason: "Action not allowed in the timer's current state",
			})
		}
		if errors.Is(err, services.ErrTimerNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Timer not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to apply voice command")
	}

	if VoiceBus != nil {
		VoiceBus.Publish(cmd)
	}
	broadcast("timer", "voice_"+string(action), timer.CaseID, timer)

	return c.JSON(http.StatusOK, voiceIntentResponse{Status: "ok", Timer: timer})
}
