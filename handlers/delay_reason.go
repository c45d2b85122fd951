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

type createDelayReasonRequest struct {
	DelayType        string  `json:"delay_type"` // START or END
	ReasonCode       string  `json:"reason_code"`
	CustomReasonText *string `json:"custom_reason_text,omitempty"`
	DelayMinutes     float64 `json:"delay_minutes"`
}

// GetDelayReasonsHandler lists the recorded delay reasons for a case
func GetDelayReasonsHandler(c echo.Context) error {
	records, err := services.GetDelayRecordsByCase(db.DB, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch delay reasons")
	}
	return c.JSON(http.StatusOK, records)
}

// CreateDelayReasonHandler records one delay reason for a case. The record
// is append-only: once a side is recorded its prompt never reappears.
func CreateDelayReasonHandler(c echo.Context) error {
	caseID := c.Param("id")
	user := middleware.GetCurrentUser(c)

	var req createDelayReasonRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.ReasonCode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Reason code is required")
	}

	record := models.DelayRecord{
		CaseID:           caseID,
		DelayType:        req.DelayType,
		ReasonCode:       req.ReasonCode,
		CustomReasonText: req.CustomReasonText,
		DelayMinutes:     req.DelayMinutes,
		SubmittedBy:      user.Name,
		SubmittedByID:    &user.ID,
	}

	if err := services.CreateDelayRecord(db.DB, &record); err != nil {
		if errors.Is(err, services.ErrInvalidDelayType) {
			return echo.NewHTTPError(http.StatusBadRequest, "Delay type must be START or END")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to record delay reason")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionCreate,
		"DelayRecord", record.ID, record.ReasonCode,
		"Delay reason recorded", nil, record)

	broadcast("delay_record", "created", caseID, record)

	return c.JSON(http.StatusCreated, record)
}

// CheckCaseDelayHandler runs the delay evaluator for a case without
// submitting anything, so the client can decide whether to raise the prompt
func CheckCaseDelayHandler(c echo.Context) error {
	caseRecord, err := services.GetCaseByID(db.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrCaseNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Case not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch case")
	}

	prompt, err := services.CheckCaseDelayStatus(db.DB, caseRecord, time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to evaluate delay status")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"delay_prompt": prompt,
	})
}
