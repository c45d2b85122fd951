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

type createCaseRequest struct {
	RoomName      string    `json:"room_name"`
	ProcedureName string    `json:"procedure_name"`
	SurgeonName   string    `json:"surgeon_name"`
	PatientLabel  string    `json:"patient_label"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	IsFirstCase   bool      `json:"is_first_case"`
}

// GetCasesHandler lists cases, optionally filtered by room and day
func GetCasesHandler(c echo.Context) error {
	roomName := c.QueryParam("room")
	dayParam := c.QueryParam("day")

	if roomName != "" {
		day := time.Now()
		if dayParam != "" {
			parsed, err := time.Parse("2006-01-02", dayParam)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "Invalid day format: expected YYYY-MM-DD")
			}
			day = parsed
		}

		cases, err := services.GetCasesByRoom(db.DB, roomName, day)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch cases")
		}
		return c.JSON(http.StatusOK, cases)
	}

	var cases []models.SurgicalCase
	if err := db.DB.Order("start_time ASC").Find(&cases).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch cases")
	}
	return c.JSON(http.StatusOK, cases)
}

// GetCaseHandler returns one case with its milestones
func GetCaseHandler(c echo.Context) error {
	caseRecord, err := services.GetCaseByID(db.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrCaseNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Case not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch case")
	}
	return c.JSON(http.StatusOK, caseRecord)
}

// CreateCaseHandler creates a planned case with the default milestone sequence
func CreateCaseHandler(c echo.Context) error {
	var req createCaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.RoomName == "" || req.ProcedureName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Room and procedure are required")
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() || !req.EndTime.After(req.StartTime) {
		return echo.NewHTTPError(http.StatusBadRequest, "Scheduled window is invalid")
	}

	caseRecord := models.SurgicalCase{
		RoomName:      req.RoomName,
		ProcedureName: req.ProcedureName,
		SurgeonName:   req.SurgeonName,
		PatientLabel:  req.PatientLabel,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		IsFirstCase:   req.IsFirstCase,
	}

	if err := services.CreateCase(db.DB, &caseRecord); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create case")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionCreate,
		"SurgicalCase", caseRecord.ID, caseRecord.CaseNumber,
		"Case created", nil, caseRecord)

	broadcast("case", "created", caseRecord.ID, caseRecord)

	return c.JSON(http.StatusCreated, caseRecord)
}

// StartCaseHandler records the observed start of a case
func StartCaseHandler(c echo.Context) error {
	caseRecord, err := services.StartCase(db.DB, c.Param("id"), time.Now())
	if err != nil {
		if errors.Is(err, services.ErrCaseNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Case not found")
		}
		if errors.Is(err, services.ErrCaseNotActive) {
			return echo.NewHTTPError(http.StatusConflict, "Case cannot be started in its current status")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to start case")
	}

	broadcast("case", "started", caseRecord.ID, caseRecord)

	return c.JSON(http.StatusOK, caseRecord)
}

// SuspendCaseHandler places a case on hold
func SuspendCaseHandler(c echo.Context) error {
	caseID := c.Param("id")
	if err := services.SuspendCase(db.DB, caseID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to suspend case")
	}
	broadcast("case", "suspended", caseID, nil)
	return c.NoContent(http.StatusNoContent)
}

// NoShowCaseHandler marks a planned case as a no-show
func NoShowCaseHandler(c echo.Context) error {
	caseID := c.Param("id")
	if err := services.MarkNoShow(db.DB, caseID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update case")
	}
	broadcast("case", "no_show", caseID, nil)
	return c.NoContent(http.StatusNoContent)
}

// WheelsOutHandler submits the case. If an unrecorded delay is detected the
// handler responds 409 with the prompt payload; the client collects the delay
// reasons and calls again.
func WheelsOutHandler(c echo.Context) error {
	caseID := c.Param("id")
	user := middleware.GetCurrentUser(c)

	prompt, err := services.WheelsOut(db.DB, caseID, user.ID, user.Name, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrCaseNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Case not found")
		}
		if errors.Is(err, services.ErrCaseNotActive) {
			return echo.NewHTTPError(http.StatusConflict, "Case is not active")
		}
		if errors.Is(err, services.ErrWheelsOutBlocked) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to submit case")
	}

	if prompt != nil {
		// Submission suspended until the delay reasons are recorded
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"delay_prompt": prompt,
		})
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionSubmit,
		"SurgicalCase", caseID, "", "Case wheeled out and submitted", nil, nil)

	broadcast("case", "submitted", caseID, nil)

	return c.NoContent(http.StatusNoContent)
}
