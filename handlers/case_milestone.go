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

type logMilestoneRequest struct {
	UsedBy string     `json:"used_by"` // tap or voice
	At     *time.Time `json:"at,omitempty"`
}

type reviseMilestoneRequest struct {
	RevisedTime time.Time `json:"revised_time"`
}

// GetCaseMilestonesHandler returns the milestones of a case in sequence
// order along with the current-milestone pointer
func GetCaseMilestonesHandler(c echo.Context) error {
	caseID := c.Param("id")

	milestones, err := services.GetMilestonesByCase(db.DB, caseID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch milestones")
	}

	var currentID string
	if current := services.CurrentMilestone(milestones); current != nil {
		currentID = current.ID
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"milestones":           milestones,
		"current_milestone_id": currentID,
	})
}

// CompleteMilestoneHandler logs one specific milestone
func CompleteMilestoneHandler(c echo.Context) error {
	milestoneID := c.Param("mid")
	user := middleware.GetCurrentUser(c)

	var req logMilestoneRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	usedBy := req.UsedBy
	if usedBy == "" {
		usedBy = models.MilestoneLoggedByTap
	}
	at := time.Now()
	if req.At != nil {
		at = *req.At
	}

	milestone, err := services.CompleteMilestone(db.DB, milestoneID, user.ID, user.Name, usedBy, at)
	if err != nil {
		if errors.Is(err, services.ErrMilestoneNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Milestone not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update milestone")
	}

	broadcast("milestone", "completed", milestone.CaseID, milestone)

	return c.JSON(http.StatusOK, milestone)
}

// SkipMilestoneHandler marks a milestone as skipped
func SkipMilestoneHandler(c echo.Context) error {
	milestoneID := c.Param("mid")
	user := middleware.GetCurrentUser(c)

	milestone, err := services.SkipMilestone(db.DB, milestoneID, user.ID, user.Name, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrMilestoneNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Milestone not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update milestone")
	}

	broadcast("milestone", "skipped", milestone.CaseID, milestone)

	return c.JSON(http.StatusOK, milestone)
}

// ReviseMilestoneHandler appends a corrected time to a milestone
func ReviseMilestoneHandler(c echo.Context) error {
	milestoneID := c.Param("mid")
	user := middleware.GetCurrentUser(c)

	var req reviseMilestoneRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.RevisedTime.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "Revised time is required")
	}

	milestone, err := services.ReviseMilestone(db.DB, milestoneID, req.RevisedTime, user.ID, user.Name)
	if err != nil {
		if errors.Is(err, services.ErrMilestoneNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Milestone not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to revise milestone")
	}

	broadcast("milestone", "revised", milestone.CaseID, milestone)

	return c.JSON(http.StatusOK, milestone)
}

// AdvanceMilestoneHandler logs the next required milestone if the
// progression guard allows it. A blocked advance returns 422 with the
// explanatory reason and performs no write.
func AdvanceMilestoneHandler(c echo.Context) error {
	caseID := c.Param("id")
	user := middleware.GetCurrentUser(c)

	var req logMilestoneRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	usedBy := req.UsedBy
	if usedBy == "" {
		usedBy = models.MilestoneLoggedByTap
	}

	milestone, err := services.AdvanceMilestone(db.DB, caseID, user.ID, user.Name, usedBy, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrAdvanceBlocked) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to advance milestone")
	}

	broadcast("milestone", "completed", milestone.CaseID, milestone)

	return c.JSON(http.StatusOK, milestone)
}
