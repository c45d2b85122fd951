package handlers

import (
	"errors"
	"net/http"
	"or_flow_app_go/db"
	"or_flow_app_go/middleware"
	"or_flow_app_go/models"
	"or_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type createNoteRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"` // voice or manual
}

// GetCaseNotesHandler lists the notes of a case, newest first
func GetCaseNotesHandler(c echo.Context) error {
	notes, err := services.GetNotesByCase(db.DB, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch notes")
	}
	return c.JSON(http.StatusOK, notes)
}

// CreateNoteHandler attaches a note to a case
func CreateNoteHandler(c echo.Context) error {
	caseID := c.Param("id")
	user := middleware.GetCurrentUser(c)

	var req createNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	note := models.CaseNote{
		CaseID:   caseID,
		Text:     req.Text,
		Source:   req.Source,
		Author:   user.Name,
		AuthorID: &user.ID,
	}

	if err := services.CreateNote(db.DB, &note); err != nil {
		if errors.Is(err, services.ErrEmptyNote) {
			return echo.NewHTTPError(http.StatusBadRequest, "Note text is required")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create note")
	}

	broadcast("note", "created", caseID, note)

	return c.JSON(http.StatusCreated, note)
}
