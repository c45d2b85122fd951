package handlers

import (
	"fmt"
	"net/http"
	"or_flow_app_go/db"
	"or_flow_app_go/services"
	"time"

	"github.com/labstack/echo/v4"
)

// DelayReportHandler streams the delay report spreadsheet for a date range.
// Defaults to the last 30 days when no range is given.
func DelayReportHandler(c echo.Context) error {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if v := c.QueryParam("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid from date: expected YYYY-MM-DD")
		}
		from = parsed
	}
	if v := c.QueryParam("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid to date: expected YYYY-MM-DD")
		}
		// Inclusive end date
		to = parsed.AddDate(0, 0, 1)
	}
	if !to.After(from) {
		return echo.NewHTTPError(http.StatusBadRequest, "Date range is empty")
	}

	buf, err := services.GenerateDelayReport(db.DB, from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate report")
	}

	filename := fmt.Sprintf("delay-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
