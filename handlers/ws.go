package handlers

import (
	"net/http"
	"or_flow_app_go/realtime"

	"github.com/labstack/echo/v4"
)

// WebSocketHandler upgrades the connection and attaches it to the board hub
func WebSocketHandler(c echo.Context) error {
	if Hub == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Realtime updates unavailable")
	}
	realtime.HandleWebSocket(Hub, c.Response(), c.Request())
	return nil
}
