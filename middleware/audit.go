package middleware

import (
	"or_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// GetAuditContext builds an audit context from the current request
func GetAuditContext(c echo.Context) services.AuditContext {
	ctx := services.AuditContext{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}

	if user := GetCurrentUser(c); user != nil {
		ctx.UserID = user.ID
		ctx.UserName = user.Name
		ctx.UserRole = user.Role
	}

	return ctx
}
