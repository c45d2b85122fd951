package handlers

import (
	"net/http"
	"or_flow_app_go/config"
	"or_flow_app_go/db"
	"or_flow_app_go/middleware"
	"or_flow_app_go/models"
	"or_flow_app_go/services"
	"time"

	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler authenticates a staff member and opens a session
func LoginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	user, err := services.Authenticate(db.DB, req.Email, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	session, err := services.CreateSession(db.DB, user.ID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create session")
	}

	setSessionCookie(c, session.Token, session.ExpiresAt)

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionLogin,
		"User", user.ID, user.Name, "User logged in", nil, nil)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": session.Token,
	})
}

// LogoutHandler closes the current session
func LogoutHandler(c echo.Context) error {
	session, ok := c.Get(middleware.ContextKeySession).(*models.Session)
	if ok {
		_ = services.DeleteSession(db.DB, session.Token)
	}

	setSessionCookie(c, "", time.Now().Add(-time.Hour))

	if user := middleware.GetCurrentUser(c); user != nil {
		services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionLogout,
			"User", user.ID, user.Name, "User logged out", nil, nil)
	}

	return c.NoContent(http.StatusNoContent)
}

// MeHandler returns the authenticated user
func MeHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return c.JSON(http.StatusOK, user)
}

// setSessionCookie writes the session cookie. The value is signed with the
// session secret so the auth middleware can reject forged cookies cheaply.
func setSessionCookie(c echo.Context, token string, expires time.Time) {
	var isProduction bool
	value := token
	if cfg, ok := c.Get("config").(*config.Config); ok {
		isProduction = cfg.Environment == "production"
		if token != "" {
			value = services.SignSessionToken(cfg.SessionSecret, token)
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}
