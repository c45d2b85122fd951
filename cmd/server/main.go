package main

import (
	"log"
	"or_flow_app_go/config"
	"or_flow_app_go/db"
	"or_flow_app_go/handlers"
	"or_flow_app_go/middleware"
	"or_flow_app_go/models"
	"or_flow_app_go/realtime"
	"or_flow_app_go/services"
	"or_flow_app_go/services/jobs"
	"or_flow_app_go/services/voice"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Wire up the board hub and the voice command bus
	handlers.Hub = realtime.NewHub()
	handlers.VoiceBus = voice.NewBus()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Public routes (no authentication required)
	e.POST("/api/login", handlers.LoginHandler)
	// OR status boards listen without a session
	e.GET("/ws", handlers.WebSocketHandler)

	// Protected routes
	api := e.Group("/api")
	api.Use(middleware.RequireAuth())
	{
		api.POST("/logout", handlers.LogoutHandler)
		api.GET("/me", handlers.MeHandler)

		// Cases
		api.GET("/cases", handlers.GetCasesHandler)
		api.POST("/cases", handlers.CreateCaseHandler)
		api.GET("/cases/:id", handlers.GetCaseHandler)
		api.POST("/cases/:id/start", handlers.StartCaseHandler)
		api.POST("/cases/:id/suspend", handlers.SuspendCaseHandler)
		api.POST("/cases/:id/no-show", handlers.NoShowCaseHandler)
		api.POST("/cases/:id/wheels-out", handlers.WheelsOutHandler)

		// Delay evaluation and reasons
		api.GET("/cases/:id/delay-check", handlers.CheckCaseDelayHandler)
		api.GET("/cases/:id/delay-reasons", handlers.GetDelayReasonsHandler)
		api.POST("/cases/:id/delay-reasons", handlers.CreateDelayReasonHandler)

		// Milestones
		api.GET("/cases/:id/milestones", handlers.GetCaseMilestonesHandler)
		api.POST("/cases/:id/milestones/advance", handlers.AdvanceMilestoneHandler)
		api.POST("/milestones/:mid/complete", handlers.CompleteMilestoneHandler)
		api.POST("/milestones/:mid/skip", handlers.SkipMilestoneHandler)
		api.POST("/milestones/:mid/revise", handlers.ReviseMilestoneHandler)

		// Timers
		api.GET("/cases/:id/timers", handlers.GetCaseTimersHandler)
		api.POST("/cases/:id/timers", handlers.CreateTimerHandler)
		api.POST("/cases/:id/timers/pause-all", handlers.PauseAllTimersHandler)
		api.POST("/cases/:id/timers/resume-all", handlers.ResumeAllTimersHandler)
		api.POST("/cases/:id/timers/dismiss-all", handlers.DismissAllTimersHandler)
		api.DELETE("/cases/:id/timers", handlers.DeleteAllTimersHandler)
		api.POST("/timers/:tid/pause", handlers.PauseTimerHandler)
		api.POST("/timers/:tid/resume", handlers.ResumeTimerHandler)
		api.POST("/timers/:tid/dismiss", handlers.DismissTimerHandler)
		api.DELETE("/timers/:tid", handlers.DeleteTimerHandler)

		// Voice commands
		api.POST("/voice/intent", handlers.VoiceIntentHandler)

		// Notes
		api.GET("/cases/:id/notes", handlers.GetCaseNotesHandler)
		api.POST("/cases/:id/notes", handlers.CreateNoteHandler)

		// Admin-only routes
		adminRoutes := api.Group("")
		adminRoutes.Use(middleware.RequireRole(models.RoleAdmin))
		{
			adminRoutes.GET("/reports/delays", handlers.DelayReportHandler)
		}
	}

	// Start the tracker monitor sweep
	jobs.StartScheduler(db.DB, cfg)

	// Start background cleanup jobs (runs every hour)
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			// Clean up expired sessions
			if err := services.CleanupExpiredSessions(db.DB); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			}
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
