package main

import (
	"github.com/gin-gonic/gin"
	"github.com/volunty/volunty/internal/handlers"
	"github.com/volunty/volunty/internal/middleware"
	"github.com/volunty/volunty/internal/models"
	"github.com/volunty/volunty/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	db := models.GetDB()

	// Limiter for token-addressed public routes; share tokens are
	// unguessable, but enumeration still gets throttled.
	tokenLimiter := middleware.NewTokenRateLimiter(svc.cfg.App.TokenRate, svc.cfg.App.TokenBurst)

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
		}

		// Organization info for the login page (public)
		settingsHandler := handlers.NewSettingsHandler(db)
		api.GET("/org-info", settingsHandler.PublicInfo)

		// Calendar feeds (public, token-addressed, rate limited)
		calendarHandler := handlers.NewCalendarHandler(db)
		api.GET("/calendar/:token", tokenLimiter.Middleware(), calendarHandler.Feed)

		// Shared swap offers (public view, rate limited; resolution
		// requires login)
		swapHandler := handlers.NewSwapHandler(db, svc.cfg, svc.taskQueue)
		api.GET("/swap-requests/token/:token", tokenLimiter.Middleware(), swapHandler.View)

		// Event browsing (public read)
		eventHandler := handlers.NewEventHandler(db)
		api.GET("/events", eventHandler.List)
		api.GET("/events/:id", eventHandler.Get)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Signups
			assignmentHandler := handlers.NewAssignmentHandler(db)
			protected.POST("/sub-shifts/:id/signups", assignmentHandler.SignUp)
			protected.GET("/my/assignments", assignmentHandler.ListMine)

			// Swaps
			protected.POST("/assignments/:id/swap-requests", swapHandler.Create)
			protected.GET("/swap-requests", swapHandler.ListMine)
			protected.POST("/swap-requests/token/:token/resolve", swapHandler.Resolve)
			protected.DELETE("/swap-requests/:id", swapHandler.Cancel)

			// Calendar token management
			userHandler := handlers.NewUserHandler(db)
			protected.GET("/my/calendar-token", userHandler.GetCalendarToken)
			protected.POST("/my/calendar-token/rotate", userHandler.RotateCalendarToken)
		}

		// Admin only routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			// Events
			admin.POST("/events", eventHandler.Create)
			admin.PUT("/events/:id", eventHandler.Update)
			admin.DELETE("/events/:id", eventHandler.Delete)

			// Swap overview
			admin.GET("/swap-requests", swapHandler.ListOpen)

			// Users
			userHandler := handlers.NewUserHandler(db)
			admin.GET("/users", userHandler.List)
			admin.PATCH("/users/:id/role", userHandler.SetRole)
			admin.PATCH("/users/:id/active", userHandler.SetActive)

			// Dashboard
			dashboardHandler := handlers.NewDashboardHandler(db)
			admin.GET("/dashboard", dashboardHandler.GetStats)

			// Settings
			admin.GET("/settings", settingsHandler.List)
			admin.PUT("/settings", settingsHandler.Update)

			// Audit logs
			auditLogHandler := handlers.NewAuditLogHandler(db)
			admin.GET("/audit-logs", auditLogHandler.List)
		}
	}
}
