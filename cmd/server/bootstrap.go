package main

import (
	"github.com/volunty/volunty/internal/config"
	"github.com/volunty/volunty/internal/handlers"
	"github.com/volunty/volunty/internal/models"
	"github.com/volunty/volunty/internal/services"
	"github.com/volunty/volunty/internal/utils"
	"github.com/volunty/volunty/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg             *config.Config
	taskQueue       services.TaskQueue
	worker          *services.Worker
	reminderService *services.ReminderService
	authHandler     *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database (runs migrations)
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Seed default organization settings
	if err := models.SeedDefaultData(models.GetDB()); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize audit logger
	services.InitAuditLogger(models.GetDB())

	db := models.GetDB()
	settingsService := services.NewSettingsService(db)
	notifyService := services.NewNotifyService(db, settingsService, cfg.App.BaseURL)
	auditService := services.NewAuditService(db)

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	taskQueue := services.InitTaskQueue(cfg)

	// Reminder scheduler needs the queue; the notify processor needs
	// the reminder service. Wire the cycle through the processor last.
	reminderService := services.NewReminderService(db, settingsService, auditService, taskQueue, cfg.App.ReminderHour)
	processor := services.NewNotifyProcessor(notifyService, reminderService)

	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(processor)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(processor)
			worker.Start()
		}
	}

	reminderService.StartScheduler()

	// Create default admin user
	authHandler := handlers.NewAuthHandler(db, cfg)
	if err := authHandler.CreateAdminIfNotExists("admin", "admin123"); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		cfg:             cfg,
		taskQueue:       taskQueue,
		worker:          worker,
		reminderService: reminderService,
		authHandler:     authHandler,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.reminderService.StopScheduler()
	logger.Info().Msg("Schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
