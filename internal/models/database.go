package models

import (
	"fmt"

	"github.com/volunty/volunty/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Translate driver-specific constraint errors into
		// gorm.ErrDuplicatedKey and friends; the signup engine relies
		// on this to surface unique-index violations as conflicts.
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return AutoMigrate(db)
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Profile{},
		&Event{},
		&SubShift{},
		&ShiftAssignment{},
		&SwapRequest{},
		&OrgSetting{},
		&AuditLog{},
	); err != nil {
		return err
	}

	// At most one open swap request per assignment. A partial unique
	// index makes the store the source of truth for the
	// read-then-insert check in the swap service; MySQL has no partial
	// indexes, so there the in-transaction check stands alone.
	if db.Dialector.Name() != "mysql" {
		if err := db.Exec(
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_open_swap_per_assignment
			 ON swap_requests (assignment_id) WHERE status = 'open'`,
		).Error; err != nil {
			return err
		}
	}

	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates default organization settings if not exists.
func SeedDefaultData(db *gorm.DB) error {
	defaults := []OrgSetting{
		{Key: "org_name", Value: "VolunTy"},
		{Key: "timezone", Value: "Europe/Brussels"},
		{Key: "email_enabled", Value: "false"},
		{Key: "email_host", Value: ""},
		{Key: "email_port", Value: "587"},
		{Key: "email_username", Value: ""},
		{Key: "email_password", Value: ""},
		{Key: "email_from", Value: ""},
		{Key: "email_use_tls", Value: "true"},
		{Key: "audit_retention_days", Value: "30"},
	}

	for _, s := range defaults {
		var count int64
		db.Model(&OrgSetting{}).Where("key = ?", s.Key).Count(&count)
		if count == 0 {
			if err := db.Create(&s).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
