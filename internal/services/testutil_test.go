package services

import (
	"testing"
	"time"

	"github.com/volunty/volunty/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.Profile {
	t.Helper()

	profile := models.Profile{
		Username:      username,
		FullName:      username,
		Email:         username + "@example.com",
		Role:          models.RoleVolunteer,
		CalendarToken: "cal-" + username,
		IsActive:      true,
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return &profile
}

func createTestEvent(t *testing.T, db *gorm.DB, title string, start, end time.Time) *models.Event {
	t.Helper()

	event := models.Event{
		Title:     title,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		Location:  "Community Hall",
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("failed to create event %s: %v", title, err)
	}
	return &event
}

func createTestShift(t *testing.T, db *gorm.DB, eventID uint, role string, capacity int, start, end *time.Time) *models.SubShift {
	t.Helper()

	shift := models.SubShift{
		EventID:   eventID,
		RoleName:  role,
		Capacity:  capacity,
		StartTime: start,
		EndTime:   end,
	}
	if err := db.Create(&shift).Error; err != nil {
		t.Fatalf("failed to create shift %s: %v", role, err)
	}
	return &shift
}

func timePtr(tm time.Time) *time.Time {
	return &tm
}
