package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/volunty/volunty/pkg/logger"
	"gorm.io/gorm"
)

// ReminderService runs the recurring jobs: a daily shift reminder mail
// for every volunteer with a shift the next day, and nightly audit
// log retention cleanup.
type ReminderService struct {
	db           *gorm.DB
	settings     *SettingsService
	audit        *AuditService
	queue        TaskQueue
	reminderHour int
	scheduler    *cron.Cron
}

func NewReminderService(db *gorm.DB, settings *SettingsService, audit *AuditService, queue TaskQueue, reminderHour int) *ReminderService {
	return &ReminderService{
		db:           db,
		settings:     settings,
		audit:        audit,
		queue:        queue,
		reminderHour: reminderHour,
	}
}

func (s *ReminderService) StartScheduler() {
	s.scheduler = cron.New()

	hour := s.reminderHour
	if hour < 0 || hour > 23 {
		hour = 8
	}
	reminderExpr := fmt.Sprintf("0 %d * * *", hour)
	if _, err := s.scheduler.AddFunc(reminderExpr, func() {
		if err := s.SendDailyReminders(time.Now()); err != nil {
			logger.Errorf("[Reminder] Daily reminder run failed: %v", err)
		}
	}); err != nil {
		logger.Errorf("[Reminder] Failed to schedule daily reminders: %v", err)
	}

	if _, err := s.scheduler.AddFunc("30 3 * * *", func() {
		s.cleanupAuditLogs()
	}); err != nil {
		logger.Errorf("[Reminder] Failed to schedule audit cleanup: %v", err)
	}

	s.scheduler.Start()
	logger.Infof("[Reminder] Scheduler started (reminders at %02d:00)", hour)
}

func (s *ReminderService) StopScheduler() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// SendDailyReminders enqueues one reminder task per volunteer with a
// shift tomorrow. now is a parameter so tests can pin the clock.
func (s *ReminderService) SendDailyReminders(now time.Time) error {
	dayStart := now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	userIDs, err := s.UsersWithShiftsBetween(dayStart, dayEnd)
	if err != nil {
		return err
	}

	for _, userID := range userIDs {
		task := &NotifyTask{
			Kind:   NotifyShiftReminder,
			UserID: userID,
			Day:    dayStart.Format(time.RFC3339),
		}
		if err := s.queue.Enqueue(task); err != nil {
			logger.Errorf("[Reminder] Failed to enqueue reminder for user %d: %v", userID, err)
		}
	}

	logger.Infof("[Reminder] Enqueued %d reminders for %s", len(userIDs), dayStart.Format("2006-01-02"))
	return nil
}

// UsersWithShiftsBetween returns the distinct users holding an active
// assignment whose effective window starts inside [from, to).
func (s *ReminderService) UsersWithShiftsBetween(from, to time.Time) ([]uint, error) {
	var userIDs []uint
	err := s.db.Table("shift_assignments").
		Select("DISTINCT shift_assignments.user_id").
		Joins("JOIN sub_shifts ON sub_shifts.id = shift_assignments.sub_shift_id").
		Joins("JOIN events ON events.id = sub_shifts.event_id").
		Where("shift_assignments.status IN ?", activeStatuses).
		Where("COALESCE(sub_shifts.start_time, events.start_time) >= ? AND COALESCE(sub_shifts.start_time, events.start_time) < ?", from, to).
		Pluck("shift_assignments.user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

// ShiftsForUserOn returns a user's active assignments whose effective
// window starts on the given UTC day.
func (s *ReminderService) ShiftsForUserOn(userID uint, day time.Time) ([]AssignmentView, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	all, err := NewAssignmentService(s.db).ListForUser(userID)
	if err != nil {
		return nil, err
	}

	var shifts []AssignmentView
	for _, a := range all {
		start := a.EventStartTime
		if a.StartTime != nil {
			start = *a.StartTime
		}
		if !start.Before(dayStart) && start.Before(dayEnd) {
			shifts = append(shifts, a)
		}
	}
	return shifts, nil
}

func (s *ReminderService) cleanupAuditLogs() {
	days := s.settings.GetInt("audit_retention_days", 30)
	if days <= 0 {
		return
	}
	removed, err := s.audit.CleanupOlderThan(days)
	if err != nil {
		logger.Errorf("[Reminder] Audit cleanup failed: %v", err)
		return
	}
	if removed > 0 {
		logger.Infof("[Reminder] Removed %d audit log entries older than %d days", removed, days)
	}
}
