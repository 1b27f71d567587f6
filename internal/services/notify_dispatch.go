package services

import (
	"context"
	"fmt"
	"time"

	"github.com/volunty/volunty/pkg/logger"
)

// NewNotifyProcessor adapts queued NotifyTask payloads to the mailer.
// The same processor backs both the asynq worker and the sync queue.
func NewNotifyProcessor(notify *NotifyService, reminders *ReminderService) func(context.Context, *NotifyTask) error {
	return func(ctx context.Context, task *NotifyTask) error {
		switch task.Kind {
		case NotifySwapCreated:
			return notify.SwapCreated(task.SwapRequestID)
		case NotifySwapAccepted:
			return notify.SwapAccepted(task.SwapRequestID)
		case NotifySwapCancelled:
			return notify.SwapCancelled(task.SwapRequestID)
		case NotifyShiftReminder:
			day, err := time.Parse(time.RFC3339, task.Day)
			if err != nil {
				return fmt.Errorf("invalid reminder day %q: %w", task.Day, err)
			}
			shifts, err := reminders.ShiftsForUserOn(task.UserID, day)
			if err != nil {
				return err
			}
			return notify.ShiftReminder(task.UserID, day, shifts)
		default:
			logger.Warnf("[Notify] Unknown task kind %q dropped", task.Kind)
			return nil
		}
	}
}
