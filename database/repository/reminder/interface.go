package reminderRepo

import (
	"context"
	"errors"
	"time"

	"doctordash/models"
)

// ErrReminderNotFound indicates the reminder does not exist.
var ErrReminderNotFound = errors.New("reminder not found")

// ReminderRepository stores recurring reminder schedules.
type ReminderRepository interface {
	Create(ctx context.Context, rem *models.Reminder) error
	Update(ctx context.Context, rem *models.Reminder) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Reminder, error)
	ListByUser(ctx context.Context, userID string) ([]models.Reminder, error)

	// FindDue returns active reminders whose NextSendAt is at or before now,
	// bounded by limit.
	FindDue(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error)

	// ClaimFire advances a due reminder's schedule with a compare-and-set on
	// the NextSendAt value read by FindDue. A false return means another
	// sweep claimed this fire first and the caller must not dispatch.
	ClaimFire(ctx context.Context, id string, prevNextSendAt, firedAt, nextSendAt time.Time) (bool, error)

	// SetNextSendAt overwrites the schedule directly (postpone), bypassing
	// the cadence calculation.
	SetNextSendAt(ctx context.Context, id string, nextSendAt time.Time) error
}
