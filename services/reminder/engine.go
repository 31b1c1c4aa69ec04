package reminder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	reminderRepo "doctordash/database/repository/reminder"
	userRepo "doctordash/database/repository/user"
	"doctordash/models"
	"doctordash/services/notification"
	"doctordash/utils"
)

// DispatchEngine processes due reminders and fans them out to their
// configured channels. Sweeps may overlap: each fire is claimed with a
// compare-and-set on the reminder's schedule before anything is sent, so a
// reminder fires once per due time no matter how many sweeps observe it.
type DispatchEngine struct {
	Reminders reminderRepo.ReminderRepository
	Users     userRepo.RecipientDirectory
	Channels  notification.Registry
	Clock     utils.Clock
	Location  *time.Location
	BatchSize int
	Logger    *zap.Logger
}

// RunSweep finds reminders whose NextSendAt has arrived and dispatches
// them. Per-reminder and per-channel failures are logged and isolated; the
// schedule always advances for a claimed fire, so one broken channel cannot
// pin a reminder at the front of the due queue forever.
func (e *DispatchEngine) RunSweep(ctx context.Context) error {
	now := e.Clock.Now().In(e.Location)

	due, err := e.Reminders.FindDue(ctx, now, e.BatchSize)
	if err != nil {
		return fmt.Errorf("fetch due reminders: %w", err)
	}
	if len(due) == 0 {
		return nil
	}
	e.Logger.Info("processing due reminders", zap.Int("count", len(due)))

	for _, rem := range due {
		e.processReminder(ctx, rem, now)
	}
	return nil
}

func (e *DispatchEngine) processReminder(ctx context.Context, rem models.Reminder, now time.Time) {
	next, err := NextFireTime(rem.Frequency, rem.Time, rem.DaysOfWeek, &now, now)
	if err != nil {
		e.Logger.Error("cannot compute next fire time, skipping reminder",
			zap.String("reminderId", rem.ID), zap.Error(err))
		return
	}

	claimed, err := e.Reminders.ClaimFire(ctx, rem.ID, rem.NextSendAt, now, next)
	if err != nil {
		e.Logger.Error("claim fire failed",
			zap.String("reminderId", rem.ID), zap.Error(err))
		return
	}
	if !claimed {
		// Another sweep got here first.
		return
	}

	recipient, err := e.Users.GetRecipient(ctx, rem.UserID)
	if err != nil {
		e.Logger.Warn("skipping reminder, recipient not found",
			zap.String("reminderId", rem.ID),
			zap.String("userId", rem.UserID),
			zap.Error(err))
		return
	}

	msg := trackingMessage(rem)
	for _, kind := range rem.Channels {
		ch, err := e.Channels.Get(kind)
		if err != nil {
			e.Logger.Warn("no implementation for reminder channel",
				zap.String("reminderId", rem.ID),
				zap.String("channel", string(kind)))
			continue
		}
		if err := ch.Send(ctx, recipient, msg); err != nil {
			e.Logger.Error("reminder dispatch failed",
				zap.String("reminderId", rem.ID),
				zap.String("channel", string(kind)),
				zap.Error(err))
		}
	}
}

// SendTest dispatches the reminder's message through its channels right
// away so the user can confirm delivery works. The schedule is untouched:
// LastSentAt and NextSendAt keep their values.
func (e *DispatchEngine) SendTest(ctx context.Context, userID, id string) error {
	rem, err := e.Reminders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rem.UserID != userID {
		return ErrNotOwner
	}

	recipient, err := e.Users.GetRecipient(ctx, rem.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}

	msg := trackingMessage(*rem)
	msg.Subject = "[Test] " + msg.Subject

	var lastErr error
	delivered := 0
	for _, kind := range rem.Channels {
		ch, err := e.Channels.Get(kind)
		if err != nil {
			e.Logger.Warn("no implementation for reminder channel",
				zap.String("reminderId", rem.ID),
				zap.String("channel", string(kind)))
			continue
		}
		if err := ch.Send(ctx, recipient, msg); err != nil {
			lastErr = err
			continue
		}
		delivered++
	}
	if delivered == 0 && lastErr != nil {
		return fmt.Errorf("test dispatch failed: %w", lastErr)
	}
	return nil
}

// Postpone pushes a reminder's next fire to now + the given hours,
// bypassing the cadence calculation. One-shot snooze.
func (e *DispatchEngine) Postpone(ctx context.Context, userID, id string, hours int) (time.Time, error) {
	if hours <= 0 {
		hours = 1
	}
	rem, err := e.Reminders.GetByID(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	if rem.UserID != userID {
		return time.Time{}, ErrNotOwner
	}

	next := e.Clock.Now().In(e.Location).Add(time.Duration(hours) * time.Hour)
	if err := e.Reminders.SetNextSendAt(ctx, id, next); err != nil {
		return time.Time{}, err
	}
	return next, nil
}

func trackingMessage(rem models.Reminder) models.Message {
	vital := rem.VitalType.DisplayName()
	return models.Message{
		Subject: fmt.Sprintf("Time to track your %s", vital),
		Body:    fmt.Sprintf("This is a friendly reminder to log your %s reading in your health tracker.", vital),
		Data: map[string]string{
			"reminderId": rem.ID,
			"vitalType":  string(rem.VitalType),
		},
	}
}
