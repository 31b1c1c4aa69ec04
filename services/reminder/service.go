package reminder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	reminderRepo "doctordash/database/repository/reminder"
	"doctordash/models"
	"doctordash/utils"
)

// UpsertInput is the user-submitted reminder definition.
type UpsertInput struct {
	ID         string           `json:"id,omitempty"`
	VitalType  models.VitalType `json:"vitalType" binding:"required"`
	Frequency  models.Frequency `json:"frequency" binding:"required"`
	Time       string           `json:"time" binding:"required"`
	DaysOfWeek []time.Weekday   `json:"daysOfWeek,omitempty"`
	Active     *bool            `json:"active,omitempty"`
	Channels   []models.Channel `json:"channels,omitempty"`
}

// ReminderService owns the write path for reminder schedules: it validates
// input, derives NextSendAt, and keeps the cadence fields consistent.
type ReminderService struct {
	Repo     reminderRepo.ReminderRepository
	Clock    utils.Clock
	Location *time.Location
	Logger   *zap.Logger
}

// Upsert creates a reminder, or updates one owned by userID. Any cadence
// edit resets LastSentAt and recomputes NextSendAt from scratch, so the new
// schedule takes effect immediately.
func (s *ReminderService) Upsert(ctx context.Context, userID string, in UpsertInput) (*models.Reminder, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}
	channels := in.Channels
	if len(channels) == 0 {
		channels = []models.Channel{models.ChannelEmail}
	}
	days := in.DaysOfWeek
	if in.Frequency == models.FrequencyDaily {
		days = nil
	}

	now := s.Clock.Now().In(s.Location)
	next, err := NextFireTime(in.Frequency, in.Time, days, nil, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReminder, err)
	}

	if in.ID == "" {
		rem := &models.Reminder{
			UserID:     userID,
			VitalType:  in.VitalType,
			Frequency:  in.Frequency,
			Time:       in.Time,
			DaysOfWeek: days,
			Active:     active,
			Channels:   channels,
			NextSendAt: next,
		}
		if err := s.Repo.Create(ctx, rem); err != nil {
			return nil, err
		}
		return rem, nil
	}

	rem, err := s.Repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if rem.UserID != userID {
		return nil, ErrNotOwner
	}

	rem.VitalType = in.VitalType
	rem.Frequency = in.Frequency
	rem.Time = in.Time
	rem.DaysOfWeek = days
	rem.Active = active
	rem.Channels = channels
	rem.LastSentAt = nil
	rem.NextSendAt = next

	if err := s.Repo.Update(ctx, rem); err != nil {
		return nil, err
	}
	return rem, nil
}

// List returns the user's reminders, newest first.
func (s *ReminderService) List(ctx context.Context, userID string) ([]models.Reminder, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Delete removes a reminder owned by userID.
func (s *ReminderService) Delete(ctx context.Context, userID, id string) error {
	rem, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rem.UserID != userID {
		return ErrNotOwner
	}
	return s.Repo.Delete(ctx, id)
}

func validateInput(in UpsertInput) error {
	if !in.VitalType.Valid() {
		return fmt.Errorf("%w: unknown vital type %q", ErrInvalidReminder, in.VitalType)
	}
	if !in.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidReminder, in.Frequency)
	}
	if _, _, err := models.ParseReminderTime(in.Time); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReminder, err)
	}
	if in.Frequency == models.FrequencyWeekly && len(in.DaysOfWeek) == 0 {
		return fmt.Errorf("%w: weekly reminders need at least one day selected", ErrInvalidReminder)
	}
	for _, d := range in.DaysOfWeek {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("%w: invalid weekday %d", ErrInvalidReminder, d)
		}
	}
	for _, ch := range in.Channels {
		if !ch.Valid() {
			return fmt.Errorf("%w: invalid channel %q", ErrInvalidReminder, ch)
		}
	}
	return nil
}
