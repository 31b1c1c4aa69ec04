package reminder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	appointmentRepo "doctordash/database/repository/appointment"
	userRepo "doctordash/database/repository/user"
	"doctordash/models"
	"doctordash/services/notification"
	"doctordash/utils"
)

// leadBucket is one fixed pre-appointment alert window. An appointment is
// inside the bucket when its start is within (Lead-1m, Lead] from now.
type leadBucket struct {
	Name  string
	Lead  time.Duration
	Human string
}

var leadBuckets = []leadBucket{
	{Name: "lead-60m", Lead: 60 * time.Minute, Human: "1 hour"},
	{Name: "lead-1m", Lead: time.Minute, Human: "1 minute"},
}

// AppointmentSweep fires one-shot reminders at fixed lead times before each
// appointment. Idempotency comes from a persisted per-appointment bucket
// marker claimed atomically before sending: narrow windows alone cannot
// rule out a double fire when sweeps jitter or overlap, so every bucket is
// claimed exactly once regardless of timing.
type AppointmentSweep struct {
	Appointments appointmentRepo.AppointmentRepository
	Users        userRepo.RecipientDirectory
	Channels     notification.Registry
	Clock        utils.Clock
	Location     *time.Location
	BatchSize    int
	Logger       *zap.Logger
}

// RunSweep scans non-cancelled appointments starting within the widest
// lead window and sends any bucket alerts that are due. A failure on one
// appointment never aborts the rest of the batch.
func (s *AppointmentSweep) RunSweep(ctx context.Context) error {
	now := s.Clock.Now().In(s.Location)
	horizon := now.Add(leadBuckets[0].Lead + time.Minute)

	appts, err := s.Appointments.ListUpcoming(ctx, now, horizon, s.BatchSize)
	if err != nil {
		return fmt.Errorf("list upcoming appointments: %w", err)
	}

	for _, appt := range appts {
		until := appt.StartAt.Sub(now)
		for _, bucket := range leadBuckets {
			if until > bucket.Lead || until <= bucket.Lead-time.Minute {
				continue
			}
			s.fireBucket(ctx, appt, bucket)
		}
	}
	return nil
}

func (s *AppointmentSweep) fireBucket(ctx context.Context, appt models.Appointment, bucket leadBucket) {
	claimed, err := s.Appointments.ClaimReminderBucket(ctx, appt.ID, bucket.Name)
	if err != nil {
		s.Logger.Error("claim reminder bucket failed",
			zap.String("appointmentId", appt.ID),
			zap.String("bucket", bucket.Name),
			zap.Error(err))
		return
	}
	if !claimed {
		// Already sent by an earlier or overlapping sweep.
		return
	}

	recipient, err := s.Users.GetRecipient(ctx, appt.UserID)
	if err != nil {
		s.Logger.Warn("skipping appointment reminder, recipient not found",
			zap.String("appointmentId", appt.ID),
			zap.String("userId", appt.UserID),
			zap.Error(err))
		return
	}

	ch, err := s.Channels.Get(models.ChannelEmail)
	if err != nil {
		s.Logger.Error("email channel unavailable for appointment reminder",
			zap.String("appointmentId", appt.ID))
		return
	}

	msg := appointmentReminderMessage(appt, bucket)
	if err := ch.Send(ctx, recipient, msg); err != nil {
		s.Logger.Error("appointment reminder send failed",
			zap.String("appointmentId", appt.ID),
			zap.String("bucket", bucket.Name),
			zap.Error(err))
		return
	}
	s.Logger.Info("appointment reminder sent",
		zap.String("appointmentId", appt.ID),
		zap.String("bucket", bucket.Name))
}

func appointmentReminderMessage(appt models.Appointment, bucket leadBucket) models.Message {
	return models.Message{
		Subject: fmt.Sprintf("Appointment Reminder - %s from now", bucket.Human),
		Body: fmt.Sprintf("Your appointment with Dr. %s is %s from now, on %s at %s.",
			appt.DocName, bucket.Human, appt.SlotDate, appt.SlotTime),
		Data: map[string]string{
			"appointmentId": appt.ID,
			"bucket":        bucket.Name,
		},
	}
}
