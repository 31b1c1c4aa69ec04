package appointmentRepo

import (
	"context"
	"errors"
	"time"

	"doctordash/models"
)

// ErrAppointmentNotFound indicates the appointment does not exist.
var ErrAppointmentNotFound = errors.New("appointment not found")

// AppointmentRepository is the system of record for finalized bookings.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	ListByUser(ctx context.Context, userID string) ([]models.Appointment, error)

	// GetActiveBySlot finds the non-cancelled appointment occupying a slot,
	// if any. Used to make finalize idempotent.
	GetActiveBySlot(ctx context.Context, docID string, date models.DateKey, slot models.TimeSlot) (*models.Appointment, error)

	MarkCancelled(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string) error

	// ListUpcoming returns non-cancelled appointments starting in
	// (after, before], for the pre-appointment reminder sweep.
	ListUpcoming(ctx context.Context, after, before time.Time, limit int) ([]models.Appointment, error)

	// ClaimReminderBucket atomically records that the given lead-time bucket
	// has fired for the appointment. Returns false when the bucket was
	// already claimed, so overlapping sweeps send at most once.
	ClaimReminderBucket(ctx context.Context, id, bucket string) (bool, error)
}
