package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appointmentRepo "doctordash/database/repository/appointment"
	doctorRepo "doctordash/database/repository/doctor"
	userRepo "doctordash/database/repository/user"
	"doctordash/models"
	"doctordash/utils"
)

// NotificationEnqueuer hands a notification to the async worker. Booking
// confirmations are best-effort: enqueue failures are logged, never
// surfaced to the booking caller.
type NotificationEnqueuer interface {
	Enqueue(ctx context.Context, payload models.NotificationPayload) error
}

// ReservationWorkflow orchestrates the hold → payment → finalize lifecycle.
// It keeps no state between requests: the signed hold token carries the
// identity of the reservation.
type ReservationWorkflow struct {
	Ledger       *SlotLedger
	Doctors      doctorRepo.DoctorRepository
	Appointments appointmentRepo.AppointmentRepository
	Users        userRepo.RecipientDirectory
	Payments     PaymentGateway
	Notifier     NotificationEnqueuer
	Clock        utils.Clock
	Location     *time.Location
	Currency     string
	Logger       *zap.Logger
}

// RequestHold validates the doctor is accepting bookings, registers a hold
// on the slot, and returns a signed token the client uses for the rest of
// the flow.
func (w *ReservationWorkflow) RequestHold(ctx context.Context, userID, docID, rawDate, rawTime string) (string, models.HoldRecord, error) {
	date, err := models.ParseDateKey(rawDate)
	if err != nil {
		return "", models.HoldRecord{}, err
	}
	slot, err := models.ParseTimeSlot(rawTime)
	if err != nil {
		return "", models.HoldRecord{}, err
	}

	available, err := w.Doctors.GetAvailability(ctx, docID)
	if err != nil {
		return "", models.HoldRecord{}, err
	}
	if !available {
		return "", models.HoldRecord{}, ErrDoctorUnavailable
	}

	rec, err := w.Ledger.TryHold(ctx, docID, date, slot, userID)
	if err != nil {
		return "", models.HoldRecord{}, err
	}

	token, err := IssueHoldToken(HoldToken{
		HolderID: userID,
		DocID:    docID,
		SlotDate: date,
		SlotTime: slot,
	}, w.Ledger.HoldTTL, rec.CreatedAt)
	if err != nil {
		return "", models.HoldRecord{}, fmt.Errorf("sign hold token: %w", err)
	}

	return token, rec, nil
}

// InitiatePayment creates a payable order for the held slot. A gateway
// failure does not release the hold; the caller may retry until the TTL.
func (w *ReservationWorkflow) InitiatePayment(ctx context.Context, tokenString string) (models.OrderRef, error) {
	tok, err := ParseHoldToken(tokenString, w.Clock.Now())
	if err != nil {
		return models.OrderRef{}, err
	}

	fee, err := w.Doctors.GetFee(ctx, tok.DocID)
	if err != nil {
		return models.OrderRef{}, err
	}

	order, err := w.Payments.CreateOrder(ctx, fee, w.Currency)
	if err != nil {
		return models.OrderRef{}, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}
	return order, nil
}

// Finalize verifies the payment, promotes the hold to a confirmed booking,
// and persists the appointment. Calling it again after success returns the
// already-created appointment instead of double-booking.
func (w *ReservationWorkflow) Finalize(ctx context.Context, tokenString, paymentRef string) (*models.Appointment, error) {
	tok, err := ParseHoldToken(tokenString, w.Clock.Now())
	if err != nil {
		return nil, err
	}

	// Idempotency: if this holder already finalized the slot, hand back the
	// existing appointment.
	if existing, err := w.Appointments.GetActiveBySlot(ctx, tok.DocID, tok.SlotDate, tok.SlotTime); err == nil {
		if existing.UserID == tok.HolderID {
			return existing, nil
		}
		return nil, ErrHoldExpired
	} else if !errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
		return nil, err
	}

	paid, err := w.Payments.Verify(ctx, paymentRef)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}
	if !paid {
		return nil, ErrPaymentFailed
	}

	if err := w.Ledger.Finalize(ctx, tok.DocID, tok.SlotDate, tok.SlotTime, tok.HolderID); err != nil {
		return nil, err
	}

	doc, err := w.Doctors.GetByID(ctx, tok.DocID)
	if err != nil {
		return nil, err
	}

	startAt, err := tok.SlotDate.At(tok.SlotTime, w.Location)
	if err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		UserID:        tok.HolderID,
		DocID:         tok.DocID,
		DocName:       doc.Name,
		SlotDate:      tok.SlotDate,
		SlotTime:      tok.SlotTime,
		Amount:        doc.Fees,
		StartAt:       startAt,
		Payment:       true,
		TransactionID: paymentRef,
		CreatedAt:     w.Clock.Now(),
	}
	if err := w.Appointments.Create(ctx, appt); err != nil {
		// The ledger already moved the slot to booked; an insert failure
		// here leaves a booked slot without a record until the client or an
		// operator intervenes. Keep the failure loud.
		w.Logger.Error("appointment insert failed after ledger finalize",
			zap.String("docId", tok.DocID),
			zap.String("userId", tok.HolderID),
			zap.Error(err))
		return nil, err
	}

	w.notify(ctx, tok.HolderID, confirmationMessage(appt))
	return appt, nil
}

// Release gives up the hold. Releasing a hold that is already expired or
// promoted is a successful no-op.
func (w *ReservationWorkflow) Release(ctx context.Context, tokenString string) error {
	tok, err := ParseHoldToken(tokenString, w.Clock.Now())
	if err != nil {
		// An expired token means the hold already lapsed on its own.
		if errors.Is(err, ErrHoldExpired) {
			return nil
		}
		return err
	}
	return w.Ledger.Release(ctx, tok.DocID, tok.SlotDate, tok.SlotTime, tok.HolderID)
}

// Cancel marks a finalized appointment cancelled and frees its slot.
func (w *ReservationWorkflow) Cancel(ctx context.Context, userID, appointmentID string) error {
	appt, err := w.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appt.UserID != userID {
		return ErrUnauthorized
	}
	if appt.Cancelled {
		// The cancelled flag persists before the ledger write, so a failure
		// in between leaves the slot booked with no active appointment. A
		// repeat cancel must still free it, unless a newer booking took the
		// slot in the meantime.
		if _, err := w.Appointments.GetActiveBySlot(ctx, appt.DocID, appt.SlotDate, appt.SlotTime); err == nil {
			return nil
		} else if !errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			return err
		}
		return w.Ledger.CancelBooked(ctx, appt.DocID, appt.SlotDate, appt.SlotTime)
	}

	if err := w.Appointments.MarkCancelled(ctx, appointmentID); err != nil {
		return err
	}
	if err := w.Ledger.CancelBooked(ctx, appt.DocID, appt.SlotDate, appt.SlotTime); err != nil {
		return err
	}

	w.notify(ctx, userID, cancellationMessage(appt))
	return nil
}

// notify enqueues a fire-and-forget email; failures never reach the caller.
func (w *ReservationWorkflow) notify(ctx context.Context, userID string, msg models.Message) {
	recipient, err := w.Users.GetRecipient(ctx, userID)
	if err != nil {
		w.Logger.Warn("could not resolve notification recipient",
			zap.String("userId", userID), zap.Error(err))
		return
	}
	payload := models.NotificationPayload{
		Recipient: recipient,
		Message:   msg,
		Channels:  []models.Channel{models.ChannelEmail},
	}
	if err := w.Notifier.Enqueue(ctx, payload); err != nil {
		w.Logger.Warn("failed to enqueue booking notification",
			zap.String("userId", userID), zap.Error(err))
	}
}

func confirmationMessage(appt *models.Appointment) models.Message {
	return models.Message{
		Subject: "Appointment Confirmation - DoctorDash",
		Body: fmt.Sprintf("Your appointment with Dr. %s on %s at %s is confirmed.",
			appt.DocName, appt.SlotDate, appt.SlotTime),
		Data: map[string]string{"appointmentId": appt.ID},
	}
}

func cancellationMessage(appt *models.Appointment) models.Message {
	return models.Message{
		Subject: "Appointment Cancellation - DoctorDash",
		Body: fmt.Sprintf("Your appointment with Dr. %s on %s at %s has been cancelled.",
			appt.DocName, appt.SlotDate, appt.SlotTime),
		Data: map[string]string{"appointmentId": appt.ID},
	}
}
