package booking

import "errors"

var (
	// ErrSlotUnavailable means the requested slot is booked or actively held
	// by someone else; the client should pick another slot.
	ErrSlotUnavailable = errors.New("slot not available")

	// ErrHoldExpired means the hold backing a token has lapsed, was released,
	// or belongs to a different holder; the client restarts the hold flow.
	ErrHoldExpired = errors.New("hold expired or no longer valid")

	// ErrDoctorUnavailable means the doctor has bookings switched off.
	ErrDoctorUnavailable = errors.New("doctor not available")

	// ErrPaymentFailed means the gateway did not confirm the charge. The
	// hold stays in place until its TTL so the user may retry.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrUnauthorized means the caller does not own the appointment or hold
	// it is acting on.
	ErrUnauthorized = errors.New("unauthorized action")

	// ErrLedgerBusy means a concurrent request held the doctor's ledger
	// while a finalize, release, or cancel tried to write. Retryable.
	ErrLedgerBusy = errors.New("doctor ledger busy, retry")
)
