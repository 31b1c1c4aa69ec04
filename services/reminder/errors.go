package reminder

import "errors"

var (
	// ErrInvalidReminder means the submitted reminder fails
	// validation (unknown vital, bad time, weekly without days, invalid
	// channel). Rejected at write time, never stored.
	ErrInvalidReminder = errors.New("invalid reminder")

	// ErrNotOwner means the caller does not own the reminder.
	ErrNotOwner = errors.New("not authorized for this reminder")
)
