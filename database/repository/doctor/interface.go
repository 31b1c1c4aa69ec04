package doctorRepo

import (
	"context"
	"errors"

	"doctordash/models"
)

var (
	// ErrDoctorNotFound indicates the doctor does not exist.
	ErrDoctorNotFound = errors.New("doctor not found")
	// ErrVersionConflict indicates the ledger was modified concurrently and
	// the compare-and-set update did not apply.
	ErrVersionConflict = errors.New("doctor ledger version conflict")
)

// DoctorRepository provides access to doctor resources and their slot ledger
// state. It doubles as the resource directory for the booking workflow
// (availability flag, consultation fee).
type DoctorRepository interface {
	GetByID(ctx context.Context, id string) (*models.Doctor, error)
	GetAvailability(ctx context.Context, id string) (bool, error)
	GetFee(ctx context.Context, id string) (float64, error)

	// UpdateSlots persists new booked/held maps for the doctor, guarded by
	// the ledger version read alongside them. Returns ErrVersionConflict if
	// another writer got there first.
	UpdateSlots(ctx context.Context, id string, booked map[models.DateKey][]models.TimeSlot, held map[models.DateKey]map[models.TimeSlot]models.HoldRecord, expectedVersion int64) error
}
