package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	doctorRepo "doctordash/database/repository/doctor"
	"doctordash/models"
	"doctordash/utils"
)

// SlotLedger is the single mutation point for a doctor's slot state. A
// (date, slot) pair is in at most one of booked or held-unexpired at any
// time; expired holds are logically absent and reclaimed lazily.
//
// Every operation runs its read-check-write cycle under the doctor's lock,
// with the repository's version check as a second guard, so concurrent
// requests for the same slot cannot both succeed.
type SlotLedger struct {
	Repo    doctorRepo.DoctorRepository
	Locker  SlotLocker
	Clock   utils.Clock
	HoldTTL time.Duration
	Logger  *zap.Logger
}

func NewSlotLedger(repo doctorRepo.DoctorRepository, locker SlotLocker, clock utils.Clock, logger *zap.Logger) *SlotLedger {
	return &SlotLedger{
		Repo:    repo,
		Locker:  locker,
		Clock:   clock,
		HoldTTL: utils.DefaultHoldTTL,
		Logger:  logger,
	}
}

// TryHold registers a transient reservation on the slot. It fails with
// ErrSlotUnavailable when the slot is booked or actively held by a different
// holder; an expired hold is overwritten. A repeat call by the same holder
// refreshes the hold's expiry.
func (l *SlotLedger) TryHold(ctx context.Context, docID string, date models.DateKey, slot models.TimeSlot, holderID string) (models.HoldRecord, error) {
	var rec models.HoldRecord

	err := l.Locker.WithDoctorLock(ctx, docID, func(ctx context.Context) error {
		doc, err := l.Repo.GetByID(ctx, docID)
		if err != nil {
			return err
		}
		now := l.Clock.Now()

		if doc.SlotBooked(date, slot) {
			return ErrSlotUnavailable
		}
		if existing, ok := doc.ActiveHold(date, slot, now); ok && existing.HolderID != holderID {
			return ErrSlotUnavailable
		}

		l.pruneExpired(doc, now)

		rec = models.HoldRecord{
			HolderID:  holderID,
			CreatedAt: now,
			ExpiresAt: now.Add(l.HoldTTL),
		}
		if doc.SlotsOnHold[date] == nil {
			doc.SlotsOnHold[date] = make(map[models.TimeSlot]models.HoldRecord)
		}
		doc.SlotsOnHold[date][slot] = rec

		return l.Repo.UpdateSlots(ctx, docID, doc.SlotsBooked, doc.SlotsOnHold, doc.LedgerVersion)
	})
	if err != nil {
		if errors.Is(err, ErrLockNotAcquired) || errors.Is(err, doctorRepo.ErrVersionConflict) {
			// Someone else is mutating this doctor's ledger right now; from
			// the caller's perspective the slot is contested.
			return models.HoldRecord{}, ErrSlotUnavailable
		}
		return models.HoldRecord{}, err
	}
	return rec, nil
}

// Release removes the hold only if it still belongs to holderID. Releasing
// an absent, expired, or already-promoted hold is a successful no-op.
func (l *SlotLedger) Release(ctx context.Context, docID string, date models.DateKey, slot models.TimeSlot, holderID string) error {
	return mapLedgerConflict(l.Locker.WithDoctorLock(ctx, docID, func(ctx context.Context) error {
		doc, err := l.Repo.GetByID(ctx, docID)
		if err != nil {
			return err
		}

		rec, ok := doc.SlotsOnHold[date][slot]
		if !ok || rec.HolderID != holderID {
			return nil
		}

		l.removeHold(doc, date, slot)
		return l.Repo.UpdateSlots(ctx, docID, doc.SlotsBooked, doc.SlotsOnHold, doc.LedgerVersion)
	}))
}

// Finalize promotes the holder's unexpired hold to a confirmed booking.
// Expiry is re-checked here, not just at hold time, because the payment
// round-trip can be slow. Fails with ErrHoldExpired when the hold is gone,
// lapsed, or owned by someone else.
func (l *SlotLedger) Finalize(ctx context.Context, docID string, date models.DateKey, slot models.TimeSlot, holderID string) error {
	return mapLedgerConflict(l.Locker.WithDoctorLock(ctx, docID, func(ctx context.Context) error {
		doc, err := l.Repo.GetByID(ctx, docID)
		if err != nil {
			return err
		}
		now := l.Clock.Now()

		rec, ok := doc.ActiveHold(date, slot, now)
		if !ok || rec.HolderID != holderID {
			return ErrHoldExpired
		}
		if doc.SlotBooked(date, slot) {
			// Ledger corruption guard: a booked slot must never carry a live
			// hold. Drop the hold rather than double-book.
			l.Logger.Error("booked slot still had an active hold",
				zap.String("docId", docID),
				zap.String("date", date.String()),
				zap.String("slot", slot.String()))
			l.removeHold(doc, date, slot)
			if err := l.Repo.UpdateSlots(ctx, docID, doc.SlotsBooked, doc.SlotsOnHold, doc.LedgerVersion); err != nil {
				return err
			}
			return ErrHoldExpired
		}

		l.removeHold(doc, date, slot)
		doc.SlotsBooked[date] = append(doc.SlotsBooked[date], slot)

		return l.Repo.UpdateSlots(ctx, docID, doc.SlotsBooked, doc.SlotsOnHold, doc.LedgerVersion)
	}))
}

// CancelBooked removes a confirmed booking, making the slot available again.
// Cancelling a slot that is not booked is a harmless rewrite.
func (l *SlotLedger) CancelBooked(ctx context.Context, docID string, date models.DateKey, slot models.TimeSlot) error {
	return mapLedgerConflict(l.Locker.WithDoctorLock(ctx, docID, func(ctx context.Context) error {
		doc, err := l.Repo.GetByID(ctx, docID)
		if err != nil {
			return err
		}

		slots := doc.SlotsBooked[date]
		kept := slots[:0]
		for _, s := range slots {
			if s != slot {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			delete(doc.SlotsBooked, date)
		} else {
			doc.SlotsBooked[date] = kept
		}

		if err := l.Repo.UpdateSlots(ctx, docID, doc.SlotsBooked, doc.SlotsOnHold, doc.LedgerVersion); err != nil {
			return fmt.Errorf("cancel booked slot: %w", err)
		}
		return nil
	}))
}

// mapLedgerConflict converts lock and version contention on the
// post-hold operations into the retryable ErrLedgerBusy. TryHold maps the
// same contention to ErrSlotUnavailable instead: for a caller racing to
// hold, a contested ledger and a taken slot look the same.
func mapLedgerConflict(err error) error {
	if errors.Is(err, ErrLockNotAcquired) || errors.Is(err, doctorRepo.ErrVersionConflict) {
		return ErrLedgerBusy
	}
	return err
}

// pruneExpired drops lapsed holds while the document is already being
// rewritten, keeping the held maps from accumulating dead entries.
func (l *SlotLedger) pruneExpired(doc *models.Doctor, now time.Time) {
	for date, slots := range doc.SlotsOnHold {
		for slot, rec := range slots {
			if rec.Expired(now) {
				delete(slots, slot)
			}
		}
		if len(slots) == 0 {
			delete(doc.SlotsOnHold, date)
		}
	}
}

func (l *SlotLedger) removeHold(doc *models.Doctor, date models.DateKey, slot models.TimeSlot) {
	delete(doc.SlotsOnHold[date], slot)
	if len(doc.SlotsOnHold[date]) == 0 {
		delete(doc.SlotsOnHold, date)
	}
}
