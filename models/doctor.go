package models

import "time"

// Doctor is the bookable resource. Its slot ledger state lives on the
// document itself: slots_booked holds confirmed appointments, slots_on_hold
// holds transient reservations awaiting payment. LedgerVersion is bumped on
// every ledger mutation and used as an optimistic concurrency check.
type Doctor struct {
	ID         string  `bson:"id" json:"id"`
	Name       string  `bson:"name" json:"name"`
	Email      string  `bson:"email" json:"email"`
	Speciality string  `bson:"speciality" json:"speciality"`
	Degree     string  `bson:"degree" json:"degree"`
	Experience string  `bson:"experience" json:"experience"`
	Fees       float64 `bson:"fees" json:"fees"`
	Available  bool    `bson:"available" json:"available"`

	SlotsBooked map[DateKey][]TimeSlot              `bson:"slots_booked" json:"slots_booked"`
	SlotsOnHold map[DateKey]map[TimeSlot]HoldRecord `bson:"slots_on_hold" json:"slots_on_hold"`

	LedgerVersion int64     `bson:"ledger_version" json:"-"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// SlotBooked reports whether the slot is confirmed for the given day.
func (d *Doctor) SlotBooked(date DateKey, slot TimeSlot) bool {
	for _, s := range d.SlotsBooked[date] {
		if s == slot {
			return true
		}
	}
	return false
}

// ActiveHold returns the unexpired hold on the slot, if any.
func (d *Doctor) ActiveHold(date DateKey, slot TimeSlot, now time.Time) (HoldRecord, bool) {
	rec, ok := d.SlotsOnHold[date][slot]
	if !ok || rec.Expired(now) {
		return HoldRecord{}, false
	}
	return rec, true
}
