package models

import (
	"fmt"
	"time"
)

// DateKeyLayout is the canonical calendar-date format used as the slot ledger map key.
const DateKeyLayout = "2006-01-02"

// SlotIncrementMinutes is the granularity of bookable slots.
const SlotIncrementMinutes = 30

// DateKey is a normalized calendar-date identifier ("2006-01-02").
// All slot ledger maps are keyed by it; never build one by string concatenation.
type DateKey string

// ParseDateKey validates and normalizes a date string into a DateKey.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(DateKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date key %q: %w", s, err)
	}
	return DateKey(t.Format(DateKeyLayout)), nil
}

// NewDateKey derives the DateKey for the calendar day of t.
func NewDateKey(t time.Time) DateKey {
	return DateKey(t.Format(DateKeyLayout))
}

func (d DateKey) String() string {
	return string(d)
}

// Time returns midnight of the keyed day in the given location.
func (d DateKey) Time(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateKeyLayout, string(d), loc)
}

// At combines the date with a time-of-day slot in the given location.
func (d DateKey) At(slot TimeSlot, loc *time.Location) (time.Time, error) {
	day, err := d.Time(loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(slot.MinutesFromMidnight()) * time.Minute), nil
}

// TimeSlot is a discrete bookable time-of-day unit in "15:04" format,
// aligned to SlotIncrementMinutes.
type TimeSlot string

// ParseTimeSlot validates and normalizes a time-of-day string into a TimeSlot.
func ParseTimeSlot(s string) (TimeSlot, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", fmt.Errorf("invalid time slot %q: %w", s, err)
	}
	if t.Minute()%SlotIncrementMinutes != 0 {
		return "", fmt.Errorf("time slot %q is not aligned to %d-minute increments", s, SlotIncrementMinutes)
	}
	return TimeSlot(t.Format("15:04")), nil
}

func (ts TimeSlot) String() string {
	return string(ts)
}

// MinutesFromMidnight returns the slot start as minutes after midnight.
// The receiver is assumed to have come through ParseTimeSlot.
func (ts TimeSlot) MinutesFromMidnight() int {
	t, err := time.Parse("15:04", string(ts))
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}

// HoldRecord is a transient per-slot reservation pending payment.
// An expired record is logically absent: readers must check Expired before
// treating the slot as taken.
type HoldRecord struct {
	HolderID  string    `bson:"holderId" json:"holderId"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
}

// Expired reports whether the hold has lapsed at the given moment.
func (h HoldRecord) Expired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}
