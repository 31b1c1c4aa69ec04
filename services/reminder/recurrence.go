package reminder

import (
	"errors"
	"time"

	"doctordash/models"
)

// MinRefireInterval is the smallest allowed gap between two fires of the
// same reminder. A naive next-fire closer than this to the last send is
// pushed forward by one full cadence unit.
const MinRefireInterval = 12 * time.Hour

// ErrNoSelectedDays means a weekly rule carries no days. Rules are
// validated at write time, so hitting this at calculation time indicates a
// corrupt record.
var ErrNoSelectedDays = errors.New("weekly reminder has no selected days")

// NextFireTime computes when the reminder should fire next. The result is
// strictly after now, and at least MinRefireInterval after lastSent when
// set. Pure: identical inputs always yield the same timestamp.
//
// All calendar math happens in now's location; the caller supplies a now
// already shifted into the subject's reference timezone.
func NextFireTime(freq models.Frequency, timeOfDay string, days []time.Weekday, lastSent *time.Time, now time.Time) (time.Time, error) {
	hour, minute, err := models.ParseReminderTime(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}

	var next time.Time
	switch freq {
	case models.FrequencyDaily:
		next = at(now, 0, hour, minute)
		if !next.After(now) {
			next = at(now, 1, hour, minute)
		}

	case models.FrequencyWeekly:
		if len(days) == 0 {
			return time.Time{}, ErrNoSelectedDays
		}
		selected := make(map[time.Weekday]bool, len(days))
		for _, d := range days {
			selected[d] = true
		}
		// Scan up to a full week ahead, wrapping through today's weekday
		// again at offset 7 in case today's occurrence already passed.
		found := false
		for offset := 0; offset <= 7; offset++ {
			candidate := at(now, offset, hour, minute)
			if selected[candidate.Weekday()] && candidate.After(now) {
				next = candidate
				found = true
				break
			}
		}
		if !found {
			return time.Time{}, ErrNoSelectedDays
		}

	default:
		return time.Time{}, errors.New("unknown reminder frequency: " + string(freq))
	}

	// Avoid a near-immediate re-fire after a send: push forward by one
	// cadence unit rather than returning a time inside the minimum gap.
	if lastSent != nil && next.Sub(*lastSent) < MinRefireInterval {
		if freq == models.FrequencyDaily {
			next = next.AddDate(0, 0, 1)
		} else {
			next = next.AddDate(0, 0, 7)
		}
	}

	return next, nil
}

// at builds the timestamp for timeOfDay on now's calendar day plus offset
// days, in now's location.
func at(now time.Time, offsetDays, hour, minute int) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+offsetDays, hour, minute, 0, 0, now.Location())
}
