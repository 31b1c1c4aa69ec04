package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctordash/models"
)

// 2026-03-16 is a Monday.
func monday(hour, minute int) time.Time {
	return time.Date(2026, 3, 16, hour, minute, 0, 0, time.UTC)
}

func TestNextFireTimeDaily(t *testing.T) {
	// Before today's occurrence: fires today.
	next, err := NextFireTime(models.FrequencyDaily, "09:00", nil, nil, monday(8, 0))
	require.NoError(t, err)
	assert.Equal(t, monday(9, 0), next)

	// After today's occurrence: fires tomorrow.
	next, err = NextFireTime(models.FrequencyDaily, "09:00", nil, nil, monday(10, 0))
	require.NoError(t, err)
	assert.Equal(t, monday(9, 0).AddDate(0, 0, 1), next)

	// Exactly at the occurrence: the result is strictly in the future.
	next, err = NextFireTime(models.FrequencyDaily, "09:00", nil, nil, monday(9, 0))
	require.NoError(t, err)
	assert.Equal(t, monday(9, 0).AddDate(0, 0, 1), next)
}

func TestNextFireTimeWeekly(t *testing.T) {
	days := []time.Weekday{time.Wednesday}

	// Monday morning, Wednesday rule: fires this Wednesday.
	next, err := NextFireTime(models.FrequencyWeekly, "09:00", days, nil, monday(8, 0))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 18, 9, 0, 0, 0, time.UTC), next)

	// Monday rule, Monday after the time has passed: wraps to next Monday.
	next, err = NextFireTime(models.FrequencyWeekly, "09:00", []time.Weekday{time.Monday}, nil, monday(10, 0))
	require.NoError(t, err)
	assert.Equal(t, monday(9, 0).AddDate(0, 0, 7), next)

	// Multiple days: the earliest eligible one wins.
	next, err = NextFireTime(models.FrequencyWeekly, "09:00", []time.Weekday{time.Friday, time.Wednesday}, nil, monday(8, 0))
	require.NoError(t, err)
	assert.Equal(t, time.Wednesday, next.Weekday())
}

func TestNextFireTimeWeeklyNoDays(t *testing.T) {
	_, err := NextFireTime(models.FrequencyWeekly, "09:00", nil, nil, monday(8, 0))
	assert.ErrorIs(t, err, ErrNoSelectedDays)
}

func TestNextFireTimeInvalidInput(t *testing.T) {
	_, err := NextFireTime(models.FrequencyDaily, "9am", nil, nil, monday(8, 0))
	assert.Error(t, err)

	_, err = NextFireTime(models.Frequency("monthly"), "09:00", nil, nil, monday(8, 0))
	assert.Error(t, err)
}

func TestNextFireTimeMinRefireGap(t *testing.T) {
	// Just fired at 08:50; the naive next fire 09:00 is only ten minutes
	// away, so the schedule jumps a full day.
	lastSent := monday(8, 50)
	next, err := NextFireTime(models.FrequencyDaily, "09:00", nil, &lastSent, monday(8, 50))
	require.NoError(t, err)
	assert.Equal(t, monday(9, 0).AddDate(0, 0, 1), next)

	// Weekly jumps a full week.
	next, err = NextFireTime(models.FrequencyWeekly, "09:00", []time.Weekday{time.Monday}, &lastSent, monday(8, 50))
	require.NoError(t, err)
	assert.Equal(t, monday(9, 0).AddDate(0, 0, 7), next)

	// A last send comfortably in the past does not disturb the schedule.
	old := monday(9, 0).AddDate(0, 0, -1)
	next, err = NextFireTime(models.FrequencyDaily, "09:00", nil, &old, monday(8, 0))
	require.NoError(t, err)
	assert.Equal(t, monday(9, 0), next)
}

func TestNextFireTimeDeterministic(t *testing.T) {
	days := []time.Weekday{time.Tuesday, time.Saturday}
	lastSent := monday(7, 0)

	first, err := NextFireTime(models.FrequencyWeekly, "14:30", days, &lastSent, monday(8, 0))
	require.NoError(t, err)
	second, err := NextFireTime(models.FrequencyWeekly, "14:30", days, &lastSent, monday(8, 0))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, first.After(monday(8, 0)))
}
