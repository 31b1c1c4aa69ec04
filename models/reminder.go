package models

import (
	"fmt"
	"time"
)

// Frequency is the recurrence cadence of a reminder.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

func (f Frequency) Valid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}

// Channel is a notification delivery method. Stored as a validated enum
// rather than free-form strings.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelPush     Channel = "push"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelWhatsApp, ChannelPush:
		return true
	}
	return false
}

// VitalType identifies which health metric a reminder is about.
type VitalType string

const (
	VitalBloodPressure   VitalType = "blood-pressure"
	VitalHeartRate       VitalType = "heart-rate"
	VitalBloodSugar      VitalType = "blood-sugar"
	VitalBodyTemperature VitalType = "body-temperature"
	VitalWeight          VitalType = "weight"
	VitalOxygenLevel     VitalType = "oxygen-level"
)

var vitalDisplayNames = map[VitalType]string{
	VitalBloodPressure:   "Blood Pressure",
	VitalHeartRate:       "Heart Rate",
	VitalBloodSugar:      "Blood Sugar",
	VitalBodyTemperature: "Body Temperature",
	VitalWeight:          "Weight",
	VitalOxygenLevel:     "Oxygen Level",
}

func (v VitalType) Valid() bool {
	_, ok := vitalDisplayNames[v]
	return ok
}

// DisplayName returns the human-readable vital name for notifications.
func (v VitalType) DisplayName() string {
	if name, ok := vitalDisplayNames[v]; ok {
		return name
	}
	return string(v)
}

// Reminder is a recurring health-tracking nudge. NextSendAt is derived state:
// it is recomputed whenever cadence, time, days, active, or LastSentAt change,
// and is always strictly in the future at the moment of calculation.
type Reminder struct {
	ID         string         `bson:"id" json:"id"`
	UserID     string         `bson:"userId" json:"userId"`
	VitalType  VitalType      `bson:"vitalType" json:"vitalType"`
	Frequency  Frequency      `bson:"frequency" json:"frequency"`
	Time       string         `bson:"time" json:"time"` // "HH:MM", reference timezone
	DaysOfWeek []time.Weekday `bson:"daysOfWeek,omitempty" json:"daysOfWeek,omitempty"`
	Active     bool           `bson:"active" json:"active"`
	Channels   []Channel      `bson:"channels" json:"channels"`
	LastSentAt *time.Time     `bson:"lastSentAt,omitempty" json:"lastSentAt,omitempty"`
	NextSendAt time.Time      `bson:"nextSendAt" json:"nextSendAt"`
	CreatedAt  time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// ParseReminderTime validates an "HH:MM" time-of-day string and returns the
// hour and minute components.
func ParseReminderTime(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid reminder time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}
