package models

import "time"

// Appointment is the system-of-record booking created at finalize time.
// Identity fields (doctor, patient, slot, amount) never change after
// creation; only the status flags are mutable. Slot uniqueness is enforced
// by the doctor's ledger, not here.
type Appointment struct {
	ID       string   `bson:"id" json:"id"`
	UserID   string   `bson:"userId" json:"userId"`
	DocID    string   `bson:"docId" json:"docId"`
	DocName  string   `bson:"docName" json:"docName"`
	SlotDate DateKey  `bson:"slotDate" json:"slotDate"`
	SlotTime TimeSlot `bson:"slotTime" json:"slotTime"`
	Amount   float64  `bson:"amount" json:"amount"`

	// StartAt is the absolute appointment start, derived from SlotDate and
	// SlotTime at creation so sweeps can range-query without date parsing.
	StartAt time.Time `bson:"startAt" json:"startAt"`

	Cancelled     bool   `bson:"cancelled" json:"cancelled"`
	Completed     bool   `bson:"completed" json:"completed"`
	Payment       bool   `bson:"payment" json:"payment"`
	TransactionID string `bson:"transactionId,omitempty" json:"transactionId,omitempty"`

	// RemindersSent records which pre-appointment lead-time buckets have
	// already fired, e.g. "lead-60m". Claimed atomically by the sweep.
	RemindersSent []string `bson:"remindersSent,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
