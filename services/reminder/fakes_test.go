package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	appointmentRepo "doctordash/database/repository/appointment"
	reminderRepo "doctordash/database/repository/reminder"
	userRepo "doctordash/database/repository/user"
	"doctordash/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeReminderRepo is an in-memory ReminderRepository with the same
// compare-and-set fire claim as the Mongo implementation.
type fakeReminderRepo struct {
	mu        sync.Mutex
	reminders map[string]*models.Reminder
	nextID    int
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{reminders: make(map[string]*models.Reminder)}
}

func (r *fakeReminderRepo) Create(ctx context.Context, rem *models.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rem.ID == "" {
		r.nextID++
		rem.ID = fmt.Sprintf("rem-%d", r.nextID)
	}
	cp := *rem
	r.reminders[rem.ID] = &cp
	return nil
}

func (r *fakeReminderRepo) Update(ctx context.Context, rem *models.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reminders[rem.ID]; !ok {
		return reminderRepo.ErrReminderNotFound
	}
	cp := *rem
	r.reminders[rem.ID] = &cp
	return nil
}

func (r *fakeReminderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reminders[id]; !ok {
		return reminderRepo.ErrReminderNotFound
	}
	delete(r.reminders, id)
	return nil
}

func (r *fakeReminderRepo) GetByID(ctx context.Context, id string) (*models.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.reminders[id]
	if !ok {
		return nil, reminderRepo.ErrReminderNotFound
	}
	cp := *rem
	return &cp, nil
}

func (r *fakeReminderRepo) ListByUser(ctx context.Context, userID string) ([]models.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Reminder
	for _, rem := range r.reminders {
		if rem.UserID == userID {
			out = append(out, *rem)
		}
	}
	return out, nil
}

func (r *fakeReminderRepo) FindDue(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Reminder
	for _, rem := range r.reminders {
		if rem.Active && !rem.NextSendAt.After(now) {
			out = append(out, *rem)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeReminderRepo) ClaimFire(ctx context.Context, id string, prevNextSendAt, firedAt, nextSendAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.reminders[id]
	if !ok || !rem.Active || !rem.NextSendAt.Equal(prevNextSendAt) {
		return false, nil
	}
	fired := firedAt
	rem.LastSentAt = &fired
	rem.NextSendAt = nextSendAt
	return true, nil
}

func (r *fakeReminderRepo) SetNextSendAt(ctx context.Context, id string, nextSendAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.reminders[id]
	if !ok {
		return reminderRepo.ErrReminderNotFound
	}
	rem.NextSendAt = nextSendAt
	return nil
}

// fakeDirectory resolves a fixed set of recipients.
type fakeDirectory struct {
	recipients map[string]models.Recipient
}

func (d fakeDirectory) GetRecipient(ctx context.Context, userID string) (models.Recipient, error) {
	rec, ok := d.recipients[userID]
	if !ok {
		return models.Recipient{}, userRepo.ErrUserNotFound
	}
	return rec, nil
}

type sentMessage struct {
	To  models.Recipient
	Msg models.Message
}

// fakeChannel records sends and can be scripted to fail, either for every
// recipient or for one specific user.
type fakeChannel struct {
	mu     sync.Mutex
	kind   models.Channel
	err    error
	failTo string
	sent   []sentMessage
}

func (c *fakeChannel) Kind() models.Channel {
	return c.kind
}

func (c *fakeChannel) Send(ctx context.Context, to models.Recipient, msg models.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil && (c.failTo == "" || c.failTo == to.UserID) {
		return c.err
	}
	c.sent = append(c.sent, sentMessage{To: to, Msg: msg})
	return nil
}

func (c *fakeChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

// fakeAppointmentRepo backs the appointment alert sweep tests.
type fakeAppointmentRepo struct {
	mu    sync.Mutex
	appts map[string]*models.Appointment
}

func newFakeAppointmentRepo(appts ...*models.Appointment) *fakeAppointmentRepo {
	r := &fakeAppointmentRepo{appts: make(map[string]*models.Appointment)}
	for _, a := range appts {
		r.appts[a.ID] = a
	}
	return r
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *appt
	r.appts[appt.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appts[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	cp := *appt
	return &cp, nil
}

func (r *fakeAppointmentRepo) ListByUser(ctx context.Context, userID string) ([]models.Appointment, error) {
	return nil, nil
}

func (r *fakeAppointmentRepo) GetActiveBySlot(ctx context.Context, docID string, date models.DateKey, slot models.TimeSlot) (*models.Appointment, error) {
	return nil, appointmentRepo.ErrAppointmentNotFound
}

func (r *fakeAppointmentRepo) MarkCancelled(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appts[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	appt.Cancelled = true
	return nil
}

func (r *fakeAppointmentRepo) MarkCompleted(ctx context.Context, id string) error {
	return nil
}

func (r *fakeAppointmentRepo) ListUpcoming(ctx context.Context, after, before time.Time, limit int) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, appt := range r.appts {
		if !appt.Cancelled && appt.StartAt.After(after) && !appt.StartAt.After(before) {
			out = append(out, *appt)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ClaimReminderBucket(ctx context.Context, id, bucket string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appts[id]
	if !ok {
		return false, nil
	}
	for _, b := range appt.RemindersSent {
		if b == bucket {
			return false, nil
		}
	}
	appt.RemindersSent = append(appt.RemindersSent, bucket)
	return true, nil
}
