package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	appointmentRepo "doctordash/database/repository/appointment"
	doctorRepo "doctordash/database/repository/doctor"
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

// fakeDoctorRepo is an in-memory DoctorRepository with the same optimistic
// version check as the Mongo implementation.
type fakeDoctorRepo struct {
	mu   sync.Mutex
	docs map[string]*models.Doctor
}

func newFakeDoctorRepo(docs ...*models.Doctor) *fakeDoctorRepo {
	r := &fakeDoctorRepo{docs: make(map[string]*models.Doctor)}
	for _, d := range docs {
		r.docs[d.ID] = d
	}
	return r
}

func (r *fakeDoctorRepo) GetByID(ctx context.Context, id string) (*models.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, doctorRepo.ErrDoctorNotFound
	}
	return copyDoctor(doc), nil
}

func (r *fakeDoctorRepo) GetAvailability(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return false, doctorRepo.ErrDoctorNotFound
	}
	return doc.Available, nil
}

func (r *fakeDoctorRepo) GetFee(ctx context.Context, id string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return 0, doctorRepo.ErrDoctorNotFound
	}
	return doc.Fees, nil
}

func (r *fakeDoctorRepo) UpdateSlots(ctx context.Context, id string, booked map[models.DateKey][]models.TimeSlot, held map[models.DateKey]map[models.TimeSlot]models.HoldRecord, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return doctorRepo.ErrDoctorNotFound
	}
	if doc.LedgerVersion != expectedVersion {
		return doctorRepo.ErrVersionConflict
	}
	doc.SlotsBooked = booked
	doc.SlotsOnHold = held
	doc.LedgerVersion++
	return nil
}

func copyDoctor(doc *models.Doctor) *models.Doctor {
	cp := *doc
	cp.SlotsBooked = make(map[models.DateKey][]models.TimeSlot, len(doc.SlotsBooked))
	for date, slots := range doc.SlotsBooked {
		cp.SlotsBooked[date] = append([]models.TimeSlot(nil), slots...)
	}
	cp.SlotsOnHold = make(map[models.DateKey]map[models.TimeSlot]models.HoldRecord, len(doc.SlotsOnHold))
	for date, slots := range doc.SlotsOnHold {
		inner := make(map[models.TimeSlot]models.HoldRecord, len(slots))
		for slot, rec := range slots {
			inner[slot] = rec
		}
		cp.SlotsOnHold[date] = inner
	}
	return &cp
}

// fakeAppointmentRepo is an in-memory AppointmentRepository.
type fakeAppointmentRepo struct {
	mu     sync.Mutex
	appts  map[string]*models.Appointment
	nextID int
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appts: make(map[string]*models.Appointment)}
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if appt.ID == "" {
		r.nextID++
		appt.ID = fmt.Sprintf("appt-%d", r.nextID)
	}
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
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, appt := range r.appts {
		if appt.UserID == userID {
			out = append(out, *appt)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) GetActiveBySlot(ctx context.Context, docID string, date models.DateKey, slot models.TimeSlot) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, appt := range r.appts {
		if appt.DocID == docID && appt.SlotDate == date && appt.SlotTime == slot && !appt.Cancelled {
			cp := *appt
			return &cp, nil
		}
	}
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
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appts[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	appt.Completed = true
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

// flakyLocker refuses a scripted number of acquisitions before delegating
// to the wrapped locker, mimicking transient contention on the doctor lock.
type flakyLocker struct {
	mu       sync.Mutex
	inner    SlotLocker
	failures int
}

func (l *flakyLocker) WithDoctorLock(ctx context.Context, docID string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	if l.failures > 0 {
		l.failures--
		l.mu.Unlock()
		return ErrLockNotAcquired
	}
	l.mu.Unlock()
	return l.inner.WithDoctorLock(ctx, docID, fn)
}

// fakeGateway is a scriptable PaymentGateway.
type fakeGateway struct {
	mu         sync.Mutex
	orderErr   error
	verifyErr  error
	verified   map[string]bool
	orders     int
	lastAmount float64
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{verified: make(map[string]bool)}
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount float64, currency string) (models.OrderRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.orderErr != nil {
		return models.OrderRef{}, g.orderErr
	}
	g.orders++
	g.lastAmount = amount
	return models.OrderRef{ID: "order-1", Amount: amount, Currency: currency}, nil
}

func (g *fakeGateway) Verify(ctx context.Context, ref string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.verifyErr != nil {
		return false, g.verifyErr
	}
	return g.verified[ref], nil
}

func (g *fakeGateway) markPaid(ref string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verified[ref] = true
}

// fakeUserDirectory resolves every user to a fixed recipient.
type fakeUserDirectory struct{}

func (fakeUserDirectory) GetRecipient(ctx context.Context, userID string) (models.Recipient, error) {
	return models.Recipient{
		UserID: userID,
		Name:   "Test User",
		Email:  userID + "@example.com",
	}, nil
}

// fakeEnqueuer records enqueued notification payloads.
type fakeEnqueuer struct {
	mu       sync.Mutex
	payloads []models.NotificationPayload
}

func (e *fakeEnqueuer) Enqueue(ctx context.Context, payload models.NotificationPayload) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.payloads = append(e.payloads, payload)
	return nil
}

func (e *fakeEnqueuer) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.payloads)
}
