package doctorRepo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"doctordash/models"
)

// DefaultProfileCacheTTL bounds how stale a cached availability flag or fee
// may get after the doctor edits their profile.
const DefaultProfileCacheTTL = 5 * time.Minute

// CachedDoctorRepo decorates a DoctorRepository with a Redis cache for the
// hot read-only lookups on the booking path (availability flag, consultation
// fee). Slot state is never cached: the ledger must read its own writes.
type CachedDoctorRepo struct {
	inner  DoctorRepository
	client *redis.Client
	ttl    time.Duration
}

func NewCachedDoctorRepo(inner DoctorRepository, client *redis.Client, ttl time.Duration) *CachedDoctorRepo {
	if ttl <= 0 {
		ttl = DefaultProfileCacheTTL
	}
	return &CachedDoctorRepo{inner: inner, client: client, ttl: ttl}
}

func (r *CachedDoctorRepo) GetByID(ctx context.Context, id string) (*models.Doctor, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *CachedDoctorRepo) GetAvailability(ctx context.Context, id string) (bool, error) {
	key := fmt.Sprintf("doctor:available:%s", id)
	if cached, err := r.client.Get(ctx, key).Result(); err == nil {
		return cached == "1", nil
	}

	available, err := r.inner.GetAvailability(ctx, id)
	if err != nil {
		return false, err
	}
	val := "0"
	if available {
		val = "1"
	}
	// A cache write failure only costs the next lookup a DB round trip.
	r.client.Set(ctx, key, val, r.ttl)
	return available, nil
}

func (r *CachedDoctorRepo) GetFee(ctx context.Context, id string) (float64, error) {
	key := fmt.Sprintf("doctor:fee:%s", id)
	if cached, err := r.client.Get(ctx, key).Result(); err == nil {
		if fee, parseErr := strconv.ParseFloat(cached, 64); parseErr == nil {
			return fee, nil
		}
	}

	fee, err := r.inner.GetFee(ctx, id)
	if err != nil {
		return 0, err
	}
	r.client.Set(ctx, key, strconv.FormatFloat(fee, 'f', -1, 64), r.ttl)
	return fee, nil
}

func (r *CachedDoctorRepo) UpdateSlots(ctx context.Context, id string, booked map[models.DateKey][]models.TimeSlot, held map[models.DateKey]map[models.TimeSlot]models.HoldRecord, expectedVersion int64) error {
	return r.inner.UpdateSlots(ctx, id, booked, held, expectedVersion)
}
