package doctorRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"doctordash/database"
	"doctordash/models"
)

// MongoDoctorRepo is the MongoDB-backed DoctorRepository.
type MongoDoctorRepo struct {
	coll *mongo.Collection
}

func NewMongoDoctorRepo() *MongoDoctorRepo {
	return &MongoDoctorRepo{coll: database.DB().Collection("doctors")}
}

func (r *MongoDoctorRepo) GetByID(ctx context.Context, id string) (*models.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc models.Doctor
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("fetch doctor %s: %w", id, err)
	}
	if doc.SlotsBooked == nil {
		doc.SlotsBooked = make(map[models.DateKey][]models.TimeSlot)
	}
	if doc.SlotsOnHold == nil {
		doc.SlotsOnHold = make(map[models.DateKey]map[models.TimeSlot]models.HoldRecord)
	}
	return &doc, nil
}

func (r *MongoDoctorRepo) GetAvailability(ctx context.Context, id string) (bool, error) {
	doc, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return doc.Available, nil
}

func (r *MongoDoctorRepo) GetFee(ctx context.Context, id string) (float64, error) {
	doc, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return doc.Fees, nil
}

// UpdateSlots writes the ledger maps with an optimistic version check. The
// filter matches only when ledger_version is unchanged since the read, so a
// concurrent writer causes a clean conflict instead of a lost update.
func (r *MongoDoctorRepo) UpdateSlots(ctx context.Context, id string, booked map[models.DateKey][]models.TimeSlot, held map[models.DateKey]map[models.TimeSlot]models.HoldRecord, expectedVersion int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "ledger_version": expectedVersion}
	update := bson.M{
		"$set": bson.M{
			"slots_booked":  booked,
			"slots_on_hold": held,
			"updated_at":    time.Now(),
		},
		"$inc": bson.M{"ledger_version": 1},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update slots for doctor %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		// Either the doctor vanished or the version moved; the caller read
		// the document moments ago, so treat it as a concurrent write.
		return ErrVersionConflict
	}
	return nil
}
