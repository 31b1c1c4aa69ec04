package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"doctordash/database"
	"doctordash/models"
)

// MongoAppointmentRepo is the MongoDB-backed AppointmentRepository.
type MongoAppointmentRepo struct {
	coll *mongo.Collection
}

func NewMongoAppointmentRepo() *MongoAppointmentRepo {
	return &MongoAppointmentRepo{coll: database.DB().Collection("appointments")}
}

func (r *MongoAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, appt); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *MongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("fetch appointment %s: %w", id, err)
	}
	return &appt, nil
}

func (r *MongoAppointmentRepo) ListByUser(ctx context.Context, userID string) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "startAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list appointments for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *MongoAppointmentRepo) GetActiveBySlot(ctx context.Context, docID string, date models.DateKey, slot models.TimeSlot) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"docId":     docID,
		"slotDate":  date,
		"slotTime":  slot,
		"cancelled": false,
	}
	var appt models.Appointment
	if err := r.coll.FindOne(ctx, filter).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("fetch appointment by slot: %w", err)
	}
	return &appt, nil
}

func (r *MongoAppointmentRepo) MarkCancelled(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "cancelled")
}

func (r *MongoAppointmentRepo) MarkCompleted(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "completed")
}

func (r *MongoAppointmentRepo) setFlag(ctx context.Context, id, field string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{field: true}})
	if err != nil {
		return fmt.Errorf("set %s on appointment %s: %w", field, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *MongoAppointmentRepo) ListUpcoming(ctx context.Context, after, before time.Time, limit int) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"cancelled": false,
		"startAt":   bson.M{"$gt": after, "$lte": before},
	}
	opts := options.Find().SetSort(bson.D{{Key: "startAt", Value: 1}}).SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list upcoming appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

// ClaimReminderBucket appends the bucket marker only if it is not present
// yet; matching on its absence makes the claim atomic, so two overlapping
// sweeps cannot both observe the bucket as unsent.
func (r *MongoAppointmentRepo) ClaimReminderBucket(ctx context.Context, id, bucket string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "remindersSent": bson.M{"$ne": bucket}}
	update := bson.M{"$push": bson.M{"remindersSent": bucket}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("claim reminder bucket %s for appointment %s: %w", bucket, id, err)
	}
	return res.ModifiedCount == 1, nil
}
