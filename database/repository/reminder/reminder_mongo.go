package reminderRepo

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

// MongoReminderRepo is the MongoDB-backed ReminderRepository.
type MongoReminderRepo struct {
	coll *mongo.Collection
}

func NewMongoReminderRepo() *MongoReminderRepo {
	return &MongoReminderRepo{coll: database.DB().Collection("reminders")}
}

func (r *MongoReminderRepo) Create(ctx context.Context, rem *models.Reminder) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if rem.ID == "" {
		rem.ID = uuid.New().String()
	}
	now := time.Now()
	rem.CreatedAt = now
	rem.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, rem); err != nil {
		return fmt.Errorf("insert reminder: %w", err)
	}
	return nil
}

func (r *MongoReminderRepo) Update(ctx context.Context, rem *models.Reminder) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rem.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": rem.ID}, rem)
	if err != nil {
		return fmt.Errorf("update reminder %s: %w", rem.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrReminderNotFound
	}
	return nil
}

func (r *MongoReminderRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete reminder %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrReminderNotFound
	}
	return nil
}

func (r *MongoReminderRepo) GetByID(ctx context.Context, id string) (*models.Reminder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rem models.Reminder
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&rem); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReminderNotFound
		}
		return nil, fmt.Errorf("fetch reminder %s: %w", id, err)
	}
	return &rem, nil
}

func (r *MongoReminderRepo) ListByUser(ctx context.Context, userID string) ([]models.Reminder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list reminders for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var rems []models.Reminder
	if err := cursor.All(ctx, &rems); err != nil {
		return nil, err
	}
	return rems, nil
}

func (r *MongoReminderRepo) FindDue(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"active":     true,
		"nextSendAt": bson.M{"$lte": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "nextSendAt", Value: 1}}).SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find due reminders: %w", err)
	}
	defer cursor.Close(ctx)

	var rems []models.Reminder
	if err := cursor.All(ctx, &rems); err != nil {
		return nil, err
	}
	return rems, nil
}

// ClaimFire matches on the exact NextSendAt the sweep read, so when two
// sweeps race over the same due reminder only the first update applies and
// only that sweep dispatches.
func (r *MongoReminderRepo) ClaimFire(ctx context.Context, id string, prevNextSendAt, firedAt, nextSendAt time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "active": true, "nextSendAt": prevNextSendAt}
	update := bson.M{"$set": bson.M{
		"lastSentAt": firedAt,
		"nextSendAt": nextSendAt,
		"updatedAt":  time.Now(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("claim fire for reminder %s: %w", id, err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoReminderRepo) SetNextSendAt(ctx context.Context, id string, nextSendAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"nextSendAt": nextSendAt, "updatedAt": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("postpone reminder %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrReminderNotFound
	}
	return nil
}
