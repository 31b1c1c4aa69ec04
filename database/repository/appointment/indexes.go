// FILE: database/repository/appointment/indexes.go
package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the appointments collection.
func (r *MongoAppointmentRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "startAt", Value: -1}},
			Options: options.Index().SetName("user_start_idx"),
		},
		// Sweep query: non-cancelled appointments in a startAt window.
		{
			Keys:    bson.D{{Key: "cancelled", Value: 1}, {Key: "startAt", Value: 1}},
			Options: options.Index().SetName("cancelled_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "docId", Value: 1}, {Key: "slotDate", Value: 1}, {Key: "slotTime", Value: 1}},
			Options: options.Index().SetName("doc_slot_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}
	return nil
}
