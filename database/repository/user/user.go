package userRepo

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

// ErrUserNotFound indicates the user does not exist.
var ErrUserNotFound = errors.New("user not found")

// RecipientDirectory resolves the contact details notifications are sent to.
type RecipientDirectory interface {
	GetRecipient(ctx context.Context, userID string) (models.Recipient, error)
}

// MongoUserRepo is the MongoDB-backed RecipientDirectory.
type MongoUserRepo struct {
	coll *mongo.Collection
}

func NewMongoUserRepo() *MongoUserRepo {
	return &MongoUserRepo{coll: database.DB().Collection("users")}
}

func (r *MongoUserRepo) GetRecipient(ctx context.Context, userID string) (models.Recipient, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc struct {
		ID       string `bson:"id"`
		Name     string `bson:"name"`
		Email    string `bson:"email"`
		Phone    string `bson:"phone"`
		FCMToken string `bson:"fcmToken"`
	}
	if err := r.coll.FindOne(ctx, bson.M{"id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Recipient{}, ErrUserNotFound
		}
		return models.Recipient{}, fmt.Errorf("fetch user %s: %w", userID, err)
	}

	return models.Recipient{
		UserID:   doc.ID,
		Name:     doc.Name,
		Email:    doc.Email,
		Phone:    doc.Phone,
		FCMToken: doc.FCMToken,
	}, nil
}
