package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"doctordash/config"
	"doctordash/database"
	"doctordash/models"
)

// Seeds the doctors and users collections with simulation data for local
// testing of the booking flow.
func main() {
	config.LoadConfig()
	database.InitDB()
	db := database.DB()
	doctorColl := db.Collection("doctors")
	userColl := db.Collection("users")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if _, err := doctorColl.DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatalf("Failed to clear doctors collection: %v", err)
	}
	if _, err := userColl.DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatalf("Failed to clear users collection: %v", err)
	}

	specialities := []string{"General physician", "Dermatologist", "Pediatrician", "Neurologist", "Gynecologist"}
	doctorsPerSpeciality := 4

	var doctors []interface{}
	counter := 1
	for _, spec := range specialities {
		for i := 1; i <= doctorsPerSpeciality; i++ {
			doctor := models.Doctor{
				ID:            fmt.Sprintf("doc-%d", counter),
				Name:          fmt.Sprintf("%s %d", spec, counter),
				Email:         fmt.Sprintf("doctor_%d@example.com", counter),
				Speciality:    spec,
				Degree:        "MBBS",
				Experience:    fmt.Sprintf("%d Years", 1+rand.Intn(10)),
				Fees:          float64(30 + 10*rand.Intn(8)),
				Available:     true,
				SlotsBooked:   map[models.DateKey][]models.TimeSlot{},
				SlotsOnHold:   map[models.DateKey]map[models.TimeSlot]models.HoldRecord{},
				LedgerVersion: 1,
				CreatedAt:     time.Now(),
				UpdatedAt:     time.Now(),
			}
			doctors = append(doctors, doctor)
			counter++
		}
	}

	insertResult, err := doctorColl.InsertMany(ctx, doctors)
	if err != nil {
		log.Fatalf("Failed to insert doctors: %v", err)
	}
	fmt.Printf("Inserted %d doctors\n", len(insertResult.InsertedIDs))

	var users []interface{}
	for i := 1; i <= 10; i++ {
		users = append(users, bson.M{
			"id":       fmt.Sprintf("user-%d", i),
			"name":     fmt.Sprintf("Test User %d", i),
			"email":    fmt.Sprintf("user_%d@example.com", i),
			"phone":    fmt.Sprintf("91900000%04d", i),
			"fcmToken": "",
		})
	}
	userResult, err := userColl.InsertMany(ctx, users)
	if err != nil {
		log.Fatalf("Failed to insert users: %v", err)
	}
	fmt.Printf("Inserted %d users\n", len(userResult.InsertedIDs))
}
