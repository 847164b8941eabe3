package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/therapytreasure/backend/internal/config"
	"github.com/therapytreasure/backend/internal/database"
	"github.com/therapytreasure/backend/internal/models"
	"github.com/therapytreasure/backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes configures MongoDB indexes. Called on startup from main
// after Mongo has connected.
func EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_users_email"),
		}},
		"schedules": {{
			Keys: bson.D{
				{Key: "therapist_id", Value: 1},
				{Key: "date", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("idx_schedules_therapist_date"),
		}},
		"bookings": {{
			Keys: bson.D{
				{Key: "therapist_id", Value: 1},
				{Key: "appointment_date", Value: 1},
			},
			Options: options.Index().SetName("idx_bookings_therapist_date"),
		}},
		"therapists": {{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_therapists_user"),
		}},
		"expertises": {{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_expertises_name"),
		}},
		"categories": {{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_categories_name"),
		}},
	}

	for collection, idx := range indexes {
		if _, err := database.DB.Collection(collection).Indexes().CreateMany(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}

// EnsureAdminUser seeds the administrator account from ADMIN_EMAIL and
// ADMIN_PASSWORD when it does not exist yet.
func EnsureAdminUser(ctx context.Context, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	users := database.DB.Collection("users")

	err := users.FindOne(ctx, bson.M{"email": cfg.AdminEmail}).Err()
	if err == nil {
		log.Println("Admin user already exists")
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	hashed, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = users.InsertOne(ctx, models.User{
		CreatedAt:     now,
		UpdatedAt:     now,
		Name:          "name",
		Surname:       "surname",
		Email:         cfg.AdminEmail,
		Password:      hashed,
		Role:          models.RoleAdmin,
		EmailVerified: true,
	})
	if err != nil {
		return err
	}

	log.Println("Admin user has been created successfully")
	return nil
}
