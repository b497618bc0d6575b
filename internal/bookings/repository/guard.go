package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "github.com/Lala-Rental/lala-rental-backend/internal/bookings/errors"
	"github.com/Lala-Rental/lala-rental-backend/pkg/config"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const GuardCollectionName = "Booking_locks"

// GuardRepository serializes admissions per property. Every admission
// transaction writes the property's guard document first, so two
// transactions for the same property cannot both commit.
type GuardRepository interface {
	Touch(ctx context.Context, propertyID string) (*model.PropertyGuard, error)
}

type mongoGuardRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoGuardRepository(cfg *config.Config) GuardRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoGuardRepository{
		cfg:        cfg,
		collection: db.Collection(GuardCollectionName),
	}
}

func (r *mongoGuardRepository) Touch(ctx context.Context, propertyID string) (*model.PropertyGuard, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"version": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var guard model.PropertyGuard
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": propertyID}, update, opts).Decode(&guard)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrGuardContention, propertyID)
		}
		return nil, fmt.Errorf("failed to touch booking guard: %w", err)
	}
	return &guard, nil
}
