package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	propertieserrors "github.com/Lala-Rental/lala-rental-backend/internal/properties/errors"
	"github.com/Lala-Rental/lala-rental-backend/pkg/config"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Properties"
)

type PropertyRepository interface {
	Create(ctx context.Context, property *model.Property) error
	FindByID(ctx context.Context, id string) (*model.Property, error)
	FindAll(ctx context.Context, hostID string, limit int, offset int64) ([]*model.Property, error)
	Count(ctx context.Context, hostID string) (int64, error)
	Update(ctx context.Context, id string, property *model.Property) (*model.Property, error)
	AppendImages(ctx context.Context, id string, urls []string) (*model.Property, error)
	Delete(ctx context.Context, id string) error
}

type mongoPropertyRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPropertyRepository(cfg *config.Config) PropertyRepository {
	return &mongoPropertyRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", propertieserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func hostFilter(hostID string) bson.M {
	if hostID == "" {
		return bson.M{}
	}
	return bson.M{"host_id": hostID}
}

func (r *mongoPropertyRepository) Create(ctx context.Context, property *model.Property) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	property.CreatedAt = now
	property.UpdatedAt = now
	if property.Images == nil {
		property.Images = []string{}
	}

	result, err := r.collection.InsertOne(ctx, property)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		property.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPropertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var property model.Property
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&property); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, propertieserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}
	return &property, nil
}

func (r *mongoPropertyRepository) FindAll(ctx context.Context, hostID string, limit int, offset int64) ([]*model.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, hostFilter(hostID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find properties: %w", err)
	}
	defer cursor.Close(ctx)

	properties := []*model.Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return properties, nil
}

func (r *mongoPropertyRepository) Count(ctx context.Context, hostID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, hostFilter(hostID))
	if err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return count, nil
}

func (r *mongoPropertyRepository) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*model.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated model.Property
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, propertieserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	return &updated, nil
}

func (r *mongoPropertyRepository) Update(ctx context.Context, id string, property *model.Property) (*model.Property, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{
		"$set": bson.M{
			"title":       property.Title,
			"description": property.Description,
			"price":       property.Price,
			"location":    property.Location,
			"updated_at":  time.Now().UTC().Truncate(time.Millisecond),
		},
	})
}

func (r *mongoPropertyRepository) AppendImages(ctx context.Context, id string, urls []string) (*model.Property, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{
		"$push": bson.M{"images": bson.M{"$each": urls}},
		"$set":  bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	})
}

func (r *mongoPropertyRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if result.DeletedCount == 0 {
		return propertieserrors.ErrNotFound
	}
	return nil
}
