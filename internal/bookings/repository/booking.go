package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "github.com/Lala-Rental/lala-rental-backend/internal/bookings/errors"
	"github.com/Lala-Rental/lala-rental-backend/pkg/config"
	mongotx "github.com/Lala-Rental/lala-rental-backend/pkg/db/mongo"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

// BookingRepository persists bookings. A non-empty scopeRenterID restricts
// reads and writes to bookings owned by that renter.
type BookingRepository interface {
	FindOverlapping(ctx context.Context, propertyID string, checkIn, checkOut time.Time, excludeID string, inclusive bool) ([]*model.Booking, error)
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string, scopeRenterID string) (*model.Booking, error)
	FindAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context, filter model.BookingFilter) (int64, error)
	Update(ctx context.Context, id string, booking *model.Booking, scopeRenterID string) (*model.Booking, error)
	Delete(ctx context.Context, id string, scopeRenterID string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout leaves session contexts untouched so calls stay inside the
// running transaction.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

// OverlapFilter selects non-cancelled bookings of propertyID whose stay
// intersects [checkIn, checkOut). inclusive also matches stays that only
// touch at a boundary.
func OverlapFilter(propertyID string, checkIn, checkOut time.Time, excludeID primitive.ObjectID, inclusive bool) bson.M {
	startOp, endOp := "$lt", "$gt"
	if inclusive {
		startOp, endOp = "$lte", "$gte"
	}

	filter := bson.M{
		"property_id": propertyID,
		"status":      bson.M{"$ne": model.BookingStatusCancelled},
		"check_in":    bson.M{startOp: checkOut},
		"check_out":   bson.M{endOp: checkIn},
	}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	return filter
}

func (r *mongoBookingRepository) FindOverlapping(ctx context.Context, propertyID string, checkIn, checkOut time.Time, excludeID string, inclusive bool) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var exclude primitive.ObjectID
	if excludeID != "" {
		oid, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, excludeID)
		}
		exclude = oid
	}

	opts := options.Find().SetSort(bson.D{{Key: "check_in", Value: 1}})
	cursor, err := r.collection.Find(ctx, OverlapFilter(propertyID, checkIn, checkOut, exclude, inclusive), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.ID = ""
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func scopedIDFilter(id, scopeRenterID string) (bson.M, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	if scopeRenterID != "" {
		filter["renter_id"] = scopeRenterID
	}
	return filter, nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string, scopeRenterID string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter, err := scopedIDFilter(id, scopeRenterID)
	if err != nil {
		return nil, err
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func listFilter(filter model.BookingFilter) bson.M {
	f := bson.M{}
	if filter.RenterID != "" {
		f["renter_id"] = filter.RenterID
	}
	if filter.PropertyID != "" {
		f["property_id"] = filter.PropertyID
	}
	return f
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "check_in", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, listFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, listFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	return count, nil
}

func (r *mongoBookingRepository) Update(ctx context.Context, id string, booking *model.Booking, scopeRenterID string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter, err := scopedIDFilter(id, scopeRenterID)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$set": bson.M{
			"check_in":   booking.CheckIn,
			"check_out":  booking.CheckOut,
			"status":     booking.Status,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated model.Booking
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	return &updated, nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string, scopeRenterID string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter, err := scopedIDFilter(id, scopeRenterID)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
