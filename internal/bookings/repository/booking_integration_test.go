//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	bookingserrors "github.com/Lala-Rental/lala-rental-backend/internal/bookings/errors"
	"github.com/Lala-Rental/lala-rental-backend/pkg/client"
	"github.com/Lala-Rental/lala-rental-backend/pkg/config"
	"github.com/Lala-Rental/lala-rental-backend/pkg/logger"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultMongoURI = "mongodb://localhost:27017/?replicaSet=rs0"

func newIntegrationConfig(t *testing.T) *config.Config {
	t.Helper()

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = defaultMongoURI
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	dbName := fmt.Sprintf("lala_it_%d", time.Now().UnixNano())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Database(dbName).Drop(ctx); err != nil {
			t.Logf("warning: failed to drop %s: %v", dbName, err)
		}
		_ = mongoClient.Disconnect(ctx)
	})

	return &config.Config{
		MongoDatabaseName: dbName,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		Log:               logger.Nop(),
		Client:            &client.Client{Mongo: mongoClient},
	}
}

func day(d int) time.Time {
	return time.Date(2030, 6, d, 0, 0, 0, 0, time.UTC)
}

func TestIntegration_FindOverlapping(t *testing.T) {
	cfg := newIntegrationConfig(t)
	repo := NewMongoBookingRepository(cfg)
	ctx := context.Background()

	const property = "65f1c0ffee0ddba11ad0be01"
	existing := &model.Booking{PropertyID: property, RenterID: "r1", CheckIn: day(10), CheckOut: day(15), Status: model.BookingStatusConfirmed}
	cancelled := &model.Booking{PropertyID: property, RenterID: "r2", CheckIn: day(20), CheckOut: day(25), Status: model.BookingStatusCancelled}
	for _, b := range []*model.Booking{existing, cancelled} {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tests := []struct {
		name      string
		checkIn   time.Time
		checkOut  time.Time
		excludeID string
		inclusive bool
		want      int
	}{
		{"inside", day(11), day(12), "", true, 1},
		{"touching end inclusive", day(15), day(17), "", true, 1},
		{"touching end half-open", day(15), day(17), "", false, 0},
		{"touching start half-open", day(8), day(10), "", false, 0},
		{"disjoint", day(1), day(5), "", true, 0},
		{"over cancelled", day(21), day(22), "", true, 0},
		{"excluding self", day(11), day(12), existing.ID, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindOverlapping(ctx, property, tt.checkIn, tt.checkOut, tt.excludeID, tt.inclusive)
			if err != nil {
				t.Fatalf("find overlapping: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d overlaps, got %d", tt.want, len(got))
			}
		})
	}
}

func TestIntegration_GuardTouchIncrementsVersion(t *testing.T) {
	cfg := newIntegrationConfig(t)
	guard := NewMongoGuardRepository(cfg)
	ctx := context.Background()

	first, err := guard.Touch(ctx, "65f1c0ffee0ddba11ad0be01")
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	second, err := guard.Touch(ctx, "65f1c0ffee0ddba11ad0be01")
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	if second.Version != first.Version+1 {
		t.Errorf("expected version %d, got %d", first.Version+1, second.Version)
	}
}

func TestIntegration_ScopedUpdateAndDelete(t *testing.T) {
	cfg := newIntegrationConfig(t)
	repo := NewMongoBookingRepository(cfg)
	ctx := context.Background()

	booking := &model.Booking{PropertyID: "65f1c0ffee0ddba11ad0be01", RenterID: "r1", CheckIn: day(1), CheckOut: day(3), Status: model.BookingStatusPending}
	if err := repo.Create(ctx, booking); err != nil {
		t.Fatalf("create: %v", err)
	}

	booking.Status = model.BookingStatusConfirmed
	if _, err := repo.Update(ctx, booking.ID, booking, "someone-else"); err == nil {
		t.Error("update scoped to another renter should fail")
	}
	updated, err := repo.Update(ctx, booking.ID, booking, "r1")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != model.BookingStatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", updated.Status)
	}

	if err := repo.Delete(ctx, booking.ID, "someone-else"); err == nil {
		t.Error("delete scoped to another renter should fail")
	}
	if err := repo.Delete(ctx, booking.ID, ""); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

var errOverlap = errors.New("overlapping stay")

// admitOnce mirrors the booking service admission: guard touch, overlap
// query and insert in one transaction, retried while the guard is contended.
func admitOnce(ctx context.Context, repo BookingRepository, guard GuardRepository, booking *model.Booking) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			if _, err := guard.Touch(txCtx, booking.PropertyID); err != nil {
				return err
			}
			overlapping, err := repo.FindOverlapping(txCtx, booking.PropertyID, booking.CheckIn, booking.CheckOut, "", true)
			if err != nil {
				return err
			}
			if len(overlapping) > 0 {
				return errOverlap
			}
			candidate := *booking
			return repo.Create(txCtx, &candidate)
		})
		if !errors.Is(err, bookingserrors.ErrGuardContention) {
			return err
		}
	}
	return err
}

func TestIntegration_ConcurrentAdmissionCommitsExactlyOne(t *testing.T) {
	tests := []struct {
		name       string
		guardFirst bool
	}{
		{"existing guard", true},
		{"first ever guard", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newIntegrationConfig(t)
			ctx := context.Background()

			db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
			for _, name := range []string{CollectionName, GuardCollectionName} {
				if err := db.CreateCollection(ctx, name); err != nil {
					t.Fatalf("create collection %s: %v", name, err)
				}
			}

			repo := NewMongoBookingRepository(cfg)
			guard := NewMongoGuardRepository(cfg)
			const property = "65f1c0ffee0ddba11ad0be09"
			if tt.guardFirst {
				if _, err := guard.Touch(ctx, property); err != nil {
					t.Fatalf("touch: %v", err)
				}
			}

			const workers = 8
			var wg sync.WaitGroup
			start := make(chan struct{})
			results := make([]error, workers)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					results[i] = admitOnce(ctx, repo, guard, &model.Booking{
						PropertyID: property,
						RenterID:   fmt.Sprintf("renter-%d", i),
						CheckIn:    day(10 + i%3),
						CheckOut:   day(14 + i%3),
						Status:     model.BookingStatusPending,
					})
				}(i)
			}
			close(start)
			wg.Wait()

			committed := 0
			for i, err := range results {
				switch {
				case err == nil:
					committed++
				case errors.Is(err, errOverlap), errors.Is(err, bookingserrors.ErrGuardContention):
				default:
					t.Errorf("worker %d: unexpected error: %v", i, err)
				}
			}
			if committed != 1 {
				t.Errorf("expected exactly one committed admission, got %d", committed)
			}

			stored, err := repo.FindOverlapping(ctx, property, day(1), day(30), "", true)
			if err != nil {
				t.Fatalf("find overlapping: %v", err)
			}
			if len(stored) != 1 {
				t.Errorf("expected one stored booking, got %d", len(stored))
			}
		})
	}
}

func TestIntegration_FirstGuardRaceReportsContention(t *testing.T) {
	cfg := newIntegrationConfig(t)
	ctx := context.Background()

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := db.CreateCollection(ctx, GuardCollectionName); err != nil {
		t.Fatalf("create collection: %v", err)
	}
	repo := NewMongoBookingRepository(cfg)
	guard := NewMongoGuardRepository(cfg)

	const workers = 8
	var wg sync.WaitGroup
	start := make(chan struct{})
	results := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i] = repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
				_, err := guard.Touch(txCtx, "65f1c0ffee0ddba11ad0be0a")
				return err
			})
		}(i)
	}
	close(start)
	wg.Wait()

	for i, err := range results {
		if err != nil && !errors.Is(err, bookingserrors.ErrGuardContention) {
			t.Errorf("worker %d: expected nil or guard contention, got %v", i, err)
		}
	}

	final, err := guard.Touch(ctx, "65f1c0ffee0ddba11ad0be0a")
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	var succeeded int64
	for _, err := range results {
		if err == nil {
			succeeded++
		}
	}
	if final.Version != succeeded+1 {
		t.Errorf("expected version %d after %d committed touches, got %d", succeeded+1, succeeded, final.Version)
	}
}
