package service

import (
	"context"
	"sync"
	"time"

	bookingserrors "github.com/Lala-Rental/lala-rental-backend/internal/bookings/errors"
	mongotx "github.com/Lala-Rental/lala-rental-backend/pkg/db/mongo"
	apperrors "github.com/Lala-Rental/lala-rental-backend/pkg/errors"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryRepo is a transactional in-memory BookingRepository. Transactions
// run one at a time and roll back on error, which mirrors what the guard
// document gives the Mongo implementation.
type memoryRepo struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	bookings map[string]*model.Booking
	findErr  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{bookings: map[string]*model.Booking{}}
}

func (m *memoryRepo) FindOverlapping(_ context.Context, propertyID string, checkIn, checkOut time.Time, excludeID string, inclusive bool) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}

	var out []*model.Booking
	for _, b := range m.bookings {
		if b.PropertyID != propertyID || b.ID == excludeID || !b.Status.Reserving() {
			continue
		}
		if b.Overlaps(checkIn, checkOut, inclusive) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memoryRepo) Create(_ context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	booking.ID = primitive.NewObjectID().Hex()
	booking.CreatedAt = time.Now().UTC()
	booking.UpdatedAt = booking.CreatedAt
	cp := *booking
	m.bookings[booking.ID] = &cp
	return nil
}

func (m *memoryRepo) FindByID(_ context.Context, id string, scopeRenterID string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !primitive.IsValidObjectID(id) {
		return nil, bookingserrors.ErrInvalidID
	}
	b, ok := m.bookings[id]
	if !ok || (scopeRenterID != "" && b.RenterID != scopeRenterID) {
		return nil, bookingserrors.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memoryRepo) matching(filter model.BookingFilter) []*model.Booking {
	var out []*model.Booking
	for _, b := range m.bookings {
		if filter.RenterID != "" && b.RenterID != filter.RenterID {
			continue
		}
		if filter.PropertyID != "" && b.PropertyID != filter.PropertyID {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out
}

func (m *memoryRepo) FindAll(_ context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.matching(filter)
	if int(offset) >= len(all) {
		return []*model.Booking{}, nil
	}
	end := min(int(offset)+limit, len(all))
	return all[offset:end], nil
}

func (m *memoryRepo) Count(_ context.Context, filter model.BookingFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matching(filter))), nil
}

func (m *memoryRepo) Update(_ context.Context, id string, booking *model.Booking, scopeRenterID string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok || (scopeRenterID != "" && b.RenterID != scopeRenterID) {
		return nil, bookingserrors.ErrNotFound
	}
	b.CheckIn = booking.CheckIn
	b.CheckOut = booking.CheckOut
	b.Status = booking.Status
	b.UpdatedAt = time.Now().UTC()
	cp := *b
	return &cp, nil
}

func (m *memoryRepo) Delete(_ context.Context, id string, scopeRenterID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !primitive.IsValidObjectID(id) {
		return bookingserrors.ErrInvalidID
	}
	b, ok := m.bookings[id]
	if !ok || (scopeRenterID != "" && b.RenterID != scopeRenterID) {
		return bookingserrors.ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

func (m *memoryRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := make(map[string]*model.Booking, len(m.bookings))
	for id, b := range m.bookings {
		cp := *b
		snapshot[id] = &cp
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.bookings = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memoryRepo) reserving(propertyID string) []*model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Booking
	for _, b := range m.bookings {
		if b.PropertyID == propertyID && b.Status.Reserving() {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out
}

type memoryGuard struct {
	mu       sync.Mutex
	versions map[string]int64
	// contend makes the next n touches fail as if another transaction had
	// created the guard document first.
	contend int
}

func newMemoryGuard() *memoryGuard {
	return &memoryGuard{versions: map[string]int64{}}
}

func (g *memoryGuard) Touch(_ context.Context, propertyID string) (*model.PropertyGuard, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.contend > 0 {
		g.contend--
		return nil, bookingserrors.ErrGuardContention
	}
	g.versions[propertyID]++
	return &model.PropertyGuard{ID: propertyID, Version: g.versions[propertyID]}, nil
}

type memoryProperties map[string]*model.Property

func (p memoryProperties) GetByID(_ context.Context, id string) (*model.Property, error) {
	if prop, ok := p[id]; ok {
		return prop, nil
	}
	return nil, apperrors.NotFound("Property not found")
}

type memoryUsers map[string]*model.User

func (u memoryUsers) Lookup(_ context.Context, id string) (*model.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, apperrors.NotFound("User not found")
}

type publishedEvent struct {
	Type    string
	Key     string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Type: eventType, Key: key, Payload: payload})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

// interleavingRepo runs afterFind once, right after the first FindByID
// returns, to commit a competing write between a read and the write that
// depends on it.
type interleavingRepo struct {
	*memoryRepo
	once      sync.Once
	afterFind func()
}

func (r *interleavingRepo) FindByID(ctx context.Context, id string, scopeRenterID string) (*model.Booking, error) {
	booking, err := r.memoryRepo.FindByID(ctx, id, scopeRenterID)
	r.once.Do(r.afterFind)
	return booking, err
}

func (m *memoryRepo) setStatus(id string, status model.BookingStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[id].Status = status
}

func (m *memoryRepo) get(id string) model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.bookings[id]
}
