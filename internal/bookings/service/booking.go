package service

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingserrors "github.com/Lala-Rental/lala-rental-backend/internal/bookings/errors"
	"github.com/Lala-Rental/lala-rental-backend/internal/bookings/repository"
	"github.com/Lala-Rental/lala-rental-backend/internal/bookings/validator"
	"github.com/Lala-Rental/lala-rental-backend/pkg/auth"
	"github.com/Lala-Rental/lala-rental-backend/pkg/config"
	"github.com/Lala-Rental/lala-rental-backend/pkg/contracts"
	apperrors "github.com/Lala-Rental/lala-rental-backend/pkg/errors"
	"github.com/Lala-Rental/lala-rental-backend/pkg/events"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"
)

// maxGuardAttempts bounds retries of an admission whose guard document was
// created concurrently by another transaction.
const maxGuardAttempts = 3

const publishTimeout = 5 * time.Second

// PropertyLookup resolves the property a booking refers to.
type PropertyLookup interface {
	GetByID(ctx context.Context, id string) (*model.Property, error)
}

// UserLookup resolves the renter of a booking.
type UserLookup interface {
	Lookup(ctx context.Context, id string) (*model.User, error)
}

type BookingService interface {
	CheckAvailability(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (bool, error)
	Create(ctx context.Context, actor *auth.Actor, req *model.BookingRequest) (*model.Booking, error)
	Update(ctx context.Context, actor *auth.Actor, id string, update *model.BookingUpdate) (*model.Booking, error)
	GetByID(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error)
	List(ctx context.Context, actor *auth.Actor, limit int, offset int64) ([]*model.Booking, int64, error)
	ListByUser(ctx context.Context, actor *auth.Actor, limit int, offset int64) ([]*model.Booking, int64, error)
	ListByProperty(ctx context.Context, actor *auth.Actor, propertyID string, limit int, offset int64) ([]*model.Booking, int64, error)
	Delete(ctx context.Context, actor *auth.Actor, id string) error
}

type bookingService struct {
	repo       repository.BookingRepository
	guard      repository.GuardRepository
	properties PropertyLookup
	users      UserLookup
	publisher  contracts.EventPublisher
	validator  *validator.BookingValidator
	cfg        *config.Config
	now        func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	guard repository.GuardRepository,
	properties PropertyLookup,
	users UserLookup,
	publisher contracts.EventPublisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:       repo,
		guard:      guard,
		properties: properties,
		users:      users,
		publisher:  publisher,
		validator:  validator,
		cfg:        cfg,
		now:        time.Now,
	}
}

// inclusive reports whether stays touching at a boundary day conflict.
func (s *bookingService) inclusive() bool {
	return !s.cfg.AllowSameDayTurnover
}

func (s *bookingService) CheckAvailability(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (bool, error) {
	if propertyID == "" {
		return false, apperrors.InvalidInput("Property ID cannot be empty")
	}
	checkIn, checkOut = model.CalendarDay(checkIn), model.CalendarDay(checkOut)
	if !checkOut.After(checkIn) {
		return false, apperrors.InvalidInput(bookingserrors.ErrInvalidDateRange.Error())
	}

	overlapping, err := s.repo.FindOverlapping(ctx, propertyID, checkIn, checkOut, "", s.inclusive())
	if err != nil {
		s.cfg.Log.Error("Failed to check availability", "property_id", propertyID, "error", err)
		return false, apperrors.Internal("Failed to check availability", err)
	}
	return len(overlapping) > 0, nil
}

func (s *bookingService) Create(ctx context.Context, actor *auth.Actor, req *model.BookingRequest) (*model.Booking, error) {
	if actor == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	req = req.Normalized()
	if err := s.validator.Validate(req, s.now()); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "renter_id", actor.ID, "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"errors": err})
	}

	status := model.BookingStatusPending
	if req.Status != "" {
		status, _ = model.ParseBookingStatus(req.Status)
	}
	if status == model.BookingStatusCancelled {
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"errors": validator.ValidationErrors{{Field: "Status", Message: "a booking cannot be created as CANCELLED"}},
		})
	}

	property, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		PropertyID: req.PropertyID,
		RenterID:   actor.ID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Status:     status,
	}

	err = s.admit(ctx, booking.PropertyID, "",
		func(context.Context) (*model.Booking, error) { return booking, nil },
		func(txCtx context.Context, b *model.Booking) error { return s.repo.Create(txCtx, b) },
	)
	if err != nil {
		s.logAdmissionFailure("Failed to create booking", booking, err)
		return nil, s.translate(err, "Failed to create booking")
	}

	booking.Property = property
	booking.Renter = s.lookupRenter(ctx, booking.RenterID)

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"property_id", booking.PropertyID,
		"renter_id", booking.RenterID,
		"check_in", booking.CheckIn,
		"check_out", booking.CheckOut,
	)
	s.publish(ctx, events.TypeBookingCreated, booking, "")
	return booking, nil
}

func (s *bookingService) Update(ctx context.Context, actor *auth.Actor, id string, update *model.BookingUpdate) (*model.Booking, error) {
	if actor == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id, "")
	if err != nil {
		return nil, s.translate(err, "Failed to retrieve booking")
	}

	property, access, err := s.access(ctx, actor, existing)
	if err != nil {
		return nil, err
	}
	if access == accessNone {
		return nil, apperrors.NotFound(bookingserrors.MsgNotFound)
	}

	update = update.Normalized()
	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"errors": err})
	}

	scope := ""
	if access == accessRenter {
		scope = actor.ID
	}

	// The stored booking is read again under the guard so the transition and
	// the date checks apply to the state being overwritten.
	var merged, updated *model.Booking
	previous := existing.Status
	err = s.admit(ctx, existing.PropertyID, id,
		func(txCtx context.Context) (*model.Booking, error) {
			current, err := s.repo.FindByID(txCtx, id, scope)
			if err != nil {
				return nil, err
			}
			previous = current.Status

			var datesChanged bool
			merged, datesChanged = mergeBookingUpdate(current, update)
			if datesChanged && access == accessHost {
				return nil, apperrors.Forbidden("Only the renter can change the dates of a booking")
			}
			if datesChanged {
				if err := s.validator.ValidateStay(merged.CheckIn, merged.CheckOut, s.now(), true); err != nil {
					return nil, apperrors.Validation("Booking validation failed", map[string]any{"errors": err})
				}
			}
			if !current.Status.CanTransitionTo(merged.Status) {
				return nil, apperrors.Validation(bookingserrors.ErrInvalidTransition.Error(), map[string]any{
					"from": current.Status,
					"to":   merged.Status,
				})
			}
			return merged, nil
		},
		func(txCtx context.Context, b *model.Booking) error {
			var err error
			updated, err = s.repo.Update(txCtx, id, b, scope)
			return err
		},
	)
	if err != nil {
		if merged == nil {
			merged = existing
		}
		s.logAdmissionFailure("Failed to update booking", merged, err)
		return nil, s.translate(err, "Failed to update booking")
	}

	updated.Property = property
	updated.Renter = s.lookupRenter(ctx, updated.RenterID)

	s.cfg.Log.Info("Booking updated successfully",
		"id", id,
		"status", updated.Status,
		"previous_status", previous,
	)
	s.publish(ctx, events.TypeBookingUpdated, updated, previous)
	return updated, nil
}

func (s *bookingService) GetByID(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error) {
	if actor == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id, "")
	if err != nil {
		return nil, s.translate(err, "Failed to retrieve booking")
	}

	property, access, err := s.access(ctx, actor, booking)
	if err != nil {
		return nil, err
	}
	if access == accessNone {
		return nil, apperrors.NotFound(bookingserrors.MsgNotFound)
	}

	booking.Property = property
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, actor *auth.Actor, limit int, offset int64) ([]*model.Booking, int64, error) {
	if actor == nil {
		return nil, 0, apperrors.Unauthorized("Authentication required")
	}
	return s.list(ctx, model.BookingFilter{RenterID: actor.RenterScope()}, limit, offset)
}

func (s *bookingService) ListByUser(ctx context.Context, actor *auth.Actor, limit int, offset int64) ([]*model.Booking, int64, error) {
	if actor == nil {
		return nil, 0, apperrors.Unauthorized("Authentication required")
	}
	return s.list(ctx, model.BookingFilter{RenterID: actor.ID}, limit, offset)
}

func (s *bookingService) ListByProperty(ctx context.Context, actor *auth.Actor, propertyID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if actor == nil {
		return nil, 0, apperrors.Unauthorized("Authentication required")
	}
	if propertyID == "" {
		return nil, 0, apperrors.InvalidInput("Property ID cannot be empty")
	}

	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, 0, err
	}
	if !actor.IsAdmin() && !property.OwnedBy(actor.ID) {
		return nil, 0, apperrors.Forbidden("You don't have right to this resources")
	}

	return s.list(ctx, model.BookingFilter{PropertyID: propertyID}, limit, offset)
}

func (s *bookingService) Delete(ctx context.Context, actor *auth.Actor, id string) error {
	if actor == nil {
		return apperrors.Unauthorized("Authentication required")
	}
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id, actor.RenterScope()); err != nil {
		return s.translate(err, "Failed to delete booking")
	}

	s.cfg.Log.Info("Booking deleted successfully", "id", id, "actor_id", actor.ID)
	return nil
}

// --- Helpers ---

// admit runs the guarded check-then-write for one property. prepare runs
// after the guard is touched and returns the booking to admit, so whatever it
// reads is serialized with every other admission on the property. The overlap
// query ignores excludeID, and cancelled bookings skip the check entirely.
func (s *bookingService) admit(
	ctx context.Context,
	propertyID, excludeID string,
	prepare func(ctx context.Context) (*model.Booking, error),
	write func(ctx context.Context, booking *model.Booking) error,
) error {
	var err error
	for attempt := 1; attempt <= maxGuardAttempts; attempt++ {
		err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			guard, err := s.guard.Touch(txCtx, propertyID)
			if err != nil {
				return err
			}

			booking, err := prepare(txCtx)
			if err != nil {
				return err
			}

			if booking.Status.Reserving() {
				overlapping, err := s.repo.FindOverlapping(txCtx, propertyID, booking.CheckIn, booking.CheckOut, excludeID, s.inclusive())
				if err != nil {
					return err
				}
				if len(overlapping) > 0 {
					s.cfg.Log.Debug("Booking overlaps existing stay",
						"property_id", propertyID,
						"conflicting_id", overlapping[0].ID,
						"guard_version", guard.Version,
					)
					return apperrors.Conflict(bookingserrors.MsgConflict)
				}
			}

			return write(txCtx, booking)
		})
		if !errors.Is(err, bookingserrors.ErrGuardContention) {
			return err
		}
		s.cfg.Log.Warn("Booking guard contended, retrying admission",
			"property_id", propertyID,
			"attempt", attempt,
		)
	}
	return err
}

func (s *bookingService) list(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "limit", limit, "offset", offset, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

type accessLevel int

const (
	accessNone accessLevel = iota
	accessHost
	accessRenter
	accessAdmin
)

// access decides how actor may act on booking. The booking's renter and
// admins manage it fully; the host of the property may view it and change
// its status. Everyone else gets accessNone.
func (s *bookingService) access(ctx context.Context, actor *auth.Actor, booking *model.Booking) (*model.Property, accessLevel, error) {
	property, err := s.properties.GetByID(ctx, booking.PropertyID)
	if err != nil && !apperrors.HasCode(err, apperrors.CodeNotFound) {
		return nil, accessNone, err
	}

	switch {
	case actor.IsAdmin():
		return property, accessAdmin, nil
	case booking.RenterID == actor.ID:
		return property, accessRenter, nil
	case property != nil && property.OwnedBy(actor.ID):
		return property, accessHost, nil
	default:
		return nil, accessNone, nil
	}
}

func mergeBookingUpdate(existing *model.Booking, update *model.BookingUpdate) (*model.Booking, bool) {
	merged := *existing
	merged.Property = nil
	merged.Renter = nil
	changed := false

	if update.CheckIn != nil && !update.CheckIn.Equal(existing.CheckIn) {
		merged.CheckIn = model.CalendarDay(*update.CheckIn)
		changed = true
	}
	if update.CheckOut != nil && !update.CheckOut.Equal(existing.CheckOut) {
		merged.CheckOut = model.CalendarDay(*update.CheckOut)
		changed = true
	}
	if update.Status != "" {
		merged.Status, _ = model.ParseBookingStatus(update.Status)
	}

	return &merged, changed
}

func (s *bookingService) translate(err error, fallback string) error {
	switch {
	case apperrors.IsAppError(err):
		return apperrors.AsAppError(err)
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFound(bookingserrors.MsgNotFound)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	case errors.Is(err, bookingserrors.ErrConflict):
		return apperrors.Conflict(bookingserrors.MsgConflict)
	case errors.Is(err, bookingserrors.ErrGuardContention):
		return apperrors.Conflict("Another booking for this property is in progress, please retry")
	default:
		return apperrors.Internal(fallback, err)
	}
}

func (s *bookingService) logAdmissionFailure(msg string, booking *model.Booking, err error) {
	if apperrors.HasCode(err, apperrors.CodeConflict) {
		s.cfg.Log.Info("Booking rejected, dates unavailable",
			"property_id", booking.PropertyID,
			"check_in", booking.CheckIn,
			"check_out", booking.CheckOut,
		)
		return
	}
	s.cfg.Log.Error(msg, "property_id", booking.PropertyID, "error", err)
}

func (s *bookingService) lookupRenter(ctx context.Context, renterID string) *model.User {
	if s.users == nil {
		return nil
	}
	user, err := s.users.Lookup(ctx, renterID)
	if err != nil {
		s.cfg.Log.Warn("Failed to load booking renter", "renter_id", renterID, "error", err)
		return nil
	}
	return user
}

// publish emits a booking event once the write is committed. Failures are
// logged and never fail the request.
func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking, previous model.BookingStatus) {
	if s.publisher == nil {
		return
	}

	event := events.BookingEvent{
		BookingID:      booking.ID,
		PropertyID:     booking.PropertyID,
		RenterID:       booking.RenterID,
		CheckIn:        booking.CheckIn,
		CheckOut:       booking.CheckOut,
		Status:         string(booking.Status),
		PreviousStatus: string(previous),
		OccurredAt:     s.now().UTC(),
	}
	if booking.Property != nil {
		event.PropertyTitle = booking.Property.Title
		event.HostID = booking.Property.HostID
	}
	if booking.Renter != nil {
		event.RenterName = booking.Renter.Name
		event.RenterEmail = booking.Renter.Email
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, eventType, booking.ID, event); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
