package model

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// bookingTransitions lists the statuses each status may move to, besides itself.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled},
	BookingStatusCancelled: {},
}

// ParseBookingStatus accepts any letter case. ok is false for unknown values.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	status := BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := bookingTransitions[status]
	return status, ok
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// Reserving reports whether a booking in this status occupies the calendar.
func (s BookingStatus) Reserving() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Booking struct {
	ID         string        `json:"id,omitempty" bson:"_id,omitempty"`
	PropertyID string        `json:"property_id" bson:"property_id"`
	RenterID   string        `json:"renter_id" bson:"renter_id"`
	CheckIn    time.Time     `json:"check_in" bson:"check_in"`
	CheckOut   time.Time     `json:"check_out" bson:"check_out"`
	Status     BookingStatus `json:"status" bson:"status"`
	CreatedAt  time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" bson:"updated_at"`

	Property *Property `json:"property,omitempty" bson:"-"`
	Renter   *User     `json:"renter,omitempty" bson:"-"`
}

// Overlaps applies the booking overlap predicate to [checkIn, checkOut).
// inclusive treats stays that touch at a boundary day as overlapping.
func (b *Booking) Overlaps(checkIn, checkOut time.Time, inclusive bool) bool {
	return IntervalsOverlap(b.CheckIn, b.CheckOut, checkIn, checkOut, inclusive)
}

// CalendarDay drops the time of day. Stays are booked in whole UTC days, so
// every date is reduced to its day before it is validated or compared.
func CalendarDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func IntervalsOverlap(aStart, aEnd, bStart, bEnd time.Time, inclusive bool) bool {
	if inclusive {
		return !aStart.After(bEnd) && !bStart.After(aEnd)
	}
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// BookingRequest is the body of a create call. RenterID always comes from
// the authenticated actor, never from the payload.
type BookingRequest struct {
	PropertyID string    `json:"property_id" validate:"required,mongodb"`
	CheckIn    time.Time `json:"check_in" validate:"required"`
	CheckOut   time.Time `json:"check_out" validate:"required,gtfield=CheckIn"`
	Status     string    `json:"status,omitempty" validate:"omitempty,booking_status"`
}

// Normalized returns a copy of r with both dates reduced to calendar days.
func (r *BookingRequest) Normalized() *BookingRequest {
	out := *r
	if !out.CheckIn.IsZero() {
		out.CheckIn = CalendarDay(out.CheckIn)
	}
	if !out.CheckOut.IsZero() {
		out.CheckOut = CalendarDay(out.CheckOut)
	}
	return &out
}

type BookingUpdate struct {
	CheckIn  *time.Time `json:"check_in,omitempty"`
	CheckOut *time.Time `json:"check_out,omitempty"`
	Status   string     `json:"status,omitempty" validate:"omitempty,booking_status"`
}

// Normalized returns a copy of u with any given date reduced to its calendar day.
func (u *BookingUpdate) Normalized() *BookingUpdate {
	out := *u
	if out.CheckIn != nil {
		day := CalendarDay(*out.CheckIn)
		out.CheckIn = &day
	}
	if out.CheckOut != nil {
		day := CalendarDay(*out.CheckOut)
		out.CheckOut = &day
	}
	return &out
}

type BookingFilter struct {
	RenterID   string
	PropertyID string
}
