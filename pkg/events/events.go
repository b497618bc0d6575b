package events

import "time"

const (
	TypeBookingCreated = "booking.created"
	TypeBookingUpdated = "booking.updated"
	TypeUserRegistered = "user.registered"

	SchemaVersion = "1"
)

type BookingEvent struct {
	BookingID      string    `json:"booking_id"`
	PropertyID     string    `json:"property_id"`
	PropertyTitle  string    `json:"property_title,omitempty"`
	HostID         string    `json:"host_id,omitempty"`
	RenterID       string    `json:"renter_id"`
	RenterName     string    `json:"renter_name,omitempty"`
	RenterEmail    string    `json:"renter_email,omitempty"`
	CheckIn        time.Time `json:"check_in"`
	CheckOut       time.Time `json:"check_out"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type UserRegisteredEvent struct {
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}
