package errors

import "errors"

const (
	MsgConflict = "Property is already booked for the selected dates"
	MsgNotFound = "Booking Not found"
)

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrConflict = errors.New("property is already booked for the selected dates")

	ErrInvalidDateRange = errors.New("check_out must be after check_in")

	ErrInvalidTransition = errors.New("booking status transition not allowed")

	// ErrGuardContention means two transactions raced to create the same
	// property guard document. The whole admission is safe to retry.
	ErrGuardContention = errors.New("property booking guard contended")
)
