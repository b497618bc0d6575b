package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Lala-Rental/lala-rental-backend/pkg/logger"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("booking_status", validateBookingStatus); err != nil {
		log.Fatal("Failed to register 'booking_status' validator",
			"error", err,
		)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateBookingStatus(fl validator.FieldLevel) bool {
	_, ok := model.ParseBookingStatus(fl.Field().String())
	return ok
}

// Validate checks a create request. The stay must start strictly after now.
func (v *BookingValidator) Validate(req *model.BookingRequest, now time.Time) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.ValidateStay(req.CheckIn, req.CheckOut, now, true)
}

func (v *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.CheckIn != nil && update.CheckOut != nil && !update.CheckOut.After(*update.CheckIn) {
		return ValidationErrors{
			ValidationError{
				Field:   "CheckOut",
				Message: "check_out must be after check_in",
			},
		}
	}

	return nil
}

// ValidateStay checks the date range of a booking in whole days: check_in
// must fall on a later day than now. requireFuture is false when an update
// leaves the dates untouched, so a started stay can still be cancelled.
func (v *BookingValidator) ValidateStay(checkIn, checkOut, now time.Time, requireFuture bool) error {
	var errs ValidationErrors
	checkIn, checkOut = model.CalendarDay(checkIn), model.CalendarDay(checkOut)

	if !checkOut.After(checkIn) {
		errs = append(errs, ValidationError{
			Field:   "CheckOut",
			Message: "check_out must be after check_in",
		})
	}

	if requireFuture && !checkIn.After(model.CalendarDay(now)) {
		errs = append(errs, ValidationError{
			Field:   "CheckIn",
			Message: "check_in must be in the future",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "booking_status":
			message = fmt.Sprintf("%s must be one of: PENDING CONFIRMED CANCELLED", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
