// Package notifications turns booking and user events into emails.
package notifications

import (
	"context"
	"fmt"

	"github.com/Lala-Rental/lala-rental-backend/pkg/events"
	"github.com/Lala-Rental/lala-rental-backend/pkg/kafka"
	"github.com/Lala-Rental/lala-rental-backend/pkg/logger"
	"github.com/Lala-Rental/lala-rental-backend/pkg/mailer"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"
)

type Sender interface {
	Send(to []string, subject, htmlBody string) error
}

type Notifier struct {
	sender      Sender
	frontendURL string
	log         *logger.Logger
}

func NewNotifier(sender Sender, frontendURL string, log *logger.Logger) *Notifier {
	return &Notifier{
		sender:      sender,
		frontendURL: frontendURL,
		log:         log,
	}
}

// HandleBooking mails the renter about a created or updated booking.
func (n *Notifier) HandleBooking(ctx context.Context, msg kafka.Message) error {
	eventType := msg.GetEventType()
	if eventType != events.TypeBookingCreated && eventType != events.TypeBookingUpdated {
		n.log.Debug("Ignoring booking topic event", "event_type", eventType, "event_id", msg.GetEventID())
		return nil
	}

	var event events.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}
	if event.RenterEmail == "" {
		n.log.Warn("Booking event has no renter email, skipping", "booking_id", event.BookingID)
		return nil
	}

	subject, headline := bookingCopy(eventType, event)
	body, err := mailer.RenderBooking(mailer.BookingData{
		BookingID:     event.BookingID,
		RenterName:    event.RenterName,
		PropertyTitle: event.PropertyTitle,
		CheckIn:       event.CheckIn,
		CheckOut:      event.CheckOut,
		Status:        event.Status,
		Headline:      headline,
		FrontendURL:   n.frontendURL,
	})
	if err != nil {
		return kafka.NewPermanentError("render booking email", err)
	}

	return n.send(ctx, event.RenterEmail, subject, body, "booking_id", event.BookingID)
}

// HandleUser sends the welcome email for newly registered users.
func (n *Notifier) HandleUser(ctx context.Context, msg kafka.Message) error {
	if eventType := msg.GetEventType(); eventType != events.TypeUserRegistered {
		n.log.Debug("Ignoring user topic event", "event_type", eventType, "event_id", msg.GetEventID())
		return nil
	}

	var event events.UserRegisteredEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}
	if event.Email == "" {
		return kafka.NewPermanentError("user event has no email", kafka.ErrInvalidMessage)
	}

	body, err := mailer.RenderWelcome(mailer.WelcomeData{Name: event.Name, FrontendURL: n.frontendURL})
	if err != nil {
		return kafka.NewPermanentError("render welcome email", err)
	}

	return n.send(ctx, event.Email, "Welcome to Lala Rental", body, "user_id", event.UserID)
}

func (n *Notifier) send(ctx context.Context, to, subject, body string, attrs ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.sender.Send([]string{to}, subject, body); err != nil {
		return kafka.NewTransientError("send email", err)
	}
	n.log.Info("Notification sent", append([]any{"subject", subject}, attrs...)...)
	return nil
}

func bookingCopy(eventType string, event events.BookingEvent) (subject, headline string) {
	title := event.PropertyTitle
	if title == "" {
		title = "your stay"
	}

	if eventType == events.TypeBookingCreated {
		return fmt.Sprintf("Booking received: %s", title), "Your booking request has been received"
	}

	switch model.BookingStatus(event.Status) {
	case model.BookingStatusConfirmed:
		return fmt.Sprintf("Booking confirmed: %s", title), "Your booking is confirmed"
	case model.BookingStatusCancelled:
		return fmt.Sprintf("Booking cancelled: %s", title), "Your booking has been cancelled"
	default:
		return fmt.Sprintf("Booking updated: %s", title), "Your booking has been updated"
	}
}
