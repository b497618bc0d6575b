package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Lala-Rental/lala-rental-backend/internal/bookings/service"
	"github.com/Lala-Rental/lala-rental-backend/pkg/auth"
	apperrors "github.com/Lala-Rental/lala-rental-backend/pkg/errors"
	httputil "github.com/Lala-Rental/lala-rental-backend/pkg/http"
	"github.com/Lala-Rental/lala-rental-backend/pkg/logger"
	"github.com/Lala-Rental/lala-rental-backend/pkg/middleware"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// bookingPayload accepts dates as YYYY-MM-DD or RFC3339.
type bookingPayload struct {
	PropertyID string `json:"property_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Status     string `json:"status,omitempty"`
}

type AvailabilityResponse struct {
	PropertyID string    `json:"property_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Available  bool      `json:"available"`
}

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := httputil.ParseDate(value)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid %s, expected YYYY-MM-DD or RFC3339: %s", field, value))
	}
	return &t, nil
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, _ := auth.ActorFromContext(r.Context())

	var payload bookingPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	checkIn, err := parseOptionalDate("check_in", payload.CheckIn)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}
	checkOut, err := parseOptionalDate("check_out", payload.CheckOut)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	req := model.BookingRequest{PropertyID: payload.PropertyID, Status: payload.Status}
	if checkIn != nil {
		req.CheckIn = *checkIn
	}
	if checkOut != nil {
		req.CheckOut = *checkOut
	}

	booking, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, _ := auth.ActorFromContext(r.Context())

	booking, err := h.service.GetByID(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

type listFunc func(r *http.Request, actor *auth.Actor, limit int, offset int64) ([]*model.Booking, int64, error)

func (h *BookingHandler) paginated(name string, list listFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		actor, _ := auth.ActorFromContext(r.Context())

		limit, offset, err := httputil.ExtractLimitOffset(r)
		if err != nil {
			h.writeError(w, name, err)
			return
		}

		bookings, total, err := list(r, actor, limit, offset)
		if err != nil {
			h.writeError(w, name, err)
			return
		}

		if err := httputil.WritePaginated(w, bookings, total, limit, int(offset)); err != nil {
			h.log.Error("failed to write paginated response", "handler", name, "operation", "WritePaginated", "error", err)
		}
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.paginated("List", func(r *http.Request, actor *auth.Actor, limit int, offset int64) ([]*model.Booking, int64, error) {
		return h.service.List(r.Context(), actor, limit, offset)
	})(w, r, ps)
}

func (h *BookingHandler) ListByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.paginated("ListByUser", func(r *http.Request, actor *auth.Actor, limit int, offset int64) ([]*model.Booking, int64, error) {
		return h.service.ListByUser(r.Context(), actor, limit, offset)
	})(w, r, ps)
}

func (h *BookingHandler) ListByProperty(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	propertyID := ps.ByName("propertyId")
	h.paginated("ListByProperty", func(r *http.Request, actor *auth.Actor, limit int, offset int64) ([]*model.Booking, int64, error) {
		return h.service.ListByProperty(r.Context(), actor, propertyID, limit, offset)
	})(w, r, ps)
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	propertyID := query.Get("property_id")
	if propertyID == "" || query.Get("check_in") == "" || query.Get("check_out") == "" {
		h.writeError(w, "Availability", apperrors.InvalidInput("'property_id', 'check_in' and 'check_out' query parameters are required"))
		return
	}

	checkIn, err := parseOptionalDate("check_in", query.Get("check_in"))
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}
	checkOut, err := parseOptionalDate("check_out", query.Get("check_out"))
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	conflict, err := h.service.CheckAvailability(r.Context(), propertyID, *checkIn, *checkOut)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	if err := httputil.WriteSuccess(w, AvailabilityResponse{
		PropertyID: propertyID,
		CheckIn:    *checkIn,
		CheckOut:   *checkOut,
		Available:  !conflict,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, _ := auth.ActorFromContext(r.Context())

	var payload bookingPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		h.writeError(w, "Update", err)
		return
	}
	if payload.PropertyID != "" {
		h.writeError(w, "Update", apperrors.InvalidInput("property_id cannot be changed"))
		return
	}

	var update model.BookingUpdate
	var err error
	if update.CheckIn, err = parseOptionalDate("check_in", payload.CheckIn); err != nil {
		h.writeError(w, "Update", err)
		return
	}
	if update.CheckOut, err = parseOptionalDate("check_out", payload.CheckOut); err != nil {
		h.writeError(w, "Update", err)
		return
	}
	update.Status = payload.Status

	booking, err := h.service.Update(r.Context(), actor, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, _ := auth.ActorFromContext(r.Context())

	if err := h.service.Delete(r.Context(), actor, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteMessage(w, "Booking deleted successfully"); err != nil {
		h.log.Error("failed to write message response", "handler", "Delete", "operation", "WriteMessage", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/bookings", middleware.RequireAuth(h.List))
	router.GET("/api/v1/bookings/user", middleware.RequireAuth(h.ListByUser))
	router.GET("/api/v1/bookings/property/:propertyId", middleware.RequireAuth(h.ListByProperty))
	router.GET("/api/v1/bookings/availability", middleware.RequireAuth(h.Availability))
	router.GET("/api/v1/bookings/id/:id", middleware.RequireAuth(h.GetByID))
	router.POST("/api/v1/bookings", middleware.RequireAuth(h.Create))
	router.PATCH("/api/v1/bookings/id/:id", middleware.RequireAuth(h.Update))
	router.PUT("/api/v1/bookings/id/:id", middleware.RequireAuth(h.Update))
	router.DELETE("/api/v1/bookings/id/:id", middleware.RequireAuth(h.Delete))
}
