package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/wanderstay/wanderstay/internal/auth"
	"github.com/wanderstay/wanderstay/internal/domain"
	"github.com/wanderstay/wanderstay/internal/service"
)

// bookingDateFormat is the wire format for check-in/check-out dates.
const bookingDateFormat = "2006-01-02"

// BookingHandler serves the reservation endpoints: quote, submit, list,
// detail, and cancel.
type BookingHandler struct {
	bookingService service.BookingService
	logger         *slog.Logger
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService service.BookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		logger:         logger,
	}
}

// RegisterRoutes registers the reservation routes. Submission runs behind
// WithUser only, so an unauthenticated submit reaches the service and gets
// the sign-in prompt instead of a bare 401.
func (h *BookingHandler) RegisterRoutes(mux *http.ServeMux, withUser, requireUser func(http.Handler) http.Handler) {
	mux.Handle("POST /bookings/quote", http.HandlerFunc(h.Quote))
	mux.Handle("POST /bookings", withUser(http.HandlerFunc(h.Submit)))
	mux.Handle("GET /bookings", withUser(requireUser(http.HandlerFunc(h.List))))
	mux.Handle("GET /bookings/{id}", withUser(requireUser(http.HandlerFunc(h.Get))))
	mux.Handle("POST /bookings/{id}/cancel", withUser(requireUser(http.HandlerFunc(h.Cancel))))
}

type submitBookingRequest struct {
	PropertyID string `json:"property_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	GuestCount int32  `json:"guest_count"`
}

type bookingResponse struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	CheckIn    string    `json:"check_in"`
	CheckOut   string    `json:"check_out"`
	GuestCount int32     `json:"guest_count"`
	Nights     int       `json:"nights"`
	TotalPrice float64   `json:"total_price"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`

	Property *propertyResponse `json:"property,omitempty"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:         b.ID.String(),
		PropertyID: b.PropertyID.String(),
		CheckIn:    b.CheckIn.Format(bookingDateFormat),
		CheckOut:   b.CheckOut.Format(bookingDateFormat),
		GuestCount: b.GuestCount,
		Nights:     b.Nights(),
		TotalPrice: b.TotalPrice,
		Status:     b.Status.String(),
		CreatedAt:  b.CreatedAt,
	}
	if b.Property != nil {
		property := toPropertyResponse(b.Property)
		resp.Property = &property
	}
	return resp
}

// parseDateRange converts wire dates into a DateRange. An empty string maps
// to the zero time so the domain validation reports the missing field.
func parseDateRange(op, checkIn, checkOut string) (domain.DateRange, error) {
	var r domain.DateRange
	var err error
	if checkIn != "" {
		r.CheckIn, err = time.Parse(bookingDateFormat, checkIn)
		if err != nil {
			return r, domain.Invalid(op, "Invalid check-in date, expected YYYY-MM-DD")
		}
	}
	if checkOut != "" {
		r.CheckOut, err = time.Parse(bookingDateFormat, checkOut)
		if err != nil {
			return r, domain.Invalid(op, "Invalid check-out date, expected YYYY-MM-DD")
		}
	}
	return r, nil
}

type quoteRequest struct {
	PropertyID string `json:"property_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
}

type quoteResponse struct {
	Nights       int     `json:"nights"`
	NightlyRate  float64 `json:"nightly_rate"`
	TotalPrice   float64 `json:"total_price"`
	CheckIn      string  `json:"check_in"`
	CheckOut     string  `json:"check_out"`
	DefaultedOut bool    `json:"checkout_defaulted"`
}

// Quote handles POST /bookings/quote. It prices a candidate date pair
// without creating anything. A missing checkout defaults to the day after
// check-in, mirroring the date picker reset.
func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	const op = "BookingHandler.Quote"

	var req quoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Invalid property id"))
		return
	}
	dates, err := parseDateRange(op, req.CheckIn, req.CheckOut)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	defaulted := false
	if !dates.CheckIn.IsZero() && dates.CheckOut.IsZero() {
		dates.CheckOut = domain.DefaultCheckOut(dates.CheckIn)
		defaulted = true
	}

	quote, err := h.bookingService.Quote(r.Context(), propertyID, dates)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, quoteResponse{
		Nights:       quote.Stay.Nights,
		NightlyRate:  quote.NightlyRate,
		TotalPrice:   quote.Stay.Total,
		CheckIn:      dates.CheckIn.Format(bookingDateFormat),
		CheckOut:     dates.CheckOut.Format(bookingDateFormat),
		DefaultedOut: defaulted,
	})
}

// Submit handles POST /bookings.
func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	const op = "BookingHandler.Submit"

	var req submitBookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Invalid property id"))
		return
	}
	dates, err := parseDateRange(op, req.CheckIn, req.CheckOut)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	// Anonymous submissions carry the nil guest id so the service can
	// reject them before touching storage.
	var guestID uuid.UUID
	if user := auth.GetUserFromRequest(r); user != nil {
		guestID = user.ID
	}

	booking, err := h.bookingService.Submit(r.Context(), domain.SubmitBookingParams{
		PropertyID: propertyID,
		GuestID:    guestID,
		Dates:      dates,
		GuestCount: req.GuestCount,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, toBookingResponse(booking))
}

// List handles GET /bookings, returning the caller's trips newest first.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)

	bookings, err := h.bookingService.ListForGuest(r.Context(), user.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{"bookings": out})
}

// Get handles GET /bookings/{id}. Lookups are guest-scoped, so another
// user's booking id reads as not found.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		NotFoundResponse(w, r, h.logger)
		return
	}

	booking, err := h.bookingService.GetByID(r.Context(), id, user.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, toBookingResponse(booking))
}

// Cancel handles POST /bookings/{id}/cancel.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		NotFoundResponse(w, r, h.logger)
		return
	}

	if err := h.bookingService.Cancel(r.Context(), id, user.ID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	booking, err := h.bookingService.GetByID(r.Context(), id, user.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, toBookingResponse(booking))
}
