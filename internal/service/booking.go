package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wanderstay/wanderstay/internal/domain"
	"github.com/wanderstay/wanderstay/internal/metrics"
	"github.com/wanderstay/wanderstay/internal/repository"
)

// BookingStore is the subset of repository queries the booking service
// needs. *repository.Queries satisfies it; tests substitute a fake.
type BookingStore interface {
	GetPropertyByID(ctx context.Context, id uuid.UUID) (repository.Property, error)
	CreateBooking(ctx context.Context, arg repository.CreateBookingParams) (repository.Booking, error)
	GetBookingByIDAndGuestID(ctx context.Context, arg repository.GetBookingByIDAndGuestIDParams) (repository.Booking, error)
	ListBookingsByGuestID(ctx context.Context, guestID uuid.UUID) ([]repository.Booking, error)
	UpdateBookingStatus(ctx context.Context, arg repository.UpdateBookingStatusParams) error
	ListImagesByPropertyIDs(ctx context.Context, propertyIDs []uuid.UUID) ([]repository.PropertyImage, error)
	GetPropertiesByIDs(ctx context.Context, ids []uuid.UUID) ([]repository.Property, error)
}

// CompletionScheduler schedules the background job that marks a confirmed
// booking completed once its stay has ended. May be nil when no worker is
// running; scheduling failures never fail the submission.
type CompletionScheduler interface {
	ScheduleBookingCompletion(ctx context.Context, bookingID uuid.UUID, at time.Time) error
}

// BookingQuote is a priced date pair for a listing, computed without
// creating anything.
type BookingQuote struct {
	Stay        domain.Stay
	NightlyRate float64
}

// BookingService defines the interface for reservation operations.
type BookingService interface {
	// Quote prices a candidate date range against the property's current
	// nightly rate. The range is validated here with the same clock Submit
	// uses; an invalid pair is rejected with EINVALID.
	Quote(ctx context.Context, propertyID uuid.UUID, dates domain.DateRange) (*BookingQuote, error)

	// Submit creates a reservation with status pending. The total price is
	// recomputed here from the property's current nightly rate; any price
	// the caller displayed earlier is never trusted.
	//
	// Preconditions: an authenticated guest (else EUNAUTHORIZED with zero
	// persistence calls) and a valid date range (else EINVALID). A second
	// submission for the same guest and property while one is in flight is
	// rejected with ECONFLICT.
	Submit(ctx context.Context, params domain.SubmitBookingParams) (*domain.Booking, error)

	// GetByID retrieves a booking for its guest, joined with the property
	// and its images for the summary view.
	GetByID(ctx context.Context, id, guestID uuid.UUID) (*domain.Booking, error)

	// ListForGuest returns all of a guest's bookings, newest stay first,
	// each joined with its property and images.
	ListForGuest(ctx context.Context, guestID uuid.UUID) ([]domain.Booking, error)

	// Cancel performs a guest-initiated cancellation. Only pending and
	// confirmed bookings can be cancelled.
	Cancel(ctx context.Context, id, guestID uuid.UUID) error
}

type bookingService struct {
	store     BookingStore
	scheduler CompletionScheduler
	logger    *slog.Logger

	// inflight guards against double-submission: one outstanding
	// submission per guest+property at a time.
	mu       sync.Mutex
	inflight map[inflightKey]struct{}

	// now is swappable in tests.
	now func() time.Time
}

type inflightKey struct {
	guestID    uuid.UUID
	propertyID uuid.UUID
}

// NewBookingService creates a new BookingService. scheduler may be nil.
func NewBookingService(store BookingStore, scheduler CompletionScheduler, logger *slog.Logger) BookingService {
	return &bookingService{
		store:     store,
		scheduler: scheduler,
		logger:    logger,
		inflight:  make(map[inflightKey]struct{}),
		now:       time.Now,
	}
}

func (s *bookingService) Quote(ctx context.Context, propertyID uuid.UUID, dates domain.DateRange) (*BookingQuote, error) {
	const op = "BookingService.Quote"

	if err := dates.Validate(s.now()); err != nil {
		return nil, err
	}

	repoProperty, err := s.store.GetPropertyByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "property", propertyID.String())
		}
		s.logger.Error("failed to load property for quote", "error", err, "op", op, "property_id", propertyID)
		return nil, domain.Internal(err, op, "Failed to price the stay")
	}

	stay := domain.ComputeStay(dates.CheckIn, dates.CheckOut, repoProperty.PricePerNight)
	if stay.Nights < 1 {
		return nil, domain.Invalid(op, "A stay must be at least one night")
	}
	return &BookingQuote{Stay: stay, NightlyRate: repoProperty.PricePerNight}, nil
}

func (s *bookingService) Submit(ctx context.Context, params domain.SubmitBookingParams) (*domain.Booking, error) {
	const op = "BookingService.Submit"

	// Authentication is checked before anything else: an anonymous
	// submission must not touch persistence at all.
	if params.GuestID == uuid.Nil {
		return nil, domain.Unauthorized(op, "Please sign in to book this property")
	}

	if err := params.Dates.Validate(s.now()); err != nil {
		return nil, err
	}

	key := inflightKey{guestID: params.GuestID, propertyID: params.PropertyID}
	if !s.acquire(key) {
		return nil, domain.Conflict(op, "A booking for this property is already being processed")
	}
	defer s.release(key)

	repoProperty, err := s.store.GetPropertyByID(ctx, params.PropertyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "property", params.PropertyID.String())
		}
		s.logger.Error("failed to load property for booking", "error", err, "op", op, "property_id", params.PropertyID)
		return nil, domain.Internal(err, op, "Failed to create booking")
	}

	if params.GuestCount < 1 {
		return nil, domain.Invalid(op, "At least one guest is required")
	}
	if params.GuestCount > repoProperty.MaxGuests {
		return nil, domain.Invalid(op, "Guest count exceeds the property's maximum")
	}

	// Recompute the stay at submission time so a stale client-side total
	// can never be persisted.
	stay := domain.ComputeStay(params.Dates.CheckIn, params.Dates.CheckOut, repoProperty.PricePerNight)
	if stay.Nights < 1 {
		return nil, domain.Invalid(op, "A stay must be at least one night")
	}

	repoBooking, err := s.store.CreateBooking(ctx, repository.CreateBookingParams{
		PropertyID: params.PropertyID,
		GuestID:    params.GuestID,
		CheckIn:    params.Dates.CheckIn,
		CheckOut:   params.Dates.CheckOut,
		GuestCount: params.GuestCount,
		TotalPrice: stay.Total,
		Status:     domain.BookingStatusPending.String(),
	})
	if err != nil {
		s.logger.Error("failed to create booking", "error", err, "op", op,
			"property_id", params.PropertyID, "guest_id", params.GuestID)
		return nil, domain.Internal(err, op, "Failed to create booking. Please try again.")
	}

	booking := repoBookingToDomain(repoBooking)
	metrics.BookingsCreated.Inc()
	s.logger.Info("booking created", "booking_id", booking.ID,
		"property_id", booking.PropertyID, "nights", stay.Nights, "total", stay.Total)

	if s.scheduler != nil {
		if err := s.scheduler.ScheduleBookingCompletion(ctx, booking.ID, booking.CheckOut); err != nil {
			s.logger.Error("failed to schedule booking completion", "error", err, "booking_id", booking.ID)
		}
	}

	return &booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id, guestID uuid.UUID) (*domain.Booking, error) {
	const op = "BookingService.GetByID"

	repoBooking, err := s.store.GetBookingByIDAndGuestID(ctx, repository.GetBookingByIDAndGuestIDParams{
		ID:      id,
		GuestID: guestID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "booking", id.String())
		}
		s.logger.Error("failed to get booking", "error", err, "op", op, "booking_id", id)
		return nil, domain.Internal(err, op, "Failed to retrieve booking")
	}

	bookings := []domain.Booking{repoBookingToDomain(repoBooking)}
	if err := s.attachProperties(ctx, bookings); err != nil {
		return nil, domain.Internal(err, op, "Failed to retrieve booking")
	}
	return &bookings[0], nil
}

func (s *bookingService) ListForGuest(ctx context.Context, guestID uuid.UUID) ([]domain.Booking, error) {
	const op = "BookingService.ListForGuest"

	repoBookings, err := s.store.ListBookingsByGuestID(ctx, guestID)
	if err != nil {
		s.logger.Error("failed to list bookings", "error", err, "op", op, "guest_id", guestID)
		return nil, domain.Internal(err, op, "Failed to list trips")
	}

	bookings := make([]domain.Booking, len(repoBookings))
	for i, rb := range repoBookings {
		bookings[i] = repoBookingToDomain(rb)
	}
	if err := s.attachProperties(ctx, bookings); err != nil {
		return nil, domain.Internal(err, op, "Failed to list trips")
	}
	return bookings, nil
}

func (s *bookingService) Cancel(ctx context.Context, id, guestID uuid.UUID) error {
	const op = "BookingService.Cancel"

	repoBooking, err := s.store.GetBookingByIDAndGuestID(ctx, repository.GetBookingByIDAndGuestIDParams{
		ID:      id,
		GuestID: guestID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "booking", id.String())
		}
		s.logger.Error("failed to get booking for cancel", "error", err, "op", op, "booking_id", id)
		return domain.Internal(err, op, "Failed to cancel booking")
	}

	booking := repoBookingToDomain(repoBooking)
	if err := booking.TransitionTo(domain.BookingStatusCancelled); err != nil {
		return err
	}

	err = s.store.UpdateBookingStatus(ctx, repository.UpdateBookingStatusParams{
		ID:     id,
		Status: booking.Status.String(),
	})
	if err != nil {
		s.logger.Error("failed to cancel booking", "error", err, "op", op, "booking_id", id)
		return domain.Internal(err, op, "Failed to cancel booking")
	}

	metrics.BookingsCancelled.Inc()
	s.logger.Info("booking cancelled", "booking_id", id, "guest_id", guestID)
	return nil
}

// attachProperties joins each booking with its property and the property's
// ordered image set.
func (s *bookingService) attachProperties(ctx context.Context, bookings []domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for i := range bookings {
		if _, ok := seen[bookings[i].PropertyID]; !ok {
			seen[bookings[i].PropertyID] = struct{}{}
			ids = append(ids, bookings[i].PropertyID)
		}
	}

	repoProperties, err := s.store.GetPropertiesByIDs(ctx, ids)
	if err != nil {
		return err
	}
	repoImages, err := s.store.ListImagesByPropertyIDs(ctx, ids)
	if err != nil {
		return err
	}

	properties := make(map[uuid.UUID]*domain.Property, len(repoProperties))
	for _, rp := range repoProperties {
		p := repoPropertyToDomain(rp)
		properties[p.ID] = &p
	}
	for _, ri := range repoImages {
		if p, ok := properties[ri.PropertyID]; ok {
			p.Images = append(p.Images, repoImageToDomain(ri))
		}
	}
	for i := range bookings {
		bookings[i].Property = properties[bookings[i].PropertyID]
	}
	return nil
}

func (s *bookingService) acquire(key inflightKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *bookingService) release(key inflightKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}

// repoBookingToDomain converts a repository Booking to a domain Booking.
func repoBookingToDomain(rb repository.Booking) domain.Booking {
	return domain.Booking{
		ID:         rb.ID,
		PropertyID: rb.PropertyID,
		GuestID:    rb.GuestID,
		CheckIn:    rb.CheckIn,
		CheckOut:   rb.CheckOut,
		GuestCount: rb.GuestCount,
		TotalPrice: rb.TotalPrice,
		Status:     domain.BookingStatus(rb.Status),
		CreatedAt:  rb.CreatedAt.Time,
		UpdatedAt:  rb.UpdatedAt.Time,
	}
}
