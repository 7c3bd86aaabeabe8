// Package jobs contains the background job handlers run by the worker:
// booking completion at checkout and expired-session cleanup.
package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wanderstay/wanderstay/internal/domain"
	"github.com/wanderstay/wanderstay/internal/repository"
	"github.com/wanderstay/wanderstay/internal/worker"
)

// CompleteBookingHandler finalizes bookings once their stay has ended:
// confirmed bookings become completed, and bookings still pending at
// checkout are cancelled as never-confirmed.
type CompleteBookingHandler struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewCompleteBookingHandler creates the handler.
func NewCompleteBookingHandler(queries *repository.Queries, logger *slog.Logger) *CompleteBookingHandler {
	return &CompleteBookingHandler{queries: queries, logger: logger}
}

// Type returns the job type identifier.
func (h *CompleteBookingHandler) Type() string {
	return worker.JobTypeCompleteBooking
}

// Handle processes a booking completion job.
func (h *CompleteBookingHandler) Handle(ctx context.Context, payload []byte) error {
	var p worker.CompleteBookingPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.NewPermanentError(fmt.Errorf("unmarshal payload: %w", err))
	}

	repoBooking, err := h.queries.GetBookingByID(ctx, p.BookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worker.NewPermanentError(fmt.Errorf("booking %s not found", p.BookingID))
		}
		return fmt.Errorf("get booking: %w", err)
	}

	booking := domain.Booking{
		ID:       repoBooking.ID,
		CheckOut: repoBooking.CheckOut,
		Status:   domain.BookingStatus(repoBooking.Status),
	}

	// The job is scheduled for checkout time, but guard against early
	// delivery anyway.
	if time.Now().Before(booking.CheckOut) {
		return fmt.Errorf("booking %s checkout %s has not passed yet", booking.ID, booking.CheckOut)
	}

	var next domain.BookingStatus
	switch booking.Status {
	case domain.BookingStatusConfirmed:
		next = domain.BookingStatusCompleted
	case domain.BookingStatusPending:
		next = domain.BookingStatusCancelled
	default:
		// Already terminal; nothing to do.
		return nil
	}

	if err := booking.TransitionTo(next); err != nil {
		return worker.NewPermanentError(err)
	}
	err = h.queries.UpdateBookingStatus(ctx, repository.UpdateBookingStatusParams{
		ID:     booking.ID,
		Status: booking.Status.String(),
	})
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	h.logger.Info("booking finalized", "booking_id", booking.ID, "status", booking.Status)
	return nil
}
