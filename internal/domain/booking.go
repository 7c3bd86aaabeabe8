// Package domain contains core business types and interfaces.
//
// This file defines the Booking type, its status lifecycle, and the
// stay/price calculation used by the reservation flow.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Booking Status
// =============================================================================

// BookingStatus represents the lifecycle state of a reservation.
type BookingStatus string

const (
	// BookingStatusPending indicates the reservation was submitted and is
	// awaiting confirmation.
	BookingStatusPending BookingStatus = "pending"

	// BookingStatusConfirmed indicates the host (or payment flow) accepted
	// the reservation.
	BookingStatusConfirmed BookingStatus = "confirmed"

	// BookingStatusCancelled indicates the reservation was cancelled.
	BookingStatusCancelled BookingStatus = "cancelled"

	// BookingStatusCompleted indicates the stay has ended.
	BookingStatusCompleted BookingStatus = "completed"
)

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized value.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed,
		BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// IsTerminal returns true when no further transitions are allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

// validBookingTransitions maps each status to the statuses it may move to.
var validBookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled, BookingStatusCompleted},
	BookingStatusCancelled: {},
	BookingStatusCompleted: {},
}

// =============================================================================
// Stay Calculation
// =============================================================================

// Stay is the result of the availability and price calculation for a
// check-in/check-out pair.
type Stay struct {
	Nights int
	Total  float64
}

// ComputeStay calculates the number of whole nights and the total price for
// a date pair at the given nightly rate.
//
// A zero-value check-in or check-out means the date is unset and yields
// {0, 0}. The calculation is a whole-day difference; callers wanting a valid
// stay must see Nights >= 1. The nightly rate is not validated here — a zero
// or negative rate is a data-integrity concern of the listing write path.
func ComputeStay(checkIn, checkOut time.Time, nightlyRate float64) Stay {
	if checkIn.IsZero() || checkOut.IsZero() {
		return Stay{}
	}
	nights := wholeDaysBetween(checkIn, checkOut)
	if nights <= 0 {
		return Stay{}
	}
	return Stay{
		Nights: nights,
		Total:  float64(nights) * nightlyRate,
	}
}

// DefaultCheckOut returns the checkout date the picker resets to when a new
// check-in is selected: one day after check-in. This keeps the pair
// consistent, since a checkout on or before check-in is never selectable.
func DefaultCheckOut(checkIn time.Time) time.Time {
	return truncateToDay(checkIn).AddDate(0, 0, 1)
}

// wholeDaysBetween returns the whole-day difference between two instants,
// ignoring time-of-day.
func wholeDaysBetween(from, to time.Time) int {
	return int(truncateToDay(to).Sub(truncateToDay(from)) / (24 * time.Hour))
}

func truncateToDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// =============================================================================
// Date Range
// =============================================================================

// DateRange is the check-in/check-out pair selected by the guest.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// IsSet reports whether both bounds are present.
func (r DateRange) IsSet() bool {
	return !r.CheckIn.IsZero() && !r.CheckOut.IsZero()
}

// Nights returns the whole-day length of the range, or 0 when unset.
func (r DateRange) Nights() int {
	if !r.IsSet() {
		return 0
	}
	return wholeDaysBetween(r.CheckIn, r.CheckOut)
}

// Validate checks the booking invariants against the given "now":
// both bounds set, checkout strictly after check-in, and check-in not in
// the past (whole-day granularity).
func (r DateRange) Validate(now time.Time) error {
	const op = "DateRange.Validate"

	if !r.IsSet() {
		return Invalid(op, "Please select check-in and check-out dates")
	}
	if !truncateToDay(r.CheckOut).After(truncateToDay(r.CheckIn)) {
		return Invalid(op, "Check-out must be after check-in")
	}
	if truncateToDay(r.CheckIn).Before(truncateToDay(now)) {
		return Invalid(op, "Check-in cannot be in the past")
	}
	return nil
}

// =============================================================================
// Booking Domain Type
// =============================================================================

// Booking represents a guest's reservation of a property.
type Booking struct {
	ID         uuid.UUID
	PropertyID uuid.UUID
	GuestID    uuid.UUID
	CheckIn    time.Time
	CheckOut   time.Time
	GuestCount int32
	TotalPrice float64 // Derived: nights x nightly rate at submission time
	Status     BookingStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Joined data, populated by services where relevant.
	Property *Property
}

// Nights returns the length of the stay in whole nights.
func (b *Booking) Nights() int {
	return wholeDaysBetween(b.CheckIn, b.CheckOut)
}

// IsUpcoming reports whether the stay has not yet ended and is still live
// (pending or confirmed).
func (b *Booking) IsUpcoming(now time.Time) bool {
	if b.Status != BookingStatusPending && b.Status != BookingStatusConfirmed {
		return false
	}
	return truncateToDay(b.CheckOut).After(truncateToDay(now)) ||
		truncateToDay(b.CheckOut).Equal(truncateToDay(now))
}

// CanBeCancelledByGuest reports whether a guest-initiated cancellation is
// allowed in the current status.
func (b *Booking) CanBeCancelledByGuest() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// TransitionTo moves the booking to a new status, enforcing the lifecycle.
// The status is unchanged on error.
func (b *Booking) TransitionTo(next BookingStatus) error {
	const op = "Booking.TransitionTo"

	if !next.IsValid() {
		return Invalid(op, "unknown booking status "+next.String())
	}
	for _, allowed := range validBookingTransitions[b.Status] {
		if next == allowed {
			b.Status = next
			return nil
		}
	}
	return Errorf(ECONFLICT, op, "cannot transition booking from %s to %s", b.Status, next)
}

// SubmitBookingParams contains parameters for submitting a reservation.
// TotalPrice is intentionally absent: it is always recomputed server-side
// from the property's current nightly rate.
type SubmitBookingParams struct {
	PropertyID uuid.UUID
	GuestID    uuid.UUID
	Dates      DateRange
	GuestCount int32
}
