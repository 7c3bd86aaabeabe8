package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeStay(t *testing.T) {
	tests := []struct {
		name       string
		checkIn    time.Time
		checkOut   time.Time
		rate       float64
		wantNights int
		wantTotal  float64
	}{
		{"three nights", date(2024, 6, 1), date(2024, 6, 4), 100, 3, 300},
		{"single night", date(2024, 6, 1), date(2024, 6, 2), 89.50, 1, 89.50},
		{"week at fractional rate", date(2024, 7, 10), date(2024, 7, 17), 120.25, 7, 841.75},
		{"zero rate", date(2024, 6, 1), date(2024, 6, 4), 0, 3, 0},

		// Unset dates always produce the zero stay.
		{"check-in unset", time.Time{}, date(2024, 6, 4), 100, 0, 0},
		{"check-out unset", date(2024, 6, 1), time.Time{}, 100, 0, 0},
		{"both unset", time.Time{}, time.Time{}, 100, 0, 0},

		// Inverted or same-day pairs are not a valid stay.
		{"same day", date(2024, 6, 1), date(2024, 6, 1), 100, 0, 0},
		{"inverted", date(2024, 6, 4), date(2024, 6, 1), 100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stay := ComputeStay(tt.checkIn, tt.checkOut, tt.rate)
			assert.Equal(t, tt.wantNights, stay.Nights)
			assert.InDelta(t, tt.wantTotal, stay.Total, 1e-9)
		})
	}
}

func TestComputeStay_IgnoresTimeOfDay(t *testing.T) {
	// A late check-in and early check-out on adjacent days is still one night.
	checkIn := time.Date(2024, 6, 1, 22, 30, 0, 0, time.UTC)
	checkOut := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)

	stay := ComputeStay(checkIn, checkOut, 150)
	assert.Equal(t, 1, stay.Nights)
	assert.InDelta(t, 150.0, stay.Total, 1e-9)
}

func TestDefaultCheckOut(t *testing.T) {
	checkIn := time.Date(2024, 6, 1, 15, 45, 0, 0, time.UTC)
	got := DefaultCheckOut(checkIn)
	assert.Equal(t, date(2024, 6, 2), got)

	// The reset pair is always a valid one-night stay.
	stay := ComputeStay(checkIn, got, 100)
	assert.Equal(t, 1, stay.Nights)
}

func TestDateRange_Validate(t *testing.T) {
	now := date(2024, 6, 1)

	tests := []struct {
		name    string
		r       DateRange
		wantErr bool
	}{
		{"valid future stay", DateRange{date(2024, 6, 2), date(2024, 6, 5)}, false},
		{"check-in today", DateRange{date(2024, 6, 1), date(2024, 6, 2)}, false},
		{"check-in unset", DateRange{time.Time{}, date(2024, 6, 5)}, true},
		{"check-out unset", DateRange{date(2024, 6, 2), time.Time{}}, true},
		{"check-out equals check-in", DateRange{date(2024, 6, 2), date(2024, 6, 2)}, true},
		{"check-out before check-in", DateRange{date(2024, 6, 5), date(2024, 6, 2)}, true},
		{"check-in in the past", DateRange{date(2024, 5, 30), date(2024, 6, 5)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate(now)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, EINVALID, ErrorCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBooking_TransitionTo(t *testing.T) {
	tests := []struct {
		name      string
		from      BookingStatus
		to        BookingStatus
		wantErr   bool
		wantState BookingStatus
	}{
		// Valid transitions
		{"pending to confirmed", BookingStatusPending, BookingStatusConfirmed, false, BookingStatusConfirmed},
		{"pending to cancelled", BookingStatusPending, BookingStatusCancelled, false, BookingStatusCancelled},
		{"confirmed to cancelled", BookingStatusConfirmed, BookingStatusCancelled, false, BookingStatusCancelled},
		{"confirmed to completed", BookingStatusConfirmed, BookingStatusCompleted, false, BookingStatusCompleted},

		// Invalid transitions
		{"pending to completed", BookingStatusPending, BookingStatusCompleted, true, BookingStatusPending},
		{"cancelled to confirmed", BookingStatusCancelled, BookingStatusConfirmed, true, BookingStatusCancelled},
		{"cancelled to pending", BookingStatusCancelled, BookingStatusPending, true, BookingStatusCancelled},
		{"completed to cancelled", BookingStatusCompleted, BookingStatusCancelled, true, BookingStatusCompleted},
		{"completed to confirmed", BookingStatusCompleted, BookingStatusConfirmed, true, BookingStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := &Booking{Status: tt.from}
			err := booking.TransitionTo(tt.to)

			if tt.wantErr {
				assert.Error(t, err)
				// Status should not change on error
				assert.Equal(t, tt.from, booking.Status)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantState, booking.Status)
			}
		})
	}
}

func TestBooking_CanBeCancelledByGuest(t *testing.T) {
	assert.True(t, (&Booking{Status: BookingStatusPending}).CanBeCancelledByGuest())
	assert.True(t, (&Booking{Status: BookingStatusConfirmed}).CanBeCancelledByGuest())
	assert.False(t, (&Booking{Status: BookingStatusCancelled}).CanBeCancelledByGuest())
	assert.False(t, (&Booking{Status: BookingStatusCompleted}).CanBeCancelledByGuest())
}

func TestBooking_Nights(t *testing.T) {
	b := &Booking{CheckIn: date(2024, 6, 1), CheckOut: date(2024, 6, 4)}
	assert.Equal(t, 3, b.Nights())
}
