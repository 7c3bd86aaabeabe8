package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderstay/wanderstay/internal/domain"
	"github.com/wanderstay/wanderstay/internal/repository"
)

// fakeBookingStore is an in-memory BookingStore that counts every call, so
// tests can assert which persistence operations ran.
type fakeBookingStore struct {
	mu sync.Mutex

	properties map[uuid.UUID]repository.Property
	bookings   map[uuid.UUID]repository.Booking

	calls map[string]int

	// createBlock, when set, is closed by the test to let a pending
	// CreateBooking return. Used to hold a submission in flight.
	createBlock chan struct{}
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{
		properties: make(map[uuid.UUID]repository.Property),
		bookings:   make(map[uuid.UUID]repository.Booking),
		calls:      make(map[string]int),
	}
}

func (f *fakeBookingStore) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeBookingStore) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeBookingStore) GetPropertyByID(ctx context.Context, id uuid.UUID) (repository.Property, error) {
	f.record("GetPropertyByID")
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.properties[id]
	if !ok {
		return repository.Property{}, sql.ErrNoRows
	}
	return p, nil
}

func (f *fakeBookingStore) CreateBooking(ctx context.Context, arg repository.CreateBookingParams) (repository.Booking, error) {
	f.record("CreateBooking")
	if f.createBlock != nil {
		<-f.createBlock
	}
	b := repository.Booking{
		ID:         uuid.New(),
		PropertyID: arg.PropertyID,
		GuestID:    arg.GuestID,
		CheckIn:    arg.CheckIn,
		CheckOut:   arg.CheckOut,
		GuestCount: arg.GuestCount,
		TotalPrice: arg.TotalPrice,
		Status:     arg.Status,
		CreatedAt:  sql.NullTime{Time: time.Now(), Valid: true},
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[b.ID] = b
	return b, nil
}

func (f *fakeBookingStore) GetBookingByIDAndGuestID(ctx context.Context, arg repository.GetBookingByIDAndGuestIDParams) (repository.Booking, error) {
	f.record("GetBookingByIDAndGuestID")
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[arg.ID]
	if !ok || b.GuestID != arg.GuestID {
		return repository.Booking{}, sql.ErrNoRows
	}
	return b, nil
}

func (f *fakeBookingStore) ListBookingsByGuestID(ctx context.Context, guestID uuid.UUID) ([]repository.Booking, error) {
	f.record("ListBookingsByGuestID")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Booking
	for _, b := range f.bookings {
		if b.GuestID == guestID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) UpdateBookingStatus(ctx context.Context, arg repository.UpdateBookingStatusParams) error {
	f.record("UpdateBookingStatus")
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[arg.ID]
	if !ok {
		return sql.ErrNoRows
	}
	b.Status = arg.Status
	f.bookings[arg.ID] = b
	return nil
}

func (f *fakeBookingStore) ListImagesByPropertyIDs(ctx context.Context, propertyIDs []uuid.UUID) ([]repository.PropertyImage, error) {
	f.record("ListImagesByPropertyIDs")
	return nil, nil
}

func (f *fakeBookingStore) GetPropertiesByIDs(ctx context.Context, ids []uuid.UUID) ([]repository.Property, error) {
	f.record("GetPropertiesByIDs")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Property
	for _, id := range ids {
		if p, ok := f.properties[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBookingService(store *fakeBookingStore, now time.Time) *bookingService {
	svc := NewBookingService(store, nil, testLogger()).(*bookingService)
	svc.now = func() time.Time { return now }
	return svc
}

func seedProperty(store *fakeBookingStore, rate float64, maxGuests int32) uuid.UUID {
	id := uuid.New()
	store.properties[id] = repository.Property{
		ID:            id,
		HostID:        uuid.New(),
		Title:         "Harbor Loft",
		Category:      "Apartment",
		Location:      "Lisbon, Portugal",
		PricePerNight: rate,
		Bedrooms:      1,
		Bathrooms:     1,
		MaxGuests:     maxGuests,
	}
	return id
}

func TestBookingService_Submit_Unauthenticated(t *testing.T) {
	store := newFakeBookingStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestBookingService(store, now)

	_, err := svc.Submit(context.Background(), domain.SubmitBookingParams{
		PropertyID: uuid.New(),
		GuestID:    uuid.Nil,
		Dates: domain.DateRange{
			CheckIn:  time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
		},
		GuestCount: 2,
	})

	require.Error(t, err)
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))
	// An anonymous submission must never reach the store.
	assert.Equal(t, 0, store.totalCalls())
}

func TestBookingService_Submit_InvalidDates(t *testing.T) {
	store := newFakeBookingStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestBookingService(store, now)
	guestID := uuid.New()

	tests := []struct {
		name  string
		dates domain.DateRange
	}{
		{"unset", domain.DateRange{}},
		{"checkout before checkin", domain.DateRange{
			CheckIn:  time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		}},
		{"same day", domain.DateRange{
			CheckIn:  time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		}},
		{"checkin in the past", domain.DateRange{
			CheckIn:  time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2024, 5, 22, 0, 0, 0, 0, time.UTC),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), domain.SubmitBookingParams{
				PropertyID: uuid.New(),
				GuestID:    guestID,
				Dates:      tt.dates,
				GuestCount: 2,
			})
			require.Error(t, err)
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
		})
	}
	assert.Equal(t, 0, store.totalCalls())
}

func TestBookingService_Submit_RecomputesTotal(t *testing.T) {
	store := newFakeBookingStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestBookingService(store, now)
	propertyID := seedProperty(store, 150, 4)

	booking, err := svc.Submit(context.Background(), domain.SubmitBookingParams{
		PropertyID: propertyID,
		GuestID:    uuid.New(),
		Dates: domain.DateRange{
			CheckIn:  time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC),
		},
		GuestCount: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	assert.Equal(t, 3, booking.Nights())
	assert.InDelta(t, 450.0, booking.TotalPrice, 1e-9)
}

func TestBookingService_Submit_PropertyNotFound(t *testing.T) {
	store := newFakeBookingStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestBookingService(store, now)

	_, err := svc.Submit(context.Background(), domain.SubmitBookingParams{
		PropertyID: uuid.New(),
		GuestID:    uuid.New(),
		Dates: domain.DateRange{
			CheckIn:  time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
		},
		GuestCount: 2,
	})

	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
	assert.Equal(t, 0, store.calls["CreateBooking"])
}

func TestBookingService_Submit_GuestCountBounds(t *testing.T) {
	store := newFakeBookingStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestBookingService(store, now)
	propertyID := seedProperty(store, 100, 4)

	for _, count := range []int32{0, 5} {
		_, err := svc.Submit(context.Background(), domain.SubmitBookingParams{
			PropertyID: propertyID,
			GuestID:    uuid.New(),
			Dates: domain.DateRange{
				CheckIn:  time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
				CheckOut: time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
			},
			GuestCount: count,
		})
		require.Error(t, err)
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	}
	assert.Equal(t, 0, store.calls["CreateBooking"])
}

func TestBookingService_Submit_DoubleSubmission(t *testing.T) {
	store := newFakeBookingStore()
	store.createBlock = make(chan struct{})
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestBookingService(store, now)
	propertyID := seedProperty(store, 100, 4)
	guestID := uuid.New()

	params := domain.SubmitBookingParams{
		PropertyID: propertyID,
		GuestID:    guestID,
		Dates: domain.DateRange{
			CheckIn:  time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
		},
		GuestCount: 2,
	}

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), params)
		firstDone <- err
	}()

	// Wait for the first submission to reach the blocked CreateBooking.
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.calls["CreateBooking"] == 1
	}, time.Second, time.Millisecond)

	_, err := svc.Submit(context.Background(), params)
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))

	close(store.createBlock)
	require.NoError(t, <-firstDone)

	// The slot is released after the first submission completes.
	store.createBlock = nil
	_, err = svc.Submit(context.Background(), params)
	assert.NoError(t, err)
}

func TestBookingService_Quote(t *testing.T) {
	store := newFakeBookingStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestBookingService(store, now)
	propertyID := seedProperty(store, 89.50, 4)

	quote, err := svc.Quote(context.Background(), propertyID, domain.DateRange{
		CheckIn:  time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, 4, quote.Stay.Nights)
	assert.InDelta(t, 358.0, quote.Stay.Total, 1e-9)
	assert.InDelta(t, 89.50, quote.NightlyRate, 1e-9)
}

func TestBookingService_Quote_InvalidDates(t *testing.T) {
	store := newFakeBookingStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestBookingService(store, now)
	propertyID := seedProperty(store, 100, 4)

	tests := []struct {
		name  string
		dates domain.DateRange
	}{
		{"missing checkout", domain.DateRange{
			CheckIn: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		}},
		// The clock is pinned to June 1st, so May reads as the past.
		{"checkin in the past", domain.DateRange{
			CheckIn:  time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2024, 5, 22, 0, 0, 0, 0, time.UTC),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Quote(context.Background(), propertyID, tt.dates)
			require.Error(t, err)
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
		})
	}
	assert.Equal(t, 0, store.calls["GetPropertyByID"])
}

func TestBookingService_Cancel(t *testing.T) {
	store := newFakeBookingStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestBookingService(store, now)
	propertyID := seedProperty(store, 100, 4)
	guestID := uuid.New()

	booking, err := svc.Submit(context.Background(), domain.SubmitBookingParams{
		PropertyID: propertyID,
		GuestID:    guestID,
		Dates: domain.DateRange{
			CheckIn:  time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
		},
		GuestCount: 2,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), booking.ID, guestID))

	stored := store.bookings[booking.ID]
	assert.Equal(t, domain.BookingStatusCancelled.String(), stored.Status)

	// Cancelling a cancelled booking conflicts with the lifecycle.
	err = svc.Cancel(context.Background(), booking.ID, guestID)
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}

func TestBookingService_Cancel_WrongGuest(t *testing.T) {
	store := newFakeBookingStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestBookingService(store, now)
	propertyID := seedProperty(store, 100, 4)
	guestID := uuid.New()

	booking, err := svc.Submit(context.Background(), domain.SubmitBookingParams{
		PropertyID: propertyID,
		GuestID:    guestID,
		Dates: domain.DateRange{
			CheckIn:  time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
		},
		GuestCount: 2,
	})
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), booking.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestBookingService_GetByID_AttachesProperty(t *testing.T) {
	store := newFakeBookingStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestBookingService(store, now)
	propertyID := seedProperty(store, 100, 4)
	guestID := uuid.New()

	created, err := svc.Submit(context.Background(), domain.SubmitBookingParams{
		PropertyID: propertyID,
		GuestID:    guestID,
		Dates: domain.DateRange{
			CheckIn:  time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
		},
		GuestCount: 2,
	})
	require.NoError(t, err)

	booking, err := svc.GetByID(context.Background(), created.ID, guestID)
	require.NoError(t, err)
	require.NotNil(t, booking.Property)
	assert.Equal(t, "Harbor Loft", booking.Property.Title)
}
