package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wanderstay/wanderstay/internal/auth"
	"github.com/wanderstay/wanderstay/internal/domain"
	"github.com/wanderstay/wanderstay/internal/service"
)

// stubBookingService records the params it was called with and returns
// canned results.
type stubBookingService struct {
	submitParams *domain.SubmitBookingParams
	submitResult *domain.Booking
	submitErr    error
}

func (s *stubBookingService) Quote(ctx context.Context, propertyID uuid.UUID, dates domain.DateRange) (*service.BookingQuote, error) {
	return &service.BookingQuote{
		Stay:        domain.ComputeStay(dates.CheckIn, dates.CheckOut, 100),
		NightlyRate: 100,
	}, nil
}

func (s *stubBookingService) Submit(ctx context.Context, params domain.SubmitBookingParams) (*domain.Booking, error) {
	s.submitParams = &params
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return s.submitResult, nil
}

func (s *stubBookingService) GetByID(ctx context.Context, id, guestID uuid.UUID) (*domain.Booking, error) {
	return nil, domain.NotFound("stub.GetByID", "booking", id.String())
}

func (s *stubBookingService) ListForGuest(ctx context.Context, guestID uuid.UUID) ([]domain.Booking, error) {
	return nil, nil
}

func (s *stubBookingService) Cancel(ctx context.Context, id, guestID uuid.UUID) error {
	return nil
}

// withStubUser injects a user into the request context, standing in for the
// session middleware.
func withStubUser(user *domain.User, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user != nil {
			r = r.WithContext(auth.SetUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

func TestBookingHandler_Submit_Anonymous(t *testing.T) {
	svc := &stubBookingService{
		submitErr: domain.Unauthorized("BookingService.Submit", "Please sign in to book this property"),
	}
	h := NewBookingHandler(svc, testLogger())

	body := `{"property_id":"` + uuid.NewString() + `","check_in":"2030-06-10","check_out":"2030-06-12","guest_count":2}`
	req := httptest.NewRequest("POST", "/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	// The nil guest id flows through so the service owns the rejection.
	if svc.submitParams == nil {
		t.Fatal("expected the service to be called")
	}
	if svc.submitParams.GuestID != uuid.Nil {
		t.Errorf("expected nil guest id, got %s", svc.submitParams.GuestID)
	}
}

func TestBookingHandler_Submit_ParsesDates(t *testing.T) {
	guest := &domain.User{ID: uuid.New(), Email: "guest@example.com"}
	propertyID := uuid.New()
	svc := &stubBookingService{
		submitResult: &domain.Booking{
			ID:         uuid.New(),
			PropertyID: propertyID,
			GuestID:    guest.ID,
			CheckIn:    time.Date(2030, 6, 10, 0, 0, 0, 0, time.UTC),
			CheckOut:   time.Date(2030, 6, 12, 0, 0, 0, 0, time.UTC),
			GuestCount: 2,
			TotalPrice: 200,
			Status:     domain.BookingStatusPending,
		},
	}
	h := NewBookingHandler(svc, testLogger())

	body := `{"property_id":"` + propertyID.String() + `","check_in":"2030-06-10","check_out":"2030-06-12","guest_count":2}`
	req := httptest.NewRequest("POST", "/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()

	withStubUser(guest, http.HandlerFunc(h.Submit)).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.submitParams.GuestID != guest.ID {
		t.Errorf("expected guest id from context, got %s", svc.submitParams.GuestID)
	}
	if got := svc.submitParams.Dates.CheckIn; !got.Equal(time.Date(2030, 6, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected check-in: %v", got)
	}

	var resp struct {
		Nights     int     `json:"nights"`
		TotalPrice float64 `json:"total_price"`
		Status     string  `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Nights != 2 {
		t.Errorf("expected 2 nights, got %d", resp.Nights)
	}
	if resp.TotalPrice != 200 {
		t.Errorf("expected total 200, got %f", resp.TotalPrice)
	}
	if resp.Status != "pending" {
		t.Errorf("expected pending, got %s", resp.Status)
	}
}

func TestBookingHandler_Submit_MalformedDate(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{}, testLogger())

	body := `{"property_id":"` + uuid.NewString() + `","check_in":"June 10","check_out":"2030-06-12","guest_count":2}`
	req := httptest.NewRequest("POST", "/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestBookingHandler_Quote_DefaultsCheckout(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{}, testLogger())

	// Only a check-in: the quote defaults checkout to the next day.
	checkIn := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
	body := `{"property_id":"` + uuid.NewString() + `","check_in":"` + checkIn + `"}`
	req := httptest.NewRequest("POST", "/bookings/quote", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Quote(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Nights       int  `json:"nights"`
		DefaultedOut bool `json:"checkout_defaulted"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Nights != 1 {
		t.Errorf("expected 1 night, got %d", resp.Nights)
	}
	if !resp.DefaultedOut {
		t.Error("expected checkout_defaulted to be true")
	}
}
