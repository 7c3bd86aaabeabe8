package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Booking is the database row for the bookings table.
type Booking struct {
	ID         uuid.UUID
	PropertyID uuid.UUID
	GuestID    uuid.UUID
	CheckIn    time.Time
	CheckOut   time.Time
	GuestCount int32
	TotalPrice float64
	Status     string
	CreatedAt  sql.NullTime
	UpdatedAt  sql.NullTime
}

const bookingColumns = `id, property_id, guest_id, check_in, check_out, guest_count, total_price, status, created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.PropertyID, &b.GuestID, &b.CheckIn, &b.CheckOut,
		&b.GuestCount, &b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

const createBooking = `
INSERT INTO bookings (property_id, guest_id, check_in, check_out, guest_count, total_price, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + bookingColumns

// CreateBookingParams contains parameters for CreateBooking.
type CreateBookingParams struct {
	PropertyID uuid.UUID
	GuestID    uuid.UUID
	CheckIn    time.Time
	CheckOut   time.Time
	GuestCount int32
	TotalPrice float64
	Status     string
}

func (q *Queries) CreateBooking(ctx context.Context, arg CreateBookingParams) (Booking, error) {
	row := q.db.QueryRowContext(ctx, createBooking,
		arg.PropertyID, arg.GuestID, arg.CheckIn, arg.CheckOut, arg.GuestCount, arg.TotalPrice, arg.Status)
	return scanBooking(row)
}

const getBookingByID = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE id = $1
`

func (q *Queries) GetBookingByID(ctx context.Context, id uuid.UUID) (Booking, error) {
	return scanBooking(q.db.QueryRowContext(ctx, getBookingByID, id))
}

const getBookingByIDAndGuestID = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE id = $1 AND guest_id = $2
`

// GetBookingByIDAndGuestIDParams contains parameters for GetBookingByIDAndGuestID.
type GetBookingByIDAndGuestIDParams struct {
	ID      uuid.UUID
	GuestID uuid.UUID
}

func (q *Queries) GetBookingByIDAndGuestID(ctx context.Context, arg GetBookingByIDAndGuestIDParams) (Booking, error) {
	return scanBooking(q.db.QueryRowContext(ctx, getBookingByIDAndGuestID, arg.ID, arg.GuestID))
}

const listBookingsByGuestID = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE guest_id = $1
ORDER BY check_in DESC
`

func (q *Queries) ListBookingsByGuestID(ctx context.Context, guestID uuid.UUID) ([]Booking, error) {
	rows, err := q.db.QueryContext(ctx, listBookingsByGuestID, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

const updateBookingStatus = `
UPDATE bookings
SET status = $2, updated_at = now()
WHERE id = $1
`

// UpdateBookingStatusParams contains parameters for UpdateBookingStatus.
type UpdateBookingStatusParams struct {
	ID     uuid.UUID
	Status string
}

func (q *Queries) UpdateBookingStatus(ctx context.Context, arg UpdateBookingStatusParams) error {
	_, err := q.db.ExecContext(ctx, updateBookingStatus, arg.ID, arg.Status)
	return err
}
