package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// Property is the database row for the properties table.
type Property struct {
	ID            uuid.UUID
	HostID        uuid.UUID
	Title         string
	Description   string
	Category      string
	Location      string
	Address       sql.NullString
	PricePerNight float64
	Bedrooms      int32
	Bathrooms     int32
	MaxGuests     int32
	CreatedAt     sql.NullTime
	UpdatedAt     sql.NullTime
}

// PropertyImage is the database row for the property_images table.
type PropertyImage struct {
	ID         uuid.UUID
	PropertyID uuid.UUID
	ImageUrl   string
	IsPrimary  bool
	CreatedAt  sql.NullTime
}

// Review is the database row for the reviews table.
type Review struct {
	ID         uuid.UUID
	PropertyID uuid.UUID
	GuestID    uuid.UUID
	BookingID  uuid.UUID
	Rating     int32
	Comment    sql.NullString
	CreatedAt  sql.NullTime
}

const propertyColumns = `id, host_id, title, description, category, location, address, price_per_night, bedrooms, bathrooms, max_guests, created_at, updated_at`

func scanProperty(row interface{ Scan(...interface{}) error }) (Property, error) {
	var p Property
	err := row.Scan(&p.ID, &p.HostID, &p.Title, &p.Description, &p.Category, &p.Location,
		&p.Address, &p.PricePerNight, &p.Bedrooms, &p.Bathrooms, &p.MaxGuests, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const createProperty = `
INSERT INTO properties (host_id, title, description, category, location, address, price_per_night, bedrooms, bathrooms, max_guests)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + propertyColumns

// CreatePropertyParams contains parameters for CreateProperty.
type CreatePropertyParams struct {
	HostID        uuid.UUID
	Title         string
	Description   string
	Category      string
	Location      string
	Address       sql.NullString
	PricePerNight float64
	Bedrooms      int32
	Bathrooms     int32
	MaxGuests     int32
}

func (q *Queries) CreateProperty(ctx context.Context, arg CreatePropertyParams) (Property, error) {
	row := q.db.QueryRowContext(ctx, createProperty,
		arg.HostID, arg.Title, arg.Description, arg.Category, arg.Location, arg.Address,
		arg.PricePerNight, arg.Bedrooms, arg.Bathrooms, arg.MaxGuests)
	return scanProperty(row)
}

const getPropertyByID = `
SELECT ` + propertyColumns + `
FROM properties
WHERE id = $1
`

func (q *Queries) GetPropertyByID(ctx context.Context, id uuid.UUID) (Property, error) {
	return scanProperty(q.db.QueryRowContext(ctx, getPropertyByID, id))
}

const listProperties = `
SELECT ` + propertyColumns + `
FROM properties
WHERE ($1::text = '' OR category = $1)
ORDER BY created_at DESC
`

func (q *Queries) ListProperties(ctx context.Context, category string) ([]Property, error) {
	rows, err := q.db.QueryContext(ctx, listProperties, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const getPropertiesByIDs = `
SELECT ` + propertyColumns + `
FROM properties
WHERE id = ANY($1)
`

// GetPropertiesByIDs batch-loads a set of properties by id.
func (q *Queries) GetPropertiesByIDs(ctx context.Context, ids []uuid.UUID) ([]Property, error) {
	rows, err := q.db.QueryContext(ctx, getPropertiesByIDs, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const listImagesByPropertyID = `
SELECT id, property_id, image_url, is_primary, created_at
FROM property_images
WHERE property_id = $1
ORDER BY created_at, id
`

func (q *Queries) ListImagesByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]PropertyImage, error) {
	rows, err := q.db.QueryContext(ctx, listImagesByPropertyID, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPropertyImages(rows)
}

const listImagesByPropertyIDs = `
SELECT id, property_id, image_url, is_primary, created_at
FROM property_images
WHERE property_id = ANY($1)
ORDER BY created_at, id
`

// ListImagesByPropertyIDs batch-loads images for a set of properties,
// preserving per-property arrival order. The pgx stdlib driver encodes the
// uuid slice as a native array parameter.
func (q *Queries) ListImagesByPropertyIDs(ctx context.Context, propertyIDs []uuid.UUID) ([]PropertyImage, error) {
	rows, err := q.db.QueryContext(ctx, listImagesByPropertyIDs, propertyIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPropertyImages(rows)
}

func scanPropertyImages(rows *sql.Rows) ([]PropertyImage, error) {
	var items []PropertyImage
	for rows.Next() {
		var img PropertyImage
		if err := rows.Scan(&img.ID, &img.PropertyID, &img.ImageUrl, &img.IsPrimary, &img.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, img)
	}
	return items, rows.Err()
}

const createPropertyImage = `
INSERT INTO property_images (property_id, image_url, is_primary)
VALUES ($1, $2, $3)
RETURNING id, property_id, image_url, is_primary, created_at
`

// CreatePropertyImageParams contains parameters for CreatePropertyImage.
type CreatePropertyImageParams struct {
	PropertyID uuid.UUID
	ImageUrl   string
	IsPrimary  bool
}

func (q *Queries) CreatePropertyImage(ctx context.Context, arg CreatePropertyImageParams) (PropertyImage, error) {
	row := q.db.QueryRowContext(ctx, createPropertyImage, arg.PropertyID, arg.ImageUrl, arg.IsPrimary)
	var img PropertyImage
	err := row.Scan(&img.ID, &img.PropertyID, &img.ImageUrl, &img.IsPrimary, &img.CreatedAt)
	return img, err
}

const clearPrimaryImage = `
UPDATE property_images SET is_primary = false WHERE property_id = $1 AND is_primary
`

// ClearPrimaryImage drops the primary flag for a property so a new primary
// can be set while keeping at most one flagged image.
func (q *Queries) ClearPrimaryImage(ctx context.Context, propertyID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, clearPrimaryImage, propertyID)
	return err
}

const createReview = `
INSERT INTO reviews (property_id, guest_id, booking_id, rating, comment)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, property_id, guest_id, booking_id, rating, comment, created_at
`

// CreateReviewParams contains parameters for CreateReview.
type CreateReviewParams struct {
	PropertyID uuid.UUID
	GuestID    uuid.UUID
	BookingID  uuid.UUID
	Rating     int32
	Comment    sql.NullString
}

func (q *Queries) CreateReview(ctx context.Context, arg CreateReviewParams) (Review, error) {
	row := q.db.QueryRowContext(ctx, createReview, arg.PropertyID, arg.GuestID, arg.BookingID, arg.Rating, arg.Comment)
	var r Review
	err := row.Scan(&r.ID, &r.PropertyID, &r.GuestID, &r.BookingID, &r.Rating, &r.Comment, &r.CreatedAt)
	return r, err
}

const listReviewsByPropertyID = `
SELECT id, property_id, guest_id, booking_id, rating, comment, created_at
FROM reviews
WHERE property_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListReviewsByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]Review, error) {
	rows, err := q.db.QueryContext(ctx, listReviewsByPropertyID, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.PropertyID, &r.GuestID, &r.BookingID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getReviewSummary = `
SELECT coalesce(avg(rating), 0)::float8, count(*)
FROM reviews
WHERE property_id = $1
`

// GetReviewSummaryRow is the result of GetReviewSummary.
type GetReviewSummaryRow struct {
	Average float64
	Count   int64
}

func (q *Queries) GetReviewSummary(ctx context.Context, propertyID uuid.UUID) (GetReviewSummaryRow, error) {
	var row GetReviewSummaryRow
	err := q.db.QueryRowContext(ctx, getReviewSummary, propertyID).Scan(&row.Average, &row.Count)
	return row, err
}
