package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// Favorite is the database row for the favorites table.
type Favorite struct {
	UserID     uuid.UUID
	PropertyID uuid.UUID
	CreatedAt  sql.NullTime
}

const createFavorite = `
INSERT INTO favorites (user_id, property_id)
VALUES ($1, $2)
ON CONFLICT (user_id, property_id) DO NOTHING
`

// CreateFavoriteParams contains parameters for CreateFavorite.
type CreateFavoriteParams struct {
	UserID     uuid.UUID
	PropertyID uuid.UUID
}

// CreateFavorite is idempotent: adding an already-wishlisted property is a
// no-op.
func (q *Queries) CreateFavorite(ctx context.Context, arg CreateFavoriteParams) error {
	_, err := q.db.ExecContext(ctx, createFavorite, arg.UserID, arg.PropertyID)
	return err
}

const deleteFavorite = `
DELETE FROM favorites WHERE user_id = $1 AND property_id = $2
`

// DeleteFavoriteParams contains parameters for DeleteFavorite.
type DeleteFavoriteParams struct {
	UserID     uuid.UUID
	PropertyID uuid.UUID
}

func (q *Queries) DeleteFavorite(ctx context.Context, arg DeleteFavoriteParams) error {
	_, err := q.db.ExecContext(ctx, deleteFavorite, arg.UserID, arg.PropertyID)
	return err
}

const listFavoritePropertiesByUserID = `
SELECT p.id, p.host_id, p.title, p.description, p.category, p.location, p.address, p.price_per_night, p.bedrooms, p.bathrooms, p.max_guests, p.created_at, p.updated_at
FROM favorites f
JOIN properties p ON p.id = f.property_id
WHERE f.user_id = $1
ORDER BY f.created_at DESC
`

// ListFavoritePropertiesByUserID returns the user's wishlisted properties,
// most recently added first.
func (q *Queries) ListFavoritePropertiesByUserID(ctx context.Context, userID uuid.UUID) ([]Property, error) {
	rows, err := q.db.QueryContext(ctx, listFavoritePropertiesByUserID, userID)
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
