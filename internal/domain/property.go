// Package domain contains core business types and interfaces.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PropertyCategory classifies a listing.
type PropertyCategory string

const (
	CategoryApartment PropertyCategory = "Apartment"
	CategoryHouse     PropertyCategory = "House"
	CategoryCondo     PropertyCategory = "Condo"
	CategoryVilla     PropertyCategory = "Villa"
	CategoryCabin     PropertyCategory = "Cabin"
	CategoryCottage   PropertyCategory = "Cottage"
)

// String returns the string representation of the category.
func (c PropertyCategory) String() string {
	return string(c)
}

// IsValid returns true if the category is a recognized value.
func (c PropertyCategory) IsValid() bool {
	switch c {
	case CategoryApartment, CategoryHouse, CategoryCondo,
		CategoryVilla, CategoryCabin, CategoryCottage:
		return true
	}
	return false
}

// Property represents a rental listing created by a host.
//
// The listing is read-only outside the host creation flow; pricing and
// capacity changes go through the host, never through the booking path.
type Property struct {
	ID            uuid.UUID
	HostID        uuid.UUID
	Title         string
	Description   string
	Category      PropertyCategory
	Location      string // City-level display location, e.g. "Lisbon, Portugal"
	Address       string // Full street address, shown to confirmed guests only
	PricePerNight float64
	Bedrooms      int32
	Bathrooms     int32
	MaxGuests     int32
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Joined data, populated by services where relevant.
	Images []PropertyImage
	Host   *User
}

// PropertyImage represents one photo attached to a listing. At most one
// image per property carries the primary flag.
type PropertyImage struct {
	ID         uuid.UUID
	PropertyID uuid.UUID
	ImageURL   string
	IsPrimary  bool
	CreatedAt  time.Time
}

// PrimaryImage selects the representative image from an ordered set:
// the flagged image if present, otherwise the first in arrival order.
// Returns nil for an empty set.
func PrimaryImage(images []PropertyImage) *PropertyImage {
	for i := range images {
		if images[i].IsPrimary {
			return &images[i]
		}
	}
	if len(images) > 0 {
		return &images[0]
	}
	return nil
}

// MatchesSearch reports whether the listing matches a free-text search term
// against title, location, and category. Empty terms match everything.
func (p *Property) MatchesSearch(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Location), term) ||
		strings.Contains(strings.ToLower(string(p.Category)), term)
}

// CreatePropertyParams contains validated parameters for creating a listing.
type CreatePropertyParams struct {
	HostID        uuid.UUID
	Title         string
	Description   string
	Category      PropertyCategory
	Location      string
	Address       string
	PricePerNight float64
	Bedrooms      int32
	Bathrooms     int32
	MaxGuests     int32
}

// AddPropertyImageParams contains parameters for attaching an image record
// to a listing after the file has been stored.
type AddPropertyImageParams struct {
	PropertyID uuid.UUID
	HostID     uuid.UUID // For authorization
	ImageURL   string
	IsPrimary  bool
}

// Review represents a guest review of a completed stay.
type Review struct {
	ID         uuid.UUID
	PropertyID uuid.UUID
	GuestID    uuid.UUID
	BookingID  uuid.UUID
	Rating     int32 // 1..5
	Comment    string
	CreatedAt  time.Time

	Guest *User // Joined reviewer profile
}

// ReviewSummary aggregates review data for a property.
type ReviewSummary struct {
	Average float64
	Count   int32
}
