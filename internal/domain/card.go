package domain

import (
	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PlaceholderImageURL is shown for listings that have no images yet.
const PlaceholderImageURL = "https://images.unsplash.com/photo-1560448204-e02f11c3d0e2?w=800&auto=format&fit=crop&q=60&ixlib=rb-4.0.3"

// cardPricePrinter formats nightly prices for display. A package-level
// printer keeps card aggregation allocation-light and deterministic.
var cardPricePrinter = message.NewPrinter(language.AmericanEnglish)

// PropertyCard is the normalized, purely presentational shape used by
// browse, wishlist, and trip views. Building it is idempotent: identical
// inputs always produce identical output.
type PropertyCard struct {
	ID           uuid.UUID        `json:"id"`
	Title        string           `json:"title"`
	Location     string           `json:"location"`
	Price        float64          `json:"price"`
	DisplayPrice string           `json:"display_price"`
	ImageURL     string           `json:"image_url"`
	Category     PropertyCategory `json:"category"`

	// Rating and IsSuperhost are absent until a review pipeline or host
	// quality signal backs them with real data. They are never synthesized.
	Rating      *float64 `json:"rating,omitempty"`
	IsSuperhost *bool    `json:"is_superhost,omitempty"`
}

// NewPropertyCard shapes a property and its ordered image set into a card.
//
// Primary image selection: the flagged image, else the first in arrival
// order, else the fixed placeholder URL.
func NewPropertyCard(p Property, images []PropertyImage) PropertyCard {
	imageURL := PlaceholderImageURL
	if img := PrimaryImage(images); img != nil {
		imageURL = img.ImageURL
	}

	return PropertyCard{
		ID:           p.ID,
		Title:        p.Title,
		Location:     p.Location,
		Price:        p.PricePerNight,
		DisplayPrice: cardPricePrinter.Sprintf("$%.2f", p.PricePerNight),
		ImageURL:     imageURL,
		Category:     p.Category,
	}
}

// WithRating returns a copy of the card carrying a review-backed rating.
func (c PropertyCard) WithRating(rating float64) PropertyCard {
	c.Rating = &rating
	return c
}
