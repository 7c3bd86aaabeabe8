package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPrimaryImage(t *testing.T) {
	flagged := PropertyImage{ID: uuid.New(), ImageURL: "b", IsPrimary: true}
	plain := PropertyImage{ID: uuid.New(), ImageURL: "a"}

	t.Run("flagged image wins over order", func(t *testing.T) {
		got := PrimaryImage([]PropertyImage{plain, flagged})
		if assert.NotNil(t, got) {
			assert.Equal(t, "b", got.ImageURL)
		}
	})

	t.Run("no flag falls back to first", func(t *testing.T) {
		second := PropertyImage{ID: uuid.New(), ImageURL: "c"}
		got := PrimaryImage([]PropertyImage{plain, second})
		if assert.NotNil(t, got) {
			assert.Equal(t, "a", got.ImageURL)
		}
	})

	t.Run("empty set", func(t *testing.T) {
		assert.Nil(t, PrimaryImage(nil))
	})
}

func TestNewPropertyCard(t *testing.T) {
	property := Property{
		ID:            uuid.New(),
		Title:         "Cozy Apartment in Downtown",
		Location:      "New York, NY",
		Category:      CategoryApartment,
		PricePerNight: 150,
	}

	t.Run("uses primary image", func(t *testing.T) {
		images := []PropertyImage{
			{ImageURL: "a", IsPrimary: false},
			{ImageURL: "b", IsPrimary: true},
		}
		card := NewPropertyCard(property, images)
		assert.Equal(t, "b", card.ImageURL)
		assert.Equal(t, property.Title, card.Title)
		assert.Equal(t, property.Location, card.Location)
		assert.Equal(t, CategoryApartment, card.Category)
	})

	t.Run("empty images fall back to placeholder", func(t *testing.T) {
		card := NewPropertyCard(property, nil)
		assert.Equal(t, PlaceholderImageURL, card.ImageURL)
	})

	t.Run("rating and superhost absent by default", func(t *testing.T) {
		card := NewPropertyCard(property, nil)
		assert.Nil(t, card.Rating)
		assert.Nil(t, card.IsSuperhost)
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		images := []PropertyImage{{ImageURL: "a"}, {ImageURL: "b", IsPrimary: true}}
		first := NewPropertyCard(property, images)
		second := NewPropertyCard(property, images)
		assert.Equal(t, first, second)
	})

	t.Run("formats display price", func(t *testing.T) {
		card := NewPropertyCard(Property{PricePerNight: 1250}, nil)
		assert.Equal(t, "$1,250.00", card.DisplayPrice)
	})
}

func TestPropertyCard_WithRating(t *testing.T) {
	card := NewPropertyCard(Property{Title: "x"}, nil)
	rated := card.WithRating(4.5)

	if assert.NotNil(t, rated.Rating) {
		assert.Equal(t, 4.5, *rated.Rating)
	}
	// Original card is untouched.
	assert.Nil(t, card.Rating)
}

func TestProperty_MatchesSearch(t *testing.T) {
	p := &Property{Title: "Beachfront Villa", Location: "Malibu, CA", Category: CategoryVilla}

	assert.True(t, p.MatchesSearch(""))
	assert.True(t, p.MatchesSearch("beach"))
	assert.True(t, p.MatchesSearch("malibu"))
	assert.True(t, p.MatchesSearch("Villa"))
	assert.False(t, p.MatchesSearch("cabin"))
}

func TestPropertyCategory_IsValid(t *testing.T) {
	for _, c := range []PropertyCategory{
		CategoryApartment, CategoryHouse, CategoryCondo,
		CategoryVilla, CategoryCabin, CategoryCottage,
	} {
		assert.True(t, c.IsValid(), c)
	}
	assert.False(t, PropertyCategory("Treehouse").IsValid())
}
