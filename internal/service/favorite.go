package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/wanderstay/wanderstay/internal/domain"
	"github.com/wanderstay/wanderstay/internal/repository"
)

// FavoriteService defines the interface for wishlist operations.
type FavoriteService interface {
	// Add puts a property on the user's wishlist. Idempotent.
	Add(ctx context.Context, userID, propertyID uuid.UUID) error

	// Remove takes a property off the wishlist. Idempotent.
	Remove(ctx context.Context, userID, propertyID uuid.UUID) error

	// List returns the wishlist as presentation cards, most recently
	// saved first.
	List(ctx context.Context, userID uuid.UUID) ([]domain.PropertyCard, error)
}

type favoriteService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(queries *repository.Queries, logger *slog.Logger) FavoriteService {
	return &favoriteService{queries: queries, logger: logger}
}

func (s *favoriteService) Add(ctx context.Context, userID, propertyID uuid.UUID) error {
	const op = "FavoriteService.Add"

	if userID == uuid.Nil {
		return domain.Unauthorized(op, "Please sign in to save properties")
	}

	err := s.queries.CreateFavorite(ctx, repository.CreateFavoriteParams{
		UserID:     userID,
		PropertyID: propertyID,
	})
	if err != nil {
		s.logger.Error("failed to create favorite", "error", err, "op", op,
			"user_id", userID, "property_id", propertyID)
		return domain.Internal(err, op, "Failed to save property")
	}
	return nil
}

func (s *favoriteService) Remove(ctx context.Context, userID, propertyID uuid.UUID) error {
	const op = "FavoriteService.Remove"

	if userID == uuid.Nil {
		return domain.Unauthorized(op, "Please sign in to manage saved properties")
	}

	err := s.queries.DeleteFavorite(ctx, repository.DeleteFavoriteParams{
		UserID:     userID,
		PropertyID: propertyID,
	})
	if err != nil {
		s.logger.Error("failed to delete favorite", "error", err, "op", op,
			"user_id", userID, "property_id", propertyID)
		return domain.Internal(err, op, "Failed to remove saved property")
	}
	return nil
}

func (s *favoriteService) List(ctx context.Context, userID uuid.UUID) ([]domain.PropertyCard, error) {
	const op = "FavoriteService.List"

	if userID == uuid.Nil {
		return nil, domain.Unauthorized(op, "Please sign in to view saved properties")
	}

	repoProperties, err := s.queries.ListFavoritePropertiesByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list favorites", "error", err, "op", op, "user_id", userID)
		return nil, domain.Internal(err, op, "Failed to load saved properties")
	}
	if len(repoProperties) == 0 {
		return []domain.PropertyCard{}, nil
	}

	ids := make([]uuid.UUID, len(repoProperties))
	for i, rp := range repoProperties {
		ids[i] = rp.ID
	}
	repoImages, err := s.queries.ListImagesByPropertyIDs(ctx, ids)
	if err != nil {
		s.logger.Error("failed to batch-load images", "error", err, "op", op, "user_id", userID)
		return nil, domain.Internal(err, op, "Failed to load saved properties")
	}
	imagesByProperty := make(map[uuid.UUID][]domain.PropertyImage)
	for _, ri := range repoImages {
		imagesByProperty[ri.PropertyID] = append(imagesByProperty[ri.PropertyID], repoImageToDomain(ri))
	}

	cards := make([]domain.PropertyCard, 0, len(repoProperties))
	for _, rp := range repoProperties {
		p := repoPropertyToDomain(rp)
		cards = append(cards, domain.NewPropertyCard(p, imagesByProperty[p.ID]))
	}
	return cards, nil
}
