package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wanderstay/wanderstay/internal/domain"
	"github.com/wanderstay/wanderstay/internal/metrics"
	"github.com/wanderstay/wanderstay/internal/repository"
)

const (
	// MaxTitleLength bounds listing titles.
	MaxTitleLength = 200

	// MaxDescriptionLength bounds listing descriptions.
	MaxDescriptionLength = 5000

	// MaxNightlyRate is a sanity ceiling on the nightly price.
	MaxNightlyRate = 100_000
)

// PropertyService defines the interface for listing operations.
type PropertyService interface {
	// Create publishes a new listing for a host.
	Create(ctx context.Context, params domain.CreatePropertyParams) (*domain.Property, error)

	// GetByID retrieves a listing with its images, host profile, and
	// review summary.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)

	// Browse returns presentation cards for listings matching an optional
	// category filter and free-text search term. Cards carry a rating only
	// when reviews exist for the property.
	Browse(ctx context.Context, search string, category string) ([]domain.PropertyCard, error)

	// AddReview records a guest review for a completed stay.
	AddReview(ctx context.Context, guestID, bookingID uuid.UUID, rating int32, comment string) (*domain.Review, error)

	// ListReviews returns a property's reviews, newest first.
	ListReviews(ctx context.Context, propertyID uuid.UUID) ([]domain.Review, error)
}

type propertyService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(queries *repository.Queries, logger *slog.Logger) PropertyService {
	return &propertyService{queries: queries, logger: logger}
}

func (s *propertyService) Create(ctx context.Context, params domain.CreatePropertyParams) (*domain.Property, error) {
	const op = "PropertyService.Create"

	if params.HostID == uuid.Nil {
		return nil, domain.Unauthorized(op, "Please sign in to create a listing")
	}

	fields := make(map[string]string)
	title := strings.TrimSpace(params.Title)
	if title == "" {
		fields["title"] = "Title is required"
	} else if len(title) > MaxTitleLength {
		fields["title"] = "Title is too long"
	}
	if len(params.Description) > MaxDescriptionLength {
		fields["description"] = "Description is too long"
	}
	if !params.Category.IsValid() {
		fields["category"] = "Unknown category"
	}
	if strings.TrimSpace(params.Location) == "" {
		fields["location"] = "Location is required"
	}
	if params.PricePerNight <= 0 || params.PricePerNight > MaxNightlyRate {
		fields["price_per_night"] = "Nightly price must be positive"
	}
	if params.Bedrooms < 0 || params.Bathrooms < 0 {
		fields["bedrooms"] = "Room counts cannot be negative"
	}
	if params.MaxGuests < 1 {
		fields["max_guests"] = "A listing must accommodate at least one guest"
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Op: op, Fields: fields}
	}

	repoProperty, err := s.queries.CreateProperty(ctx, repository.CreatePropertyParams{
		HostID:        params.HostID,
		Title:         title,
		Description:   strings.TrimSpace(params.Description),
		Category:      params.Category.String(),
		Location:      strings.TrimSpace(params.Location),
		Address:       toNullString(params.Address),
		PricePerNight: params.PricePerNight,
		Bedrooms:      params.Bedrooms,
		Bathrooms:     params.Bathrooms,
		MaxGuests:     params.MaxGuests,
	})
	if err != nil {
		s.logger.Error("failed to create property", "error", err, "op", op, "host_id", params.HostID)
		return nil, domain.Internal(err, op, "Failed to create listing")
	}

	property := repoPropertyToDomain(repoProperty)
	metrics.PropertiesCreated.Inc()
	s.logger.Info("property created", "property_id", property.ID, "host_id", property.HostID,
		"category", property.Category)
	return &property, nil
}

func (s *propertyService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	const op = "PropertyService.GetByID"

	repoProperty, err := s.queries.GetPropertyByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "property", id.String())
		}
		s.logger.Error("failed to get property", "error", err, "op", op, "property_id", id)
		return nil, domain.Internal(err, op, "Failed to retrieve listing")
	}
	property := repoPropertyToDomain(repoProperty)

	repoImages, err := s.queries.ListImagesByPropertyID(ctx, id)
	if err != nil {
		s.logger.Error("failed to list property images", "error", err, "op", op, "property_id", id)
		return nil, domain.Internal(err, op, "Failed to retrieve listing")
	}
	for _, ri := range repoImages {
		property.Images = append(property.Images, repoImageToDomain(ri))
	}

	repoHost, err := s.queries.GetUserByID(ctx, property.HostID)
	if err == nil {
		host := repoUserToDomain(repoHost)
		host.PasswordHash = ""
		property.Host = &host
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error("failed to load host profile", "error", err, "op", op, "property_id", id)
	}

	return &property, nil
}

func (s *propertyService) Browse(ctx context.Context, search string, category string) ([]domain.PropertyCard, error) {
	const op = "PropertyService.Browse"

	if category != "" && !domain.PropertyCategory(category).IsValid() {
		return nil, domain.Invalid(op, "Unknown category")
	}

	repoProperties, err := s.queries.ListProperties(ctx, category)
	if err != nil {
		s.logger.Error("failed to list properties", "error", err, "op", op)
		return nil, domain.Internal(err, op, "Failed to load listings")
	}

	var matched []domain.Property
	var ids []uuid.UUID
	for _, rp := range repoProperties {
		p := repoPropertyToDomain(rp)
		if p.MatchesSearch(search) {
			matched = append(matched, p)
			ids = append(ids, p.ID)
		}
	}
	if len(matched) == 0 {
		return []domain.PropertyCard{}, nil
	}

	repoImages, err := s.queries.ListImagesByPropertyIDs(ctx, ids)
	if err != nil {
		s.logger.Error("failed to batch-load images", "error", err, "op", op)
		return nil, domain.Internal(err, op, "Failed to load listings")
	}
	imagesByProperty := make(map[uuid.UUID][]domain.PropertyImage)
	for _, ri := range repoImages {
		imagesByProperty[ri.PropertyID] = append(imagesByProperty[ri.PropertyID], repoImageToDomain(ri))
	}

	cards := make([]domain.PropertyCard, 0, len(matched))
	for _, p := range matched {
		card := domain.NewPropertyCard(p, imagesByProperty[p.ID])
		summary, err := s.queries.GetReviewSummary(ctx, p.ID)
		if err != nil {
			s.logger.Error("failed to load review summary", "error", err, "op", op, "property_id", p.ID)
		} else if summary.Count > 0 {
			card = card.WithRating(summary.Average)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (s *propertyService) AddReview(ctx context.Context, guestID, bookingID uuid.UUID, rating int32, comment string) (*domain.Review, error) {
	const op = "PropertyService.AddReview"

	if guestID == uuid.Nil {
		return nil, domain.Unauthorized(op, "Please sign in to leave a review")
	}
	if rating < 1 || rating > 5 {
		return nil, domain.Invalid(op, "Rating must be between 1 and 5")
	}

	repoBooking, err := s.queries.GetBookingByIDAndGuestID(ctx, repository.GetBookingByIDAndGuestIDParams{
		ID:      bookingID,
		GuestID: guestID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "booking", bookingID.String())
		}
		s.logger.Error("failed to load booking for review", "error", err, "op", op, "booking_id", bookingID)
		return nil, domain.Internal(err, op, "Failed to save review")
	}
	if domain.BookingStatus(repoBooking.Status) != domain.BookingStatusCompleted {
		return nil, domain.Invalid(op, "Only completed stays can be reviewed")
	}

	repoReview, err := s.queries.CreateReview(ctx, repository.CreateReviewParams{
		PropertyID: repoBooking.PropertyID,
		GuestID:    guestID,
		BookingID:  bookingID,
		Rating:     rating,
		Comment:    toNullString(comment),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflict(op, "This stay has already been reviewed")
		}
		s.logger.Error("failed to create review", "error", err, "op", op, "booking_id", bookingID)
		return nil, domain.Internal(err, op, "Failed to save review")
	}

	review := repoReviewToDomain(repoReview)
	s.logger.Info("review created", "review_id", review.ID, "property_id", review.PropertyID, "rating", rating)
	return &review, nil
}

func (s *propertyService) ListReviews(ctx context.Context, propertyID uuid.UUID) ([]domain.Review, error) {
	const op = "PropertyService.ListReviews"

	repoReviews, err := s.queries.ListReviewsByPropertyID(ctx, propertyID)
	if err != nil {
		s.logger.Error("failed to list reviews", "error", err, "op", op, "property_id", propertyID)
		return nil, domain.Internal(err, op, "Failed to load reviews")
	}

	reviews := make([]domain.Review, len(repoReviews))
	for i, rr := range repoReviews {
		reviews[i] = repoReviewToDomain(rr)
	}
	return reviews, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func repoPropertyToDomain(rp repository.Property) domain.Property {
	return domain.Property{
		ID:            rp.ID,
		HostID:        rp.HostID,
		Title:         rp.Title,
		Description:   rp.Description,
		Category:      domain.PropertyCategory(rp.Category),
		Location:      rp.Location,
		Address:       fromNullString(rp.Address),
		PricePerNight: rp.PricePerNight,
		Bedrooms:      rp.Bedrooms,
		Bathrooms:     rp.Bathrooms,
		MaxGuests:     rp.MaxGuests,
		CreatedAt:     rp.CreatedAt.Time,
		UpdatedAt:     rp.UpdatedAt.Time,
	}
}

func repoImageToDomain(ri repository.PropertyImage) domain.PropertyImage {
	return domain.PropertyImage{
		ID:         ri.ID,
		PropertyID: ri.PropertyID,
		ImageURL:   ri.ImageUrl,
		IsPrimary:  ri.IsPrimary,
		CreatedAt:  ri.CreatedAt.Time,
	}
}

func repoReviewToDomain(rr repository.Review) domain.Review {
	return domain.Review{
		ID:         rr.ID,
		PropertyID: rr.PropertyID,
		GuestID:    rr.GuestID,
		BookingID:  rr.BookingID,
		Rating:     rr.Rating,
		Comment:    fromNullString(rr.Comment),
		CreatedAt:  rr.CreatedAt.Time,
	}
}
