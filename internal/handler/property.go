package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/wanderstay/wanderstay/internal/auth"
	"github.com/wanderstay/wanderstay/internal/domain"
	"github.com/wanderstay/wanderstay/internal/service"
)

// PropertyHandler serves listing endpoints: browse, detail, creation,
// photo upload, and reviews.
type PropertyHandler struct {
	propertyService service.PropertyService
	photoService    service.PhotoService
	logger          *slog.Logger
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(propertyService service.PropertyService, photoService service.PhotoService, logger *slog.Logger) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		photoService:    photoService,
		logger:          logger,
	}
}

// RegisterRoutes registers the listing routes. Browse and detail are
// public; everything else requires a session.
func (h *PropertyHandler) RegisterRoutes(mux *http.ServeMux, withUser, requireUser func(http.Handler) http.Handler) {
	mux.Handle("GET /properties", http.HandlerFunc(h.Browse))
	mux.Handle("GET /properties/{id}", http.HandlerFunc(h.Get))
	mux.Handle("GET /properties/{id}/reviews", http.HandlerFunc(h.ListReviews))
	mux.Handle("POST /properties", withUser(requireUser(http.HandlerFunc(h.Create))))
	mux.Handle("POST /properties/{id}/images", withUser(requireUser(http.HandlerFunc(h.UploadImage))))
	mux.Handle("POST /reviews", withUser(requireUser(http.HandlerFunc(h.CreateReview))))
}

type createPropertyRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Location      string  `json:"location"`
	Address       string  `json:"address"`
	PricePerNight float64 `json:"price_per_night"`
	Bedrooms      int32   `json:"bedrooms"`
	Bathrooms     int32   `json:"bathrooms"`
	MaxGuests     int32   `json:"max_guests"`
}

type propertyImageResponse struct {
	ID        string `json:"id"`
	ImageURL  string `json:"image_url"`
	IsPrimary bool   `json:"is_primary"`
}

type propertyResponse struct {
	ID            string                  `json:"id"`
	HostID        string                  `json:"host_id"`
	Title         string                  `json:"title"`
	Description   string                  `json:"description"`
	Category      string                  `json:"category"`
	Location      string                  `json:"location"`
	PricePerNight float64                 `json:"price_per_night"`
	Bedrooms      int32                   `json:"bedrooms"`
	Bathrooms     int32                   `json:"bathrooms"`
	MaxGuests     int32                   `json:"max_guests"`
	Images        []propertyImageResponse `json:"images"`
	HostName      string                  `json:"host_name,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
}

func toPropertyResponse(p *domain.Property) propertyResponse {
	images := make([]propertyImageResponse, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, propertyImageResponse{
			ID:        img.ID.String(),
			ImageURL:  img.ImageURL,
			IsPrimary: img.IsPrimary,
		})
	}

	resp := propertyResponse{
		ID:            p.ID.String(),
		HostID:        p.HostID.String(),
		Title:         p.Title,
		Description:   p.Description,
		Category:      p.Category.String(),
		Location:      p.Location,
		PricePerNight: p.PricePerNight,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		MaxGuests:     p.MaxGuests,
		Images:        images,
		CreatedAt:     p.CreatedAt,
	}
	if p.Host != nil {
		resp.HostName = p.Host.FullName()
	}
	return resp
}

// Browse handles GET /properties?search=&category=.
func (h *PropertyHandler) Browse(w http.ResponseWriter, r *http.Request) {
	cards, err := h.propertyService.Browse(r.Context(), r.URL.Query().Get("search"), r.URL.Query().Get("category"))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{"properties": cards})
}

// Get handles GET /properties/{id}.
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		NotFoundResponse(w, r, h.logger)
		return
	}

	property, err := h.propertyService.GetByID(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, toPropertyResponse(property))
}

// Create handles POST /properties.
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)

	var req createPropertyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	property, err := h.propertyService.Create(r.Context(), domain.CreatePropertyParams{
		HostID:        user.ID,
		Title:         req.Title,
		Description:   req.Description,
		Category:      domain.PropertyCategory(req.Category),
		Location:      req.Location,
		Address:       req.Address,
		PricePerNight: req.PricePerNight,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		MaxGuests:     req.MaxGuests,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, toPropertyResponse(property))
}

// UploadImage handles POST /properties/{id}/images (multipart form, field
// "image", optional "primary" flag).
func (h *PropertyHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)

	propertyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		NotFoundResponse(w, r, h.logger)
		return
	}

	if err := r.ParseMultipartForm(domain.MaxImageSize); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("PropertyHandler.UploadImage", "Invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("PropertyHandler.UploadImage", "Missing image file"))
		return
	}
	defer file.Close()

	makePrimary := r.FormValue("primary") == "true"

	img, err := h.photoService.UploadPropertyImage(r.Context(), file, header, propertyID, user.ID, makePrimary)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, propertyImageResponse{
		ID:        img.ID.String(),
		ImageURL:  img.ImageURL,
		IsPrimary: img.IsPrimary,
	})
}

type createReviewRequest struct {
	BookingID string `json:"booking_id"`
	Rating    int32  `json:"rating"`
	Comment   string `json:"comment"`
}

type reviewResponse struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	Rating     int32     `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateReview handles POST /reviews.
func (h *PropertyHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)

	var req createReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("PropertyHandler.CreateReview", "Invalid booking id"))
		return
	}

	review, err := h.propertyService.AddReview(r.Context(), user.ID, bookingID, req.Rating, req.Comment)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, reviewResponse{
		ID:         review.ID.String(),
		PropertyID: review.PropertyID.String(),
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  review.CreatedAt,
	})
}

// ListReviews handles GET /properties/{id}/reviews.
func (h *PropertyHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		NotFoundResponse(w, r, h.logger)
		return
	}

	reviews, err := h.propertyService.ListReviews(r.Context(), propertyID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]reviewResponse, 0, len(reviews))
	for _, rev := range reviews {
		out = append(out, reviewResponse{
			ID:         rev.ID.String(),
			PropertyID: rev.PropertyID.String(),
			Rating:     rev.Rating,
			Comment:    rev.Comment,
			CreatedAt:  rev.CreatedAt,
		})
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{"reviews": out})
}
