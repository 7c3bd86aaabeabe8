package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/wanderstay/wanderstay/internal/auth"
	"github.com/wanderstay/wanderstay/internal/service"
)

// FavoriteHandler serves the wishlist endpoints.
type FavoriteHandler struct {
	favoriteService service.FavoriteService
	logger          *slog.Logger
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(favoriteService service.FavoriteService, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
		logger:          logger,
	}
}

// RegisterRoutes registers the wishlist routes. All require a session.
func (h *FavoriteHandler) RegisterRoutes(mux *http.ServeMux, withUser, requireUser func(http.Handler) http.Handler) {
	mux.Handle("GET /favorites", withUser(requireUser(http.HandlerFunc(h.List))))
	mux.Handle("PUT /favorites/{propertyID}", withUser(requireUser(http.HandlerFunc(h.Add))))
	mux.Handle("DELETE /favorites/{propertyID}", withUser(requireUser(http.HandlerFunc(h.Remove))))
}

// List handles GET /favorites, returning the caller's wishlist as cards.
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)

	cards, err := h.favoriteService.List(r.Context(), user.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{"favorites": cards})
}

// Add handles PUT /favorites/{propertyID}. Adding twice is a no-op.
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)

	propertyID, err := uuid.Parse(r.PathValue("propertyID"))
	if err != nil {
		NotFoundResponse(w, r, h.logger)
		return
	}

	if err := h.favoriteService.Add(r.Context(), user.ID, propertyID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusNoContent, nil)
}

// Remove handles DELETE /favorites/{propertyID}. Removing an absent
// favorite is a no-op.
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)

	propertyID, err := uuid.Parse(r.PathValue("propertyID"))
	if err != nil {
		NotFoundResponse(w, r, h.logger)
		return
	}

	if err := h.favoriteService.Remove(r.Context(), user.ID, propertyID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusNoContent, nil)
}
