package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/wanderstay/wanderstay/internal/auth"
	"github.com/wanderstay/wanderstay/internal/domain"
	"github.com/wanderstay/wanderstay/internal/middleware"
	"github.com/wanderstay/wanderstay/internal/service"
)

// AuthHandler serves account endpoints: signup, login, logout, and the
// profile.
type AuthHandler struct {
	userService  service.UserService
	photoService service.PhotoService
	limiter      *middleware.AuthRateLimiter
	logger       *slog.Logger
	isSecure     bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	userService service.UserService,
	photoService service.PhotoService,
	limiter *middleware.AuthRateLimiter,
	logger *slog.Logger,
	isSecure bool,
) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		photoService: photoService,
		limiter:      limiter,
		logger:       logger,
		isSecure:     isSecure,
	}
}

// RegisterRoutes registers the account routes.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, withUser, requireUser func(http.Handler) http.Handler) {
	mux.Handle("POST /signup", h.limiter.LimitRegister(http.HandlerFunc(h.Signup)))
	mux.Handle("POST /login", h.limiter.LimitLogin(http.HandlerFunc(h.Login)))
	mux.Handle("POST /logout", withUser(http.HandlerFunc(h.Logout)))
	mux.Handle("GET /me", withUser(requireUser(http.HandlerFunc(h.Me))))
	mux.Handle("PUT /me", withUser(requireUser(http.HandlerFunc(h.UpdateMe))))
	mux.Handle("POST /me/avatar", withUser(requireUser(http.HandlerFunc(h.UploadAvatar))))
}

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AvatarURL string `json:"avatar_url"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	user, err := h.userService.Register(r.Context(), domain.RegisterParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	// Log the new account straight in.
	result, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	middleware.SetSessionCookie(w, result.Token, maxAge, h.isSecure)
	respondJSON(w, h.logger, http.StatusCreated, toUserResponse(user))
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	result, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	middleware.SetSessionCookie(w, result.Token, maxAge, h.isSecure)
	respondJSON(w, h.logger, http.StatusOK, toUserResponse(result.User))
}

// Logout handles POST /logout. Idempotent: logging out without a session
// still succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.userService.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Error("failed to delete session", "error", err)
		}
	}
	middleware.ClearSessionCookie(w, h.isSecure)
	respondJSON(w, h.logger, http.StatusNoContent, nil)
}

// Me handles GET /me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)
	respondJSON(w, h.logger, http.StatusOK, toUserResponse(user))
}

// UpdateMe handles PUT /me.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	err := h.userService.UpdateProfile(r.Context(), domain.ProfileUpdateParams{
		UserID:    user.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	updated, err := h.userService.GetByID(r.Context(), user.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, toUserResponse(updated))
}

// UploadAvatar handles POST /me/avatar (multipart form, field "avatar").
func (h *AuthHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)

	if err := r.ParseMultipartForm(domain.MaxAvatarSize); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("AuthHandler.UploadAvatar", "Invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("AuthHandler.UploadAvatar", "Missing avatar file"))
		return
	}
	defer file.Close()

	avatarURL, err := h.photoService.UploadAvatar(r.Context(), file, header, user.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]string{"avatar_url": avatarURL})
}
