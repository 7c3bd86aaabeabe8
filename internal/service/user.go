// Package service contains the business logic layer.
//
// Services orchestrate interactions between the repository, storage
// providers, and domain logic. They are responsible for:
// - Input validation
// - Business rule enforcement
// - Error translation (database errors -> domain errors)
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/wanderstay/wanderstay/internal/domain"
	"github.com/wanderstay/wanderstay/internal/metrics"
	"github.com/wanderstay/wanderstay/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt password hashing.
	BcryptCost = 12

	// SessionTokenBytes is the number of random bytes for session tokens.
	// 32 bytes = 256 bits of entropy; tokens are hex-encoded for transport.
	SessionTokenBytes = 32

	// DefaultSessionDuration is how long a session remains valid unless
	// configured otherwise.
	DefaultSessionDuration = 24 * time.Hour

	// MinSessionDuration and MaxSessionDuration bound configured values.
	MinSessionDuration = 15 * time.Minute
	MaxSessionDuration = 30 * 24 * time.Hour

	// MinPasswordLength is the minimum password length.
	MinPasswordLength = 8

	// MaxPasswordLength prevents DoS via bcrypt on very long passwords.
	// bcrypt has a 72-byte limit anyway, but we cap here for clarity.
	MaxPasswordLength = 72
)

// UserService defines the interface for account and session operations.
type UserService interface {
	// Register creates a new account.
	// Returns domain.ECONFLICT if the email already exists.
	Register(ctx context.Context, params domain.RegisterParams) (*domain.User, error)

	// Login authenticates a user and creates a new session.
	// Returns domain.EUNAUTHORIZED for invalid credentials.
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)

	// Logout invalidates a session by its raw token. Idempotent.
	Logout(ctx context.Context, token string) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetBySessionToken validates a session token and returns its user.
	// Returns domain.EUNAUTHORIZED if the token is invalid or expired.
	GetBySessionToken(ctx context.Context, token string) (*domain.User, error)

	// UpdateProfile updates profile fields (name, avatar URL).
	UpdateProfile(ctx context.Context, params domain.ProfileUpdateParams) error

	// DeleteExpiredSessions removes expired sessions. Called periodically
	// by the background worker.
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// UserServiceConfig tunes the user service.
type UserServiceConfig struct {
	SessionDuration time.Duration
}

type userService struct {
	queries         *repository.Queries
	logger          *slog.Logger
	sessionDuration time.Duration
}

// NewUserService creates a new UserService.
func NewUserService(queries *repository.Queries, logger *slog.Logger, cfg UserServiceConfig) UserService {
	return &userService{
		queries:         queries,
		logger:          logger,
		sessionDuration: normalizeSessionDuration(cfg.SessionDuration),
	}
}

// normalizeSessionDuration clamps the configured duration into the allowed
// range, falling back to the default when unset.
func normalizeSessionDuration(d time.Duration) time.Duration {
	if d == 0 {
		return DefaultSessionDuration
	}
	if d < MinSessionDuration {
		return MinSessionDuration
	}
	if d > MaxSessionDuration {
		return MaxSessionDuration
	}
	return d
}

func (s *userService) Register(ctx context.Context, params domain.RegisterParams) (*domain.User, error) {
	const op = "UserService.Register"

	email := strings.TrimSpace(strings.ToLower(params.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.Invalid(op, "A valid email address is required")
	}
	if err := validatePassword(params.Password); err != nil {
		return nil, err
	}

	// Reject duplicate emails up front for a friendlier error; the unique
	// index remains the authority under concurrent registration.
	if _, err := s.queries.GetUserByEmail(ctx, email); err == nil {
		return nil, domain.Conflict(op, "An account with this email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error("failed to check existing email", "error", err, "op", op)
		return nil, domain.Internal(err, op, "Failed to create account")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), BcryptCost)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to create account")
	}

	repoUser, err := s.queries.CreateUser(ctx, repository.CreateUserParams{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    toNullString(params.FirstName),
		LastName:     toNullString(params.LastName),
	})
	if err != nil {
		s.logger.Error("failed to create user", "error", err, "op", op)
		return nil, domain.Internal(err, op, "Failed to create account")
	}

	user := repoUserToDomain(repoUser)
	metrics.UsersRegistered.Inc()
	s.logger.Info("user registered", "user_id", user.ID)
	return &user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	const op = "UserService.Login"

	repoUser, err := s.queries.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Burn a bcrypt comparison to keep timing uniform for
			// unknown emails.
			_ = bcrypt.CompareHashAndPassword([]byte("$2a$12$invalidinvalidinvalidinvalidinvalidinvalidinvalidinva"), []byte(password))
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, domain.Unauthorized(op, "Invalid email or password")
		}
		s.logger.Error("failed to look up user", "error", err, "op", op)
		return nil, domain.Internal(err, op, "Failed to sign in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(repoUser.PasswordHash), []byte(password)); err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.Unauthorized(op, "Invalid email or password")
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to sign in")
	}

	expiresAt := time.Now().Add(s.sessionDuration)
	_, err = s.queries.CreateSession(ctx, repository.CreateSessionParams{
		UserID:    repoUser.ID,
		TokenHash: hashSessionToken(token),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		s.logger.Error("failed to create session", "error", err, "op", op, "user_id", repoUser.ID)
		return nil, domain.Internal(err, op, "Failed to sign in")
	}

	user := repoUserToDomain(repoUser)
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info("user logged in", "user_id", user.ID)

	return &domain.LoginResult{
		User:      &user,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *userService) Logout(ctx context.Context, token string) error {
	const op = "UserService.Logout"

	if token == "" {
		return nil
	}
	if err := s.queries.DeleteSessionByTokenHash(ctx, hashSessionToken(token)); err != nil {
		s.logger.Error("failed to delete session", "error", err, "op", op)
		return domain.Internal(err, op, "Failed to sign out")
	}
	return nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "UserService.GetByID"

	repoUser, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", id.String())
		}
		s.logger.Error("failed to get user", "error", err, "op", op, "user_id", id)
		return nil, domain.Internal(err, op, "Failed to retrieve user")
	}

	user := repoUserToDomain(repoUser)
	return &user, nil
}

func (s *userService) GetBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	const op = "UserService.GetBySessionToken"

	session, err := s.queries.GetSessionByTokenHash(ctx, hashSessionToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Unauthorized(op, "Invalid session")
		}
		s.logger.Error("failed to get session", "error", err, "op", op)
		return nil, domain.Internal(err, op, "Failed to validate session")
	}

	if time.Now().After(session.ExpiresAt) {
		// Expired sessions are cleaned up lazily here and in bulk by the
		// background worker.
		_ = s.queries.DeleteSessionByTokenHash(ctx, session.TokenHash)
		return nil, domain.Unauthorized(op, "Session expired")
	}

	repoUser, err := s.queries.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Unauthorized(op, "Invalid session")
		}
		s.logger.Error("failed to get session user", "error", err, "op", op, "user_id", session.UserID)
		return nil, domain.Internal(err, op, "Failed to validate session")
	}

	user := repoUserToDomain(repoUser)
	return &user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, params domain.ProfileUpdateParams) error {
	const op = "UserService.UpdateProfile"

	if _, err := s.queries.GetUserByID(ctx, params.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "user", params.UserID.String())
		}
		return domain.Internal(err, op, "Failed to update profile")
	}

	err := s.queries.UpdateUserProfile(ctx, repository.UpdateUserProfileParams{
		ID:        params.UserID,
		FirstName: toNullString(params.FirstName),
		LastName:  toNullString(params.LastName),
		AvatarUrl: toNullString(params.AvatarURL),
	})
	if err != nil {
		s.logger.Error("failed to update profile", "error", err, "op", op, "user_id", params.UserID)
		return domain.Internal(err, op, "Failed to update profile")
	}

	s.logger.Info("profile updated", "user_id", params.UserID)
	return nil
}

func (s *userService) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	const op = "UserService.DeleteExpiredSessions"

	count, err := s.queries.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, domain.Internal(err, op, "Failed to clean up sessions")
	}
	return count, nil
}

// validatePassword enforces password rules: length bounds plus at least one
// letter and one digit.
func validatePassword(password string) error {
	const op = "UserService.validatePassword"

	if len(password) < MinPasswordLength {
		return domain.Invalid(op, "Password must be at least 8 characters")
	}
	if len(password) > MaxPasswordLength {
		return domain.Invalid(op, "Password must be 72 characters or less")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return domain.Invalid(op, "Password must contain at least one letter and one number")
	}
	return nil
}

// generateSessionToken returns a new random hex-encoded session token.
func generateSessionToken() (string, error) {
	buf := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// hashSessionToken returns the SHA-256 hex digest stored in place of the
// raw token.
func hashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// repoUserToDomain converts a repository User to a domain User.
func repoUserToDomain(ru repository.User) domain.User {
	return domain.User{
		ID:            ru.ID,
		Email:         ru.Email,
		PasswordHash:  ru.PasswordHash,
		FirstName:     fromNullString(ru.FirstName),
		LastName:      fromNullString(ru.LastName),
		AvatarURL:     fromNullString(ru.AvatarUrl),
		EmailVerified: ru.EmailVerified,
		CreatedAt:     ru.CreatedAt.Time,
		UpdatedAt:     ru.UpdatedAt.Time,
	}
}

// toNullString converts a string to sql.NullString.
func toNullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{
		String: s,
		Valid:  s != "",
	}
}

// fromNullString converts sql.NullString to string.
func fromNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
