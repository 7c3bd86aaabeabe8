package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. The same account can act as guest
// and as host; hosting is implied by owning properties.
type User struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string // bcrypt hash, never serialized
	FirstName     string
	LastName      string
	AvatarURL     string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FullName returns the display name, falling back to the email local part
// when the profile is incomplete.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

// RegisterParams contains parameters for creating a new account.
type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ProfileUpdateParams contains parameters for updating a user profile.
type ProfileUpdateParams struct {
	UserID    uuid.UUID
	FirstName string
	LastName  string
	AvatarURL string
}

// LoginResult is returned on successful authentication. Token is the raw
// session token handed to the client; only its hash is stored.
type LoginResult struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}

// Session represents an authenticated session. TokenHash is the SHA-256
// of the raw token.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
