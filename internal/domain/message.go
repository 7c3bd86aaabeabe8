package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct message between two users, typically guest and host.
type Message struct {
	ID          uuid.UUID
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Content     string
	Read        bool
	CreatedAt   time.Time

	Sender *User // Joined sender profile
}

// MaxMessageLength bounds message content; longer bodies are rejected.
const MaxMessageLength = 2000

// SendMessageParams contains parameters for sending a message.
type SendMessageParams struct {
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Content     string
}

// Favorite marks a property as wishlisted by a user. The pair
// (UserID, PropertyID) is unique.
type Favorite struct {
	UserID     uuid.UUID
	PropertyID uuid.UUID
	CreatedAt  time.Time
}
