package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/wanderstay/wanderstay/internal/domain"
	"github.com/wanderstay/wanderstay/internal/metrics"
	"github.com/wanderstay/wanderstay/internal/repository"
)

// MessageService defines the interface for guest/host messaging.
type MessageService interface {
	// Send delivers a message from one user to another.
	Send(ctx context.Context, params domain.SendMessageParams) (*domain.Message, error)

	// Conversation returns the full history between the user and another
	// user, oldest first, and marks the other party's messages read.
	Conversation(ctx context.Context, userID, otherUserID uuid.UUID) ([]domain.Message, error)
}

type messageService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewMessageService creates a new MessageService.
func NewMessageService(queries *repository.Queries, logger *slog.Logger) MessageService {
	return &messageService{queries: queries, logger: logger}
}

func (s *messageService) Send(ctx context.Context, params domain.SendMessageParams) (*domain.Message, error) {
	const op = "MessageService.Send"

	if params.SenderID == uuid.Nil {
		return nil, domain.Unauthorized(op, "Please sign in to send messages")
	}
	content := strings.TrimSpace(params.Content)
	if content == "" {
		return nil, domain.Invalid(op, "Message cannot be empty")
	}
	if len(content) > domain.MaxMessageLength {
		return nil, domain.Invalid(op, "Message is too long")
	}
	if params.RecipientID == params.SenderID {
		return nil, domain.Invalid(op, "Cannot send a message to yourself")
	}

	// Verify the recipient exists so a typo'd ID fails loudly instead of
	// producing an orphaned thread.
	if _, err := s.queries.GetUserByID(ctx, params.RecipientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", params.RecipientID.String())
		}
		s.logger.Error("failed to verify recipient", "error", err, "op", op)
		return nil, domain.Internal(err, op, "Failed to send message")
	}

	repoMessage, err := s.queries.CreateMessage(ctx, repository.CreateMessageParams{
		SenderID:    params.SenderID,
		RecipientID: params.RecipientID,
		Content:     content,
	})
	if err != nil {
		s.logger.Error("failed to create message", "error", err, "op", op,
			"sender_id", params.SenderID, "recipient_id", params.RecipientID)
		return nil, domain.Internal(err, op, "Failed to send message")
	}

	message := repoMessageToDomain(repoMessage)
	metrics.MessagesSent.Inc()
	return &message, nil
}

func (s *messageService) Conversation(ctx context.Context, userID, otherUserID uuid.UUID) ([]domain.Message, error) {
	const op = "MessageService.Conversation"

	if userID == uuid.Nil {
		return nil, domain.Unauthorized(op, "Please sign in to view messages")
	}

	repoMessages, err := s.queries.ListConversation(ctx, repository.ListConversationParams{
		UserID:      userID,
		OtherUserID: otherUserID,
	})
	if err != nil {
		s.logger.Error("failed to list conversation", "error", err, "op", op,
			"user_id", userID, "other_user_id", otherUserID)
		return nil, domain.Internal(err, op, "Failed to load messages")
	}

	// Reading a thread acknowledges the other party's unread messages.
	err = s.queries.MarkConversationRead(ctx, repository.MarkConversationReadParams{
		RecipientID: userID,
		SenderID:    otherUserID,
	})
	if err != nil {
		s.logger.Error("failed to mark conversation read", "error", err, "op", op, "user_id", userID)
	}

	messages := make([]domain.Message, len(repoMessages))
	for i, rm := range repoMessages {
		messages[i] = repoMessageToDomain(rm)
	}
	return messages, nil
}

func repoMessageToDomain(rm repository.Message) domain.Message {
	return domain.Message{
		ID:          rm.ID,
		SenderID:    rm.SenderID,
		RecipientID: rm.RecipientID,
		Content:     rm.Content,
		Read:        rm.Read,
		CreatedAt:   rm.CreatedAt.Time,
	}
}
