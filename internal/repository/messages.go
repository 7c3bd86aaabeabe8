package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// Message is the database row for the messages table.
type Message struct {
	ID          uuid.UUID
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Content     string
	Read        bool
	CreatedAt   sql.NullTime
}

const createMessage = `
INSERT INTO messages (sender_id, recipient_id, content)
VALUES ($1, $2, $3)
RETURNING id, sender_id, recipient_id, content, read, created_at
`

// CreateMessageParams contains parameters for CreateMessage.
type CreateMessageParams struct {
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Content     string
}

func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (Message, error) {
	row := q.db.QueryRowContext(ctx, createMessage, arg.SenderID, arg.RecipientID, arg.Content)
	var m Message
	err := row.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.Read, &m.CreatedAt)
	return m, err
}

const listConversation = `
SELECT id, sender_id, recipient_id, content, read, created_at
FROM messages
WHERE (sender_id = $1 AND recipient_id = $2)
   OR (sender_id = $2 AND recipient_id = $1)
ORDER BY created_at, id
`

// ListConversationParams contains parameters for ListConversation.
type ListConversationParams struct {
	UserID      uuid.UUID
	OtherUserID uuid.UUID
}

// ListConversation returns the full message history between two users in
// chronological order.
func (q *Queries) ListConversation(ctx context.Context, arg ListConversationParams) ([]Message, error) {
	rows, err := q.db.QueryContext(ctx, listConversation, arg.UserID, arg.OtherUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const markConversationRead = `
UPDATE messages
SET read = true
WHERE recipient_id = $1 AND sender_id = $2 AND NOT read
`

// MarkConversationReadParams contains parameters for MarkConversationRead.
type MarkConversationReadParams struct {
	RecipientID uuid.UUID
	SenderID    uuid.UUID
}

func (q *Queries) MarkConversationRead(ctx context.Context, arg MarkConversationReadParams) error {
	_, err := q.db.ExecContext(ctx, markConversationRead, arg.RecipientID, arg.SenderID)
	return err
}
