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

// MessageHandler serves guest-host messaging endpoints.
type MessageHandler struct {
	messageService service.MessageService
	logger         *slog.Logger
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messageService service.MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		logger:         logger,
	}
}

// RegisterRoutes registers the messaging routes. All require a session.
func (h *MessageHandler) RegisterRoutes(mux *http.ServeMux, withUser, requireUser func(http.Handler) http.Handler) {
	mux.Handle("POST /messages", withUser(requireUser(http.HandlerFunc(h.Send))))
	mux.Handle("GET /messages/{userID}", withUser(requireUser(http.HandlerFunc(h.Conversation))))
}

type sendMessageRequest struct {
	RecipientID string `json:"recipient_id"`
	Content     string `json:"content"`
}

type messageResponse struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Content     string    `json:"content"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
	SenderName  string    `json:"sender_name,omitempty"`
}

func toMessageResponse(m *domain.Message) messageResponse {
	resp := messageResponse{
		ID:          m.ID.String(),
		SenderID:    m.SenderID.String(),
		RecipientID: m.RecipientID.String(),
		Content:     m.Content,
		Read:        m.Read,
		CreatedAt:   m.CreatedAt,
	}
	if m.Sender != nil {
		resp.SenderName = m.Sender.FullName()
	}
	return resp
}

// Send handles POST /messages.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	const op = "MessageHandler.Send"

	user := auth.GetUserFromRequest(r)

	var req sendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Invalid recipient id"))
		return
	}

	msg, err := h.messageService.Send(r.Context(), domain.SendMessageParams{
		SenderID:    user.ID,
		RecipientID: recipientID,
		Content:     req.Content,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, toMessageResponse(msg))
}

// Conversation handles GET /messages/{userID}, returning the thread between
// the caller and the other user oldest first. Fetching marks the other
// user's messages to the caller as read.
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)

	otherUserID, err := uuid.Parse(r.PathValue("userID"))
	if err != nil {
		NotFoundResponse(w, r, h.logger)
		return
	}

	messages, err := h.messageService.Conversation(r.Context(), user.ID, otherUserID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]messageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, toMessageResponse(&messages[i]))
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{"messages": out})
}
