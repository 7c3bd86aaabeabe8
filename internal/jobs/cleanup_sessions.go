package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wanderstay/wanderstay/internal/repository"
	"github.com/wanderstay/wanderstay/internal/worker"
)

// CleanupSessionsHandler deletes expired session rows. It is enqueued
// periodically by the server so stale sessions don't accumulate.
type CleanupSessionsHandler struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewCleanupSessionsHandler creates the handler.
func NewCleanupSessionsHandler(queries *repository.Queries, logger *slog.Logger) *CleanupSessionsHandler {
	return &CleanupSessionsHandler{queries: queries, logger: logger}
}

// Type returns the job type identifier.
func (h *CleanupSessionsHandler) Type() string {
	return worker.JobTypeCleanupSessions
}

// Handle deletes all sessions past their expiry.
func (h *CleanupSessionsHandler) Handle(ctx context.Context, payload []byte) error {
	count, err := h.queries.DeleteExpiredSessions(ctx)
	if err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	if count > 0 {
		h.logger.Info("expired sessions deleted", "count", count)
	}
	return nil
}
