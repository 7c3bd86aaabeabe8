package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wanderstay/wanderstay/internal/repository"
)

// Job type constants, matching the JobHandler.Type() values.
const (
	JobTypeCompleteBooking = "complete_booking"
	JobTypeCleanupSessions = "cleanup_sessions"
)

// Priority constants for job scheduling.
const (
	PriorityLow    = 0
	PriorityNormal = 10
	PriorityHigh   = 20
)

// CompleteBookingPayload is the payload for booking completion jobs.
type CompleteBookingPayload struct {
	BookingID uuid.UUID `json:"booking_id"`
}

// CleanupSessionsPayload is the payload for session cleanup jobs. It is
// empty; the job sweeps all expired sessions.
type CleanupSessionsPayload struct{}

// EnqueueOption customizes job enqueue parameters.
type EnqueueOption func(*repository.EnqueueJobParams)

// WithPriority sets the job priority.
func WithPriority(priority int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.Priority = priority
	}
}

// WithMaxAttempts sets the maximum number of retry attempts.
func WithMaxAttempts(attempts int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.MaxAttempts = attempts
	}
}

// WithScheduledAt delays the job until the given time.
func WithScheduledAt(at time.Time) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.ScheduledAt = at
	}
}

// EnqueueJob marshals a payload and inserts the job row.
func EnqueueJob(
	ctx context.Context,
	queries *repository.Queries,
	jobType string,
	payload interface{},
	opts ...EnqueueOption,
) (repository.Job, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return repository.Job{}, fmt.Errorf("marshal payload: %w", err)
	}

	params := repository.EnqueueJobParams{
		JobType:     jobType,
		Payload:     payloadJSON,
		Priority:    PriorityNormal,
		MaxAttempts: 3,
		ScheduledAt: time.Now(),
	}
	for _, opt := range opts {
		opt(&params)
	}

	job, err := queries.EnqueueJob(ctx, params)
	if err != nil {
		return repository.Job{}, fmt.Errorf("enqueue job: %w", err)
	}
	return job, nil
}

// EnqueueCleanupSessions schedules an expired-session sweep.
func EnqueueCleanupSessions(ctx context.Context, queries *repository.Queries, opts ...EnqueueOption) (repository.Job, error) {
	return EnqueueJob(ctx, queries, JobTypeCleanupSessions, CleanupSessionsPayload{}, opts...)
}

// Scheduler enqueues booking lifecycle jobs. It satisfies the booking
// service's CompletionScheduler dependency.
type Scheduler struct {
	queries *repository.Queries
}

// NewScheduler creates a Scheduler over the given queries.
func NewScheduler(queries *repository.Queries) *Scheduler {
	return &Scheduler{queries: queries}
}

// ScheduleBookingCompletion enqueues the job that marks a confirmed
// booking completed, delayed until the stay's checkout time.
func (s *Scheduler) ScheduleBookingCompletion(ctx context.Context, bookingID uuid.UUID, at time.Time) error {
	_, err := EnqueueJob(ctx, s.queries, JobTypeCompleteBooking,
		CompleteBookingPayload{BookingID: bookingID},
		WithScheduledAt(at), WithPriority(PriorityLow))
	return err
}
