package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
)

// MeetingCompletion is what the worker attaches when a meeting completes.
type MeetingCompletion struct {
	Transcript string
	IsRedacted bool
	Tasks      []*entities.Task
}

// MeetingRepository defines the interface for meeting data access.
// Status writes are conditional on the current status and return
// entities.ErrConflict when the row is absent or in another state.
type MeetingRepository interface {
	// Create creates a new meeting
	Create(ctx context.Context, meeting *entities.Meeting) error

	// FindByID retrieves a meeting without owner scoping (worker side)
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	// FindForOwner retrieves a meeting with its tasks in extraction order
	FindForOwner(ctx context.Context, ownerID, id uuid.UUID) (*entities.Meeting, error)

	// ListByOwner returns the owner's meetings, newest first
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Meeting, error)

	// ListByStatus returns up to limit meetings in status, oldest first
	ListByStatus(ctx context.Context, status entities.MeetingStatus, limit int) ([]*entities.Meeting, error)

	// MarkProcessing moves pending -> processing
	MarkProcessing(ctx context.Context, id uuid.UUID) error

	// MarkCompleted moves processing -> completed and attaches transcript and tasks atomically
	MarkCompleted(ctx context.Context, id uuid.UUID, result MeetingCompletion) error

	// MarkFailed moves processing -> failed
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error

	// Delete removes the meeting and its tasks in one transaction
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
