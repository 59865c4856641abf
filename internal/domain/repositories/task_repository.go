package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
)

// TaskFilters narrows a task listing
type TaskFilters struct {
	MeetingID *uuid.UUID
	Status    *entities.TaskStatus
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// FindByID retrieves a task owned by userID
	FindByID(ctx context.Context, userID, id uuid.UUID) (*entities.Task, error)

	// List returns the user's tasks, newest first
	List(ctx context.Context, userID uuid.UUID, filters TaskFilters) ([]*entities.Task, error)

	// UpdateIfStatus writes the editable fields and status only while the
	// stored status still equals expected; entities.ErrConflict otherwise
	UpdateIfStatus(ctx context.Context, task *entities.Task, expected entities.TaskStatus) error

	// SetExternalRef records a tracker reference only if none is recorded yet;
	// entities.ErrConflict otherwise
	SetExternalRef(ctx context.Context, id uuid.UUID, service entities.ServiceType, ref string) error

	// Delete removes a task regardless of status
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
