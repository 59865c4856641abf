package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
	"github.com/johnquangdev/meeting-secretary/internal/domain/repositories"
	ucerrors "github.com/johnquangdev/meeting-secretary/internal/usecase/errors"
)

// Service owns the task confirmation lifecycle
type Service struct {
	tasks  repositories.TaskRepository
	logger *zap.Logger
}

// NewService creates the task service
func NewService(tasks repositories.TaskRepository, logger *zap.Logger) *Service {
	return &Service{tasks: tasks, logger: logger}
}

// Filter narrows List
type Filter struct {
	MeetingID *uuid.UUID
	Status    *entities.TaskStatus
}

// Patch holds the fields a caller supplied; nil means leave unchanged.
// An empty OwnerName clears it, as does ClearDeadline for the deadline.
type Patch struct {
	Description   *string
	OwnerName     *string
	Deadline      *time.Time
	ClearDeadline bool
	Priority      *string
	Status        *string
}

// List returns the owner's tasks, newest first
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, f Filter) ([]*entities.Task, error) {
	if f.Status != nil && !f.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ucerrors.ErrValidation, *f.Status)
	}
	return s.tasks.List(ctx, ownerID, repositories.TaskFilters{
		MeetingID: f.MeetingID,
		Status:    f.Status,
	})
}

// Get returns one task
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*entities.Task, error) {
	task, err := s.tasks.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, mapTaskErr(err)
	}
	return task, nil
}

// Update merges the supplied fields at any status. A supplied status must be
// reachable through the transition table.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, p Patch) (*entities.Task, error) {
	task, err := s.tasks.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, mapTaskErr(err)
	}
	if !task.Status.Allows(entities.TaskActionEdit) {
		return nil, fmt.Errorf("%w: %s task cannot be edited", ucerrors.ErrInvalidTransition, task.Status)
	}
	expected := task.Status

	if p.Description != nil {
		task.Description = strings.TrimSpace(*p.Description)
	}
	if p.OwnerName != nil {
		if name := strings.TrimSpace(*p.OwnerName); name != "" {
			task.OwnerName = &name
		} else {
			task.OwnerName = nil
		}
	}
	if p.ClearDeadline {
		task.Deadline = nil
	} else if p.Deadline != nil {
		d := p.Deadline.UTC()
		task.Deadline = &d
	}
	if p.Priority != nil {
		task.Priority = entities.TaskPriority(*p.Priority)
	}
	if p.Status != nil && entities.TaskStatus(*p.Status) != task.Status {
		next := entities.TaskStatus(*p.Status)
		if !next.IsValid() {
			return nil, fmt.Errorf("%w: %v", ucerrors.ErrValidation, entities.ErrInvalidTaskStatus)
		}
		if !task.Status.CanTransitionTo(next) {
			return nil, fmt.Errorf("%w: %s -> %s", ucerrors.ErrInvalidTransition, task.Status, next)
		}
		task.Status = next
	}

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ucerrors.ErrValidation, err)
	}

	if err := s.save(ctx, ownerID, task, expected); err != nil {
		return nil, err
	}
	return task, nil
}

// Confirm moves a pending task to confirmed
func (s *Service) Confirm(ctx context.Context, ownerID, id uuid.UUID) (*entities.Task, error) {
	task, err := s.tasks.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, mapTaskErr(err)
	}
	if !task.Status.Allows(entities.TaskActionConfirm) {
		return nil, fmt.Errorf("%w: cannot confirm %s task", ucerrors.ErrInvalidTransition, task.Status)
	}

	expected := task.Status
	task.Status = entities.TaskStatusConfirmed
	if err := s.save(ctx, ownerID, task, expected); err != nil {
		return nil, err
	}

	s.logger.Info("task confirmed", zap.String("task_id", id.String()))
	return task, nil
}

// Delete removes a task regardless of status
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.tasks.Delete(ctx, ownerID, id); err != nil {
		return mapTaskErr(err)
	}
	return nil
}

// save writes task if its status is still expected; a lost race is re-read
// to tell a deleted task from a concurrent status change.
func (s *Service) save(ctx context.Context, ownerID uuid.UUID, task *entities.Task, expected entities.TaskStatus) error {
	err := s.tasks.UpdateIfStatus(ctx, task, expected)
	if !errors.Is(err, entities.ErrConflict) {
		return err
	}
	if _, findErr := s.tasks.FindByID(ctx, ownerID, task.ID); errors.Is(findErr, entities.ErrTaskNotFound) {
		return ucerrors.ErrNotFound
	}
	return fmt.Errorf("%w: task left %s concurrently", ucerrors.ErrInvalidTransition, expected)
}

func mapTaskErr(err error) error {
	if errors.Is(err, entities.ErrTaskNotFound) {
		return ucerrors.ErrNotFound
	}
	return err
}
