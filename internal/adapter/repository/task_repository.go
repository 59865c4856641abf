package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
	"github.com/johnquangdev/meeting-secretary/internal/domain/repositories"
)

// taskRepository implements the TaskRepository interface
type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) repositories.TaskRepository {
	return &taskRepository{db: db}
}

// FindByID retrieves a task by its ID
func (r *taskRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*entities.Task, error) {
	var task entities.Task
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// List retrieves tasks with filters
func (r *taskRepository) List(ctx context.Context, userID uuid.UUID, filters repositories.TaskFilters) ([]*entities.Task, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if filters.MeetingID != nil {
		query = query.Where("meeting_id = ?", *filters.MeetingID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var tasks []*entities.Task
	if err := query.Order("created_at DESC").Order("position ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateIfStatus writes editable fields while the stored status matches expected
func (r *taskRepository) UpdateIfStatus(ctx context.Context, task *entities.Task, expected entities.TaskStatus) error {
	task.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Where("id = ? AND status = ?", task.ID, expected).
		Updates(map[string]interface{}{
			"description": task.Description,
			"owner_name":  task.OwnerName,
			"deadline":    task.Deadline,
			"priority":    task.Priority,
			"status":      task.Status,
			"updated_at":  task.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrConflict
	}
	return nil
}

// SetExternalRef records a tracker reference if the slot is still empty
func (r *taskRepository) SetExternalRef(ctx context.Context, id uuid.UUID, service entities.ServiceType, ref string) error {
	column := entities.ExternalRefColumn(service)
	result := r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Where("id = ? AND "+column+" IS NULL", id).
		Updates(map[string]interface{}{
			column:       ref,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record external reference: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrConflict
	}
	return nil
}

// Delete removes a task
func (r *taskRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&entities.Task{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrTaskNotFound
	}
	return nil
}
