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

// meetingRepository implements the MeetingRepository interface
type meetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) repositories.MeetingRepository {
	return &meetingRepository{db: db}
}

// Create creates a new meeting
func (r *meetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if err := r.db.WithContext(ctx).Omit("Tasks").Create(meeting).Error; err != nil {
		return fmt.Errorf("failed to create meeting: %w", err)
	}
	return nil
}

// FindByID retrieves a meeting by its ID
func (r *meetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to find meeting: %w", err)
	}
	return &meeting, nil
}

// FindForOwner retrieves a meeting with its tasks
func (r *meetingRepository) FindForOwner(ctx context.Context, ownerID, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	err := r.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&meeting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to find meeting: %w", err)
	}
	return &meeting, nil
}

// ListByOwner lists meetings of an owner, newest first
func (r *meetingRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&meetings).Error; err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	return meetings, nil
}

// ListByStatus lists meetings in a status, oldest first
func (r *meetingRepository) ListByStatus(ctx context.Context, status entities.MeetingStatus, limit int) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Find(&meetings).Error; err != nil {
		return nil, fmt.Errorf("failed to list meetings by status: %w", err)
	}
	return meetings, nil
}

// MarkProcessing moves pending -> processing
func (r *meetingRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return transitionMeeting(r.db.WithContext(ctx), id, entities.MeetingStatusPending, entities.MeetingStatusProcessing, nil)
}

// MarkCompleted moves processing -> completed with transcript and tasks in one transaction
func (r *meetingRepository) MarkCompleted(ctx context.Context, id uuid.UUID, result repositories.MeetingCompletion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := transitionMeeting(tx, id, entities.MeetingStatusProcessing, entities.MeetingStatusCompleted, map[string]interface{}{
			"transcript":   result.Transcript,
			"is_redacted":  result.IsRedacted,
			"processed_at": time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		if len(result.Tasks) == 0 {
			return nil
		}
		if err := tx.Create(&result.Tasks).Error; err != nil {
			return fmt.Errorf("failed to attach tasks: %w", err)
		}
		return nil
	})
}

// MarkFailed moves processing -> failed
func (r *meetingRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	extra := map[string]interface{}{
		"processed_at": time.Now().UTC(),
	}
	if reason != "" {
		extra["failure_reason"] = reason
	}
	return transitionMeeting(r.db.WithContext(ctx), id, entities.MeetingStatusProcessing, entities.MeetingStatusFailed, extra)
}

// Delete removes a meeting and cascades its tasks
func (r *meetingRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ? AND user_id = ?", id, ownerID).Delete(&entities.Task{}).Error; err != nil {
			return fmt.Errorf("failed to delete meeting tasks: %w", err)
		}
		result := tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&entities.Meeting{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete meeting: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return entities.ErrMeetingNotFound
		}
		return nil
	})
}

// transitionMeeting applies a status change only if the row is still in from.
func transitionMeeting(db *gorm.DB, id uuid.UUID, from, to entities.MeetingStatus, extra map[string]interface{}) error {
	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}

	result := db.Model(&entities.Meeting{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update meeting status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrConflict
	}
	return nil
}
