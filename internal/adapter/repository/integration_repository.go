package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
	"github.com/johnquangdev/meeting-secretary/internal/domain/repositories"
)

// integrationRepository implements the IntegrationRepository interface
type integrationRepository struct {
	db *gorm.DB
}

// NewIntegrationRepository creates a new integration repository
func NewIntegrationRepository(db *gorm.DB) repositories.IntegrationRepository {
	return &integrationRepository{db: db}
}

// Upsert inserts the integration or replaces config and is_active of the
// existing (user_id, service_type) row
func (r *integrationRepository) Upsert(ctx context.Context, integration *entities.Integration) (*entities.Integration, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "service_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"config", "is_active", "updated_at"}),
		}).
		Create(integration).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save integration: %w", err)
	}
	return r.FindByService(ctx, integration.UserID, integration.ServiceType)
}

// FindByID retrieves an integration by its ID
func (r *integrationRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*entities.Integration, error) {
	var integration entities.Integration
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&integration).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrIntegrationNotFound
		}
		return nil, fmt.Errorf("failed to find integration: %w", err)
	}
	return &integration, nil
}

// FindByService retrieves the user's integration for a tracker
func (r *integrationRepository) FindByService(ctx context.Context, userID uuid.UUID, service entities.ServiceType) (*entities.Integration, error) {
	var integration entities.Integration
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND service_type = ?", userID, service).
		First(&integration).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrIntegrationNotFound
		}
		return nil, fmt.Errorf("failed to find integration: %w", err)
	}
	return &integration, nil
}

// ListByUser lists all integrations of a user
func (r *integrationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Integration, error) {
	var integrations []*entities.Integration
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&integrations).Error; err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	return integrations, nil
}

// Toggle flips is_active
func (r *integrationRepository) Toggle(ctx context.Context, userID, id uuid.UUID) (*entities.Integration, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Integration{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_active", gorm.Expr("NOT is_active"))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to toggle integration: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, entities.ErrIntegrationNotFound
	}
	return r.FindByID(ctx, userID, id)
}

// Delete removes an integration
func (r *integrationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&entities.Integration{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete integration: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrIntegrationNotFound
	}
	return nil
}
