package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
	"github.com/johnquangdev/meeting-secretary/internal/domain/repositories"
	ucerrors "github.com/johnquangdev/meeting-secretary/internal/usecase/errors"
)

// Service manages tracker credentials per user
type Service struct {
	integrations repositories.IntegrationRepository
	logger       *zap.Logger
}

// NewService creates the integration service
func NewService(integrations repositories.IntegrationRepository, logger *zap.Logger) *Service {
	return &Service{integrations: integrations, logger: logger}
}

// CreateInput describes a tracker connection; IsActive defaults to true
type CreateInput struct {
	ServiceType string
	Config      json.RawMessage
	IsActive    *bool
}

// Create stores an integration, replacing the user's existing one for the same service
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*entities.Integration, error) {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	service := entities.ServiceType(strings.ToLower(strings.TrimSpace(in.ServiceType)))
	integration, err := entities.NewIntegration(ownerID, service, in.Config, active)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ucerrors.ErrValidation, err)
	}

	saved, err := s.integrations.Upsert(ctx, integration)
	if err != nil {
		return nil, err
	}

	s.logger.Info("integration saved",
		zap.String("integration_id", saved.ID.String()),
		zap.String("service", string(saved.ServiceType)),
		zap.Bool("is_active", saved.IsActive),
	)
	return saved, nil
}

// List returns the owner's integrations
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*entities.Integration, error) {
	return s.integrations.ListByUser(ctx, ownerID)
}

// Get returns one integration
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*entities.Integration, error) {
	integration, err := s.integrations.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, mapIntegrationErr(err)
	}
	return integration, nil
}

// Toggle flips the active flag
func (s *Service) Toggle(ctx context.Context, ownerID, id uuid.UUID) (*entities.Integration, error) {
	integration, err := s.integrations.Toggle(ctx, ownerID, id)
	if err != nil {
		return nil, mapIntegrationErr(err)
	}
	s.logger.Info("integration toggled",
		zap.String("integration_id", id.String()),
		zap.Bool("is_active", integration.IsActive),
	)
	return integration, nil
}

// Delete removes an integration
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.integrations.Delete(ctx, ownerID, id); err != nil {
		return mapIntegrationErr(err)
	}
	return nil
}

func mapIntegrationErr(err error) error {
	if errors.Is(err, entities.ErrIntegrationNotFound) {
		return ucerrors.ErrNotFound
	}
	return err
}
