package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
)

// IntegrationRepository defines the interface for integration data access
type IntegrationRepository interface {
	// Upsert stores the integration, replacing config and active flag of an
	// existing one for the same (user, service_type)
	Upsert(ctx context.Context, integration *entities.Integration) (*entities.Integration, error)

	// FindByID retrieves an integration owned by userID
	FindByID(ctx context.Context, userID, id uuid.UUID) (*entities.Integration, error)

	// FindByService retrieves the user's integration for service
	FindByService(ctx context.Context, userID uuid.UUID, service entities.ServiceType) (*entities.Integration, error)

	// ListByUser returns all integrations of a user
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Integration, error)

	// Toggle flips is_active and returns the updated integration
	Toggle(ctx context.Context, userID, id uuid.UUID) (*entities.Integration, error)

	// Delete removes an integration
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
