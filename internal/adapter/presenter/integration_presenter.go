package presenter

import (
	integrationDTO "github.com/johnquangdev/meeting-secretary/internal/adapter/dto/integration"
	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
)

// ToIntegrationResponse drops the stored config
func ToIntegrationResponse(i *entities.Integration) *integrationDTO.IntegrationResponse {
	if i == nil {
		return nil
	}
	return &integrationDTO.IntegrationResponse{
		ID:          i.ID.String(),
		ServiceType: string(i.ServiceType),
		IsActive:    i.IsActive,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// ToIntegrationListResponse converts a slice of integrations
func ToIntegrationListResponse(items []*entities.Integration) []*integrationDTO.IntegrationResponse {
	out := make([]*integrationDTO.IntegrationResponse, 0, len(items))
	for _, i := range items {
		out = append(out, ToIntegrationResponse(i))
	}
	return out
}
