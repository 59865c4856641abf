package integration

import "encoding/json"

// CreateIntegrationRequest stores tracker credentials; config is never returned
type CreateIntegrationRequest struct {
	ServiceType string          `json:"service_type" validate:"required"`
	Config      json.RawMessage `json:"config" validate:"required" swaggertype:"object"`
	IsActive    *bool           `json:"is_active,omitempty"`
}
