package integration

import "time"

// IntegrationResponse never includes the stored config
type IntegrationResponse struct {
	ID          string    `json:"id"`
	ServiceType string    `json:"service_type"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
