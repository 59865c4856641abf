package entities

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Integration is a stored credential bundle for one external tracker.
// Config is write-only: it never leaves the service once stored.
type Integration struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID      `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_integrations_user_service"`
	ServiceType ServiceType    `json:"service_type" gorm:"type:varchar(20);not null;uniqueIndex:idx_integrations_user_service"`
	Config      datatypes.JSON `json:"-" gorm:"type:jsonb;not null"`
	IsActive    bool           `json:"is_active" gorm:"not null"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// JiraConfig is the credential shape for a Jira Cloud site
type JiraConfig struct {
	BaseURL    string `json:"base_url"`
	Email      string `json:"email"`
	APIToken   string `json:"api_token"`
	ProjectKey string `json:"project_key,omitempty"`
}

// TrelloConfig is the credential shape for a Trello account
type TrelloConfig struct {
	APIKey        string `json:"api_key"`
	APIToken      string `json:"api_token"`
	BoardID       string `json:"board_id,omitempty"`
	DefaultListID string `json:"default_list_id,omitempty"`
}

// Validate checks the required Jira fields
func (c JiraConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(c.BaseURL) == "" {
		missing = append(missing, "base_url")
	}
	if strings.TrimSpace(c.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(c.APIToken) == "" {
		missing = append(missing, "api_token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidIntegrationConfig, strings.Join(missing, ", "))
	}
	return nil
}

// Validate checks the required Trello fields
func (c TrelloConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, "api_key")
	}
	if strings.TrimSpace(c.APIToken) == "" {
		missing = append(missing, "api_token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidIntegrationConfig, strings.Join(missing, ", "))
	}
	return nil
}

// NewIntegration validates raw config for service and builds an integration.
func NewIntegration(userID uuid.UUID, service ServiceType, raw json.RawMessage, active bool) (*Integration, error) {
	if !service.IsValid() {
		return nil, ErrInvalidServiceType
	}
	if err := ValidateIntegrationConfig(service, raw); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Integration{
		ID:          uuid.New(),
		UserID:      userID,
		ServiceType: service,
		Config:      datatypes.JSON(raw),
		IsActive:    active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ValidateIntegrationConfig decodes raw into the service's config shape and validates it.
func ValidateIntegrationConfig(service ServiceType, raw json.RawMessage) error {
	switch service {
	case ServiceJira:
		_, err := decodeConfig[JiraConfig](raw)
		return err
	case ServiceTrello:
		_, err := decodeConfig[TrelloConfig](raw)
		return err
	}
	return ErrInvalidServiceType
}

// JiraConfig decodes the stored config of a Jira integration.
func (i *Integration) JiraConfig() (JiraConfig, error) {
	if i.ServiceType != ServiceJira {
		return JiraConfig{}, ErrInvalidServiceType
	}
	return decodeConfig[JiraConfig](json.RawMessage(i.Config))
}

// TrelloConfig decodes the stored config of a Trello integration.
func (i *Integration) TrelloConfig() (TrelloConfig, error) {
	if i.ServiceType != ServiceTrello {
		return TrelloConfig{}, ErrInvalidServiceType
	}
	return decodeConfig[TrelloConfig](json.RawMessage(i.Config))
}

type validatable interface {
	Validate() error
}

func decodeConfig[T validatable](raw json.RawMessage) (T, error) {
	var cfg T
	if len(raw) == 0 {
		return cfg, fmt.Errorf("%w: empty config", ErrInvalidIntegrationConfig)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidIntegrationConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
