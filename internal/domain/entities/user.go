package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system
type User struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email    string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName *string   `json:"full_name,omitempty" gorm:"type:varchar(255)"`
	IsActive bool      `json:"is_active" gorm:"not null"`

	// Credentials
	PasswordHash *string      `json:"-" gorm:"column:password_hash;type:text"` // Never expose in JSON
	Provider     AuthProvider `json:"provider" gorm:"type:varchar(20);not null"`
	ProviderID   *string      `json:"-" gorm:"column:provider_id;type:varchar(255);index"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// AuthProvider is how a user signs in
type AuthProvider string

const (
	ProviderEmail  AuthProvider = "email"
	ProviderGoogle AuthProvider = "google"
)

// NewUser creates a password user; hash must already be computed.
func NewUser(email string, fullName *string, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		FullName:     fullName,
		IsActive:     true,
		PasswordHash: &passwordHash,
		Provider:     ProviderEmail,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewOAuthUser creates a new user from OAuth provider
func NewOAuthUser(email, name string, provider AuthProvider, providerID string) *User {
	now := time.Now().UTC()
	u := &User{
		ID:         uuid.New(),
		Email:      strings.ToLower(strings.TrimSpace(email)),
		IsActive:   true,
		Provider:   provider,
		ProviderID: &providerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if name != "" {
		u.FullName = &name
	}
	return u
}

// UpdateLastLogin updates the last login timestamp
func (u *User) UpdateLastLogin() {
	now := time.Now().UTC()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// Validate validates user data
func (u *User) Validate() error {
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// PublicUser returns a user with sensitive fields removed
type PublicUser struct {
	ID        uuid.UUID    `json:"id"`
	Email     string       `json:"email"`
	FullName  *string      `json:"full_name,omitempty"`
	Provider  AuthProvider `json:"provider"`
	IsActive  bool         `json:"is_active"`
	CreatedAt time.Time    `json:"created_at"`
}

// ToPublic converts User to PublicUser
func (u *User) ToPublic() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Provider:  u.Provider,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
