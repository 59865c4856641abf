package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
)

// UserRepository stores accounts. Lookups return entities.ErrUserNotFound
// when nothing matches; emails compare case-insensitively.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindByProvider(ctx context.Context, provider entities.AuthProvider, providerID string) (*entities.User, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
}
