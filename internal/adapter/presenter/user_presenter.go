package presenter

import (
	authDTO "github.com/johnquangdev/meeting-secretary/internal/adapter/dto/auth"
	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
	"github.com/johnquangdev/meeting-secretary/internal/usecase/auth"
)

// ToUserResponse converts a User entity to UserResponse DTO
func ToUserResponse(u *entities.User) *authDTO.UserResponse {
	if u == nil {
		return nil
	}
	return &authDTO.UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		FullName:    u.FullName,
		Provider:    string(u.Provider),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// ToTokenResponse converts the usecase token to its DTO
func ToTokenResponse(t *auth.TokenResponse) *authDTO.TokenResponse {
	if t == nil {
		return nil
	}
	return &authDTO.TokenResponse{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		ExpiresIn:   t.ExpiresIn,
	}
}
