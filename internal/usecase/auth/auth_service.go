package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
	"github.com/johnquangdev/meeting-secretary/internal/domain/repositories"
	ucerrors "github.com/johnquangdev/meeting-secretary/internal/usecase/errors"
	"github.com/johnquangdev/meeting-secretary/pkg/jwt"
)

// Service issues and validates bearer tokens for password and Google users
type Service struct {
	userRepo   repositories.UserRepository
	jwtManager *jwt.Manager
	logger     *zap.Logger
	bcryptCost int

	google GoogleProvider
	states StateValidator
}

// NewService creates the auth service
func NewService(userRepo repositories.UserRepository, jwtManager *jwt.Manager, logger *zap.Logger) *Service {
	return &Service{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// RegisterInput is the data needed to create a password account
type RegisterInput struct {
	Email    string
	Password string
	FullName *string
}

// TokenResponse is the OAuth2-style token payload returned on login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Register creates a password user
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entities.User, error) {
	if in.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ucerrors.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := entities.NewUser(in.Email, in.FullName, string(hash))
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ucerrors.ErrInvalidInput, err)
	}

	if _, err := s.userRepo.FindByEmail(ctx, user.Email); err == nil {
		return nil, ucerrors.ErrEmailAlreadyUsed
	} else if !errors.Is(err, entities.ErrUserNotFound) {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, entities.ErrUserAlreadyExists) {
			return nil, ucerrors.ErrEmailAlreadyUsed
		}
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Login checks a password and issues an access token
func (s *Service) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return nil, ucerrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == nil {
		return nil, ucerrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, ucerrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ucerrors.ErrUserNotActive
	}

	return s.issue(ctx, user)
}

// ValidateSession resolves a bearer token to an active user
func (s *Service) ValidateSession(ctx context.Context, token string) (*entities.User, error) {
	claims, err := s.jwtManager.Parse(token)
	if err != nil {
		return nil, ucerrors.ErrTokenInvalid
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return nil, ucerrors.ErrTokenInvalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ucerrors.ErrUserNotActive
	}
	return user, nil
}

// issue records the login and signs a token for user
func (s *Service) issue(ctx context.Context, user *entities.User) (*TokenResponse, error) {
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	token, err := s.jwtManager.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken: token.Value,
		TokenType:   "bearer",
		ExpiresIn:   int64(token.ExpiresIn.Seconds()),
	}, nil
}
