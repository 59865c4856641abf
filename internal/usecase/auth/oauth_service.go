package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
	"github.com/johnquangdev/meeting-secretary/internal/infrastructure/external/oauth"
	ucerrors "github.com/johnquangdev/meeting-secretary/internal/usecase/errors"
)

// GoogleProvider is the subset of the Google OAuth client the service uses
type GoogleProvider interface {
	GetAuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	GetUserInfo(ctx context.Context, token *oauth2.Token) (*oauth.GoogleUserInfo, error)
}

// StateValidator issues and consumes OAuth state tokens
type StateValidator interface {
	GenerateState() (string, error)
	ValidateState(state string) bool
}

// GoogleAuthURLResponse represents the response for auth URL request
type GoogleAuthURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// WithGoogle enables Google sign-in
func (s *Service) WithGoogle(provider GoogleProvider, states StateValidator) *Service {
	s.google = provider
	s.states = states
	return s
}

// GetGoogleAuthURL generates Google OAuth URL
func (s *Service) GetGoogleAuthURL(ctx context.Context) (*GoogleAuthURLResponse, error) {
	if s.google == nil {
		return nil, ucerrors.ErrOAuthDisabled
	}

	state, err := s.states.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	return &GoogleAuthURLResponse{
		URL:   s.google.GetAuthURL(state),
		State: state,
	}, nil
}

// HandleGoogleCallback exchanges the code, finds or creates the user and issues a token
func (s *Service) HandleGoogleCallback(ctx context.Context, code, state string) (*TokenResponse, error) {
	if s.google == nil {
		return nil, ucerrors.ErrOAuthDisabled
	}
	if !s.states.ValidateState(state) {
		return nil, fmt.Errorf("%w: %v", ucerrors.ErrInvalidInput, entities.ErrOAuthStateMismatch)
	}

	token, err := s.google.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ucerrors.ErrInvalidCredentials, err)
	}

	profile, err := s.google.GetUserInfo(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ucerrors.ErrInvalidCredentials, err)
	}

	user, err := s.findOrCreateGoogleUser(ctx, profile)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ucerrors.ErrUserNotActive
	}

	return s.issue(ctx, user)
}

func (s *Service) findOrCreateGoogleUser(ctx context.Context, profile *oauth.GoogleUserInfo) (*entities.User, error) {
	user, err := s.userRepo.FindByProvider(ctx, entities.ProviderGoogle, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, entities.ErrUserNotFound) {
		return nil, err
	}

	// Same verified email signs into the existing account
	existing, err := s.userRepo.FindByEmail(ctx, profile.Email)
	if err == nil {
		if !profile.VerifiedEmail {
			return nil, ucerrors.ErrEmailAlreadyUsed
		}
		return existing, nil
	}
	if !errors.Is(err, entities.ErrUserNotFound) {
		return nil, err
	}

	user = entities.NewOAuthUser(profile.Email, profile.Name, entities.ProviderGoogle, profile.ID)
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered via google", zap.String("user_id", user.ID.String()))
	return user, nil
}
