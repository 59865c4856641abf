package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/johnquangdev/meeting-secretary/internal/adapter/repository"
	"github.com/johnquangdev/meeting-secretary/internal/adapter/repository/repotest"
	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
	"github.com/johnquangdev/meeting-secretary/internal/domain/repositories"
	"github.com/johnquangdev/meeting-secretary/internal/infrastructure/external/oauth"
	ucerrors "github.com/johnquangdev/meeting-secretary/internal/usecase/errors"
	"github.com/johnquangdev/meeting-secretary/pkg/jwt"
)

func newTestService(t *testing.T) (*Service, repositories.UserRepository) {
	t.Helper()
	repo := repository.NewUserRepository(repotest.NewDB(t))
	svc := NewService(repo, jwt.NewManager("test-secret", time.Minute), zap.NewNop())
	svc.bcryptCost = bcrypt.MinCost
	return svc, repo
}

func TestService_RegisterLoginValidate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Email: "Ann@Example.com", Password: "s3cret!"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ann@example.com" || user.Provider != entities.ProviderEmail {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.Register(ctx, RegisterInput{Email: "ann@example.com", Password: "x"}); !errors.Is(err, ucerrors.ErrEmailAlreadyUsed) {
		t.Fatalf("expected duplicate email, got %v", err)
	}

	if _, err := svc.Login(ctx, "ann@example.com", "wrong"); !errors.Is(err, ucerrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "s3cret!"); !errors.Is(err, ucerrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}

	tok, err := svc.Login(ctx, "ann@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok.TokenType != "bearer" || tok.AccessToken == "" {
		t.Fatalf("unexpected token: %+v", tok)
	}

	got, err := svc.ValidateSession(ctx, tok.AccessToken)
	if err != nil || got.ID != user.ID {
		t.Fatalf("validate: %v", err)
	}
	if _, err := svc.ValidateSession(ctx, "garbage"); !errors.Is(err, ucerrors.ErrTokenInvalid) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestService_RegisterRejectsBadEmail(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Register(context.Background(), RegisterInput{Email: "nope", Password: "pw"}); !errors.Is(err, ucerrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

type fakeGoogle struct {
	profile *oauth.GoogleUserInfo
}

func (f *fakeGoogle) GetAuthURL(state string) string { return "https://accounts.example/auth?state=" + state }

func (f *fakeGoogle) ExchangeCode(context.Context, string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "google-token"}, nil
}

func (f *fakeGoogle) GetUserInfo(context.Context, *oauth2.Token) (*oauth.GoogleUserInfo, error) {
	return f.profile, nil
}

type fixedStates struct{ valid string }

func (s fixedStates) GenerateState() (string, error) { return s.valid, nil }
func (s fixedStates) ValidateState(state string) bool { return state == s.valid }

func TestService_GoogleCallback(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if _, err := svc.GetGoogleAuthURL(ctx); !errors.Is(err, ucerrors.ErrOAuthDisabled) {
		t.Fatalf("expected disabled, got %v", err)
	}

	svc.WithGoogle(&fakeGoogle{profile: &oauth.GoogleUserInfo{
		ID: "g-1", Email: "g@example.com", VerifiedEmail: true, Name: "Gee",
	}}, fixedStates{valid: "st"})

	resp, err := svc.GetGoogleAuthURL(ctx)
	if err != nil || resp.State != "st" {
		t.Fatalf("auth url: %+v %v", resp, err)
	}

	if _, err := svc.HandleGoogleCallback(ctx, "code", "bad"); !errors.Is(err, ucerrors.ErrInvalidInput) {
		t.Fatalf("expected state mismatch, got %v", err)
	}

	tok, err := svc.HandleGoogleCallback(ctx, "code", "st")
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	user, err := svc.ValidateSession(ctx, tok.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	stored, err := repo.FindByProvider(ctx, entities.ProviderGoogle, "g-1")
	if err != nil || stored.ID != user.ID {
		t.Fatalf("google user not stored: %v", err)
	}

	// second sign-in reuses the account
	tok2, err := svc.HandleGoogleCallback(ctx, "code", "st")
	if err != nil {
		t.Fatalf("second callback: %v", err)
	}
	again, _ := svc.ValidateSession(ctx, tok2.AccessToken)
	if again.ID != user.ID {
		t.Fatal("expected the same user on repeat sign-in")
	}
}
