package main

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-secretary/internal/adapter/repository"
	"github.com/johnquangdev/meeting-secretary/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-secretary/internal/usecase/auth"
	ucerrors "github.com/johnquangdev/meeting-secretary/internal/usecase/errors"
	"github.com/johnquangdev/meeting-secretary/pkg/config"
	pkgjwt "github.com/johnquangdev/meeting-secretary/pkg/jwt"
)

const testPassword = "password123"

func main() {
	log.Println("🚀 Starting test users creation...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Server.Environment == "production" {
		log.Fatalf("Refusing to seed test users in production")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	authService := auth.NewService(
		repository.NewUserRepository(db),
		pkgjwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry),
		logger,
	)

	testUsers := []struct {
		Email string
		Name  string
	}{
		{Email: "alice@test.local", Name: "Alice"},
		{Email: "bob@test.local", Name: "Bob"},
		{Email: "charlie@test.local", Name: "Charlie"},
	}

	ctx := context.Background()
	log.Println("🔑 Creating test users and tokens...")

	for i, testUser := range testUsers {
		name := testUser.Name
		user, err := authService.Register(ctx, auth.RegisterInput{
			Email:    testUser.Email,
			Password: testPassword,
			FullName: &name,
		})
		switch {
		case err == nil:
			fmt.Printf("🟢 User %d: %s (%s)\n", i+1, testUser.Name, user.ID)
		case stdErrors.Is(err, ucerrors.ErrEmailAlreadyUsed):
			fmt.Printf("🟡 User %d: %s already exists\n", i+1, testUser.Name)
		default:
			log.Printf("❌ Failed to create user %s: %v", testUser.Email, err)
			continue
		}

		token, err := authService.Login(ctx, testUser.Email, testPassword)
		if err != nil {
			log.Printf("❌ Failed to log in %s: %v", testUser.Email, err)
			continue
		}
		fmt.Printf("Email:        %s\n", testUser.Email)
		fmt.Printf("Password:     %s\n", testPassword)
		fmt.Printf("Access Token: %s\n", token.AccessToken)
		fmt.Printf("───────────────────────────────────────────────────────────────\n\n")
	}

	log.Println("✅ Test users ready")
	log.Println("💡 Set header: Authorization: Bearer <access_token>, token expiry:", cfg.JWT.AccessExpiry)
}
