package main

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	_ "github.com/johnquangdev/meeting-secretary/docs"
	"github.com/johnquangdev/meeting-secretary/internal/adapter/handler"
	"github.com/johnquangdev/meeting-secretary/internal/adapter/repository"
	"github.com/johnquangdev/meeting-secretary/internal/domain/repositories"
	"github.com/johnquangdev/meeting-secretary/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-secretary/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-secretary/internal/infrastructure/external/oauth"
	"github.com/johnquangdev/meeting-secretary/internal/infrastructure/external/tracker"
	httpmw "github.com/johnquangdev/meeting-secretary/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-secretary/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-secretary/internal/usecase/auth"
	"github.com/johnquangdev/meeting-secretary/internal/usecase/integration"
	"github.com/johnquangdev/meeting-secretary/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-secretary/internal/usecase/processing"
	"github.com/johnquangdev/meeting-secretary/internal/usecase/task"
	"github.com/johnquangdev/meeting-secretary/internal/usecase/tasksync"
	pkgai "github.com/johnquangdev/meeting-secretary/pkg/ai"
	"github.com/johnquangdev/meeting-secretary/pkg/config"
	"github.com/johnquangdev/meeting-secretary/pkg/jwt"
	pkgvalidator "github.com/johnquangdev/meeting-secretary/pkg/validator"
)

// @title           Meeting Secretary API
// @version         1.0
// @description     Upload meeting recordings, review the extracted action items and push them to Jira or Trello.

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// lockStore backs both the OAuth state tokens and the sync claim lock
type lockStore interface {
	oauth.Store
	tasksync.Locker
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dB", cfg.Processing.MaxUploadSize+1<<20)))

	log.Println("🔧 Initializing dependencies...")

	// Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Running GORM AutoMigrate (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run AutoMigrate: %v", err)
		}
	} else {
		log.Println("🔄 Applying sql-migrate migrations...")
		if _, err := database.Migrate(db, migrate.Up, logger); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	}

	// Redis, or the in-process store for a single replica
	var store lockStore
	if cfg.Redis.Disabled {
		log.Println("⚠️  Redis disabled, using in-process locks and OAuth state")
		store = cache.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(ctx, cache.RedisOptions{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		store = cache.NewRedisStore(redisClient)
	}

	// Object storage
	log.Println("🗄️  Connecting to object storage...")
	audioStore, err := storage.NewMinIOClient(ctx, &cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Repositories
	log.Println("⚙️  Initializing repositories...")
	userRepo := repository.NewUserRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	integrationRepo := repository.NewIntegrationRepository(db)

	// Auth
	log.Println("🔑 Initializing auth service...")
	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)
	authService := auth.NewService(userRepo, jwtManager, logger)
	if cfg.OAuth.Google.Enabled() {
		log.Println("🔐 Google sign-in enabled")
		authService.WithGoogle(
			oauth.NewGoogleProvider(cfg.OAuth.Google.ClientID, cfg.OAuth.Google.ClientSecret, cfg.OAuth.Google.RedirectURL),
			oauth.NewStateManager(store),
		)
	}

	// Domain services
	meetingService := meeting.NewService(meetingRepo, audioStore, cfg.Processing, logger)
	taskService := task.NewService(taskRepo, logger)
	integrationService := integration.NewService(integrationRepo, logger)
	coordinator := tasksync.NewCoordinator(
		taskRepo,
		integrationRepo,
		tracker.NewFactory(nil, cfg.Sync.RatePerSec),
		store,
		tasksync.Options{
			Timeout: cfg.Sync.Timeout,
			LockTTL: cfg.Sync.LockTTL,
			Policy:  tasksync.StatusPolicy{PendingOnly: cfg.Sync.PendingOnly},
		},
		logger,
	)

	// Processing
	var worker *processing.Worker
	if cfg.Processing.Embedded {
		log.Println("🤖 Initializing processing worker...")
		worker = newWorker(cfg, meetingRepo, meetingService, audioStore, logger)
		meetingService.SetDispatcher(worker)
		if err := worker.Start(ctx); err != nil {
			log.Fatalf("Failed to start processing worker: %v", err)
		}
	} else {
		log.Println("🤖 Processing delegated to external workers")
	}
	if cfg.Worker.CallbackSecret == "" {
		log.Println("⚠️  WORKER_CALLBACK_SECRET is empty, worker callbacks will be rejected")
	}

	// HTTP
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(
		cfg,
		logger,
		handler.NewAuth(authService, logger),
		handler.NewMeetingHandler(meetingService, cfg.Processing.MaxUploadSize, logger),
		handler.NewTaskHandler(taskService, coordinator, logger),
		handler.NewIntegrationHandler(integrationService, logger),
		handler.NewWorkerWebhookHandler(meetingService, cfg.Worker.CallbackSecret, logger),
		httpmw.EchoAuth(authService),
	)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}
	if worker != nil {
		if err := worker.Stop(); err != nil {
			log.Printf("❌ Worker stop failed: %v", err)
		}
	}

	log.Println("✅ Server stopped gracefully")
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// newWorker attaches whichever providers are configured; without keys the
// worker fails meetings that need transcription and extracts by keyword
func newWorker(
	cfg *config.Config,
	meetings repositories.MeetingRepository,
	advancer processing.Advancer,
	audio processing.AudioSource,
	logger *zap.Logger,
) *processing.Worker {
	worker := processing.NewWorker(meetings, advancer, audio, cfg.Processing, logger)

	asm, err := pkgai.NewAssemblyAIClient(&cfg.Assembly)
	switch {
	case err == nil:
		worker.WithTranscriber(asm)
	case stdErrors.Is(err, pkgai.ErrNotConfigured):
		log.Println("⚠️  ASSEMBLYAI_API_KEY not set, meetings will fail transcription")
	default:
		log.Fatalf("Failed to initialize AssemblyAI client: %v", err)
	}

	groq, err := pkgai.NewGroqClient(&cfg.Groq)
	switch {
	case err == nil:
		worker.WithExtractor(groq)
	case stdErrors.Is(err, pkgai.ErrNotConfigured):
		log.Println("⚠️  GROQ_API_KEY not set, using keyword task extraction")
	default:
		log.Fatalf("Failed to initialize Groq client: %v", err)
	}

	return worker
}
