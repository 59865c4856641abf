package handler

import (
	stdErrors "errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-secretary/errors"
	"github.com/johnquangdev/meeting-secretary/pkg/config"
	pkgvalidator "github.com/johnquangdev/meeting-secretary/pkg/validator"
)

// Router holds all handlers
type Router struct {
	cfg                *config.Config
	logger             *zap.Logger
	authHandler        *Auth
	meetingHandler     *Meeting
	taskHandler        *Task
	integrationHandler *Integration
	workerHandler      *WorkerWebhookHandler
	authMiddleware     echo.MiddlewareFunc
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authHandler *Auth,
	meetingHandler *Meeting,
	taskHandler *Task,
	integrationHandler *Integration,
	workerHandler *WorkerWebhookHandler,
	authMiddleware echo.MiddlewareFunc,
) *Router {
	return &Router{
		cfg:                cfg,
		logger:             logger,
		authHandler:        authHandler,
		meetingHandler:     meetingHandler,
		taskHandler:        taskHandler,
		integrationHandler: integrationHandler,
		workerHandler:      workerHandler,
		authMiddleware:     authMiddleware,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	if e.Validator == nil {
		e.Validator = pkgvalidator.New()
	}
	e.HTTPErrorHandler = rt.errorHandler

	// Health check endpoint
	e.GET("/health", rt.healthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupAuthRoutes(v1)
	rt.setupMeetingRoutes(v1)
	rt.setupTaskRoutes(v1)
	rt.setupIntegrationRoutes(v1)
	rt.setupInternalRoutes(v1)
}

// setupAuthRoutes configures authentication routes
func (rt *Router) setupAuthRoutes(g *echo.Group) {
	authGroup := g.Group("/auth")

	authGroup.POST("/register", rt.authHandler.Register)
	authGroup.POST("/login", rt.authHandler.Login)
	authGroup.GET("/me", rt.authHandler.Me, rt.authMiddleware)
	authGroup.GET("/google/login", rt.authHandler.GoogleLogin)
	authGroup.GET("/google/callback", rt.authHandler.GoogleCallback)
}

// setupMeetingRoutes configures meeting routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetingGroup := g.Group("/meetings", rt.authMiddleware)

	meetingGroup.POST("/upload", rt.meetingHandler.Upload)
	meetingGroup.GET("", rt.meetingHandler.ListMeetings)
	meetingGroup.GET("/:id", rt.meetingHandler.GetMeeting)
	meetingGroup.DELETE("/:id", rt.meetingHandler.DeleteMeeting)
}

// setupTaskRoutes configures task routes
func (rt *Router) setupTaskRoutes(g *echo.Group) {
	taskGroup := g.Group("/tasks", rt.authMiddleware)

	taskGroup.GET("", rt.taskHandler.ListTasks)
	taskGroup.GET("/:id", rt.taskHandler.GetTask)
	taskGroup.PATCH("/:id", rt.taskHandler.UpdateTask)
	taskGroup.DELETE("/:id", rt.taskHandler.DeleteTask)
	taskGroup.POST("/:id/confirm", rt.taskHandler.ConfirmTask)
	taskGroup.POST("/:id/sync", rt.taskHandler.SyncTask)
}

// setupIntegrationRoutes configures integration routes
func (rt *Router) setupIntegrationRoutes(g *echo.Group) {
	integrationGroup := g.Group("/integrations", rt.authMiddleware)

	integrationGroup.GET("", rt.integrationHandler.ListIntegrations)
	integrationGroup.POST("", rt.integrationHandler.CreateIntegration)
	integrationGroup.GET("/:id", rt.integrationHandler.GetIntegration)
	integrationGroup.PATCH("/:id/toggle", rt.integrationHandler.ToggleIntegration)
	integrationGroup.DELETE("/:id", rt.integrationHandler.DeleteIntegration)
}

// setupInternalRoutes configures worker callbacks; they are signed, not bearer-authenticated
func (rt *Router) setupInternalRoutes(g *echo.Group) {
	internal := g.Group("/internal")

	internal.POST("/meetings/:id/advance", rt.workerHandler.Advance)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}

// errorHandler renders framework errors (401 from the auth middleware, 404/405
// from routing) in the same envelope as handler errors
func (rt *Router) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !stdErrors.As(err, &he) {
		_ = HandleError(rt.logger, c, err)
		return
	}

	message := fmt.Sprint(he.Message)
	var appErr errors.AppError
	switch he.Code {
	case http.StatusUnauthorized:
		appErr = errors.ErrUnauthenticated()
		appErr.Message = message
	case http.StatusNotFound:
		appErr = errors.ErrNotFound("Route")
	case http.StatusRequestEntityTooLarge:
		appErr = errors.ErrFileTooLarge(rt.cfg.Processing.MaxUploadSize)
	default:
		appErr = errors.AppError{
			HTTPCode: he.Code,
			Code:     errors.ErrorCode_INVALID_ARGUMENT,
			Message:  message,
		}
		if he.Code >= http.StatusInternalServerError {
			appErr.Code = errors.ErrorCode_INTERNAL
		}
	}
	_ = HandleError(rt.logger, c, appErr)
}
