package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-secretary/errors"
	ucerrors "github.com/johnquangdev/meeting-secretary/internal/usecase/errors"
	"github.com/johnquangdev/meeting-secretary/internal/usecase/tasksync"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get("X-Request-ID")
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Debug("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			level := logger.Warn
			if appErr.HTTPCode >= http.StatusInternalServerError {
				level = logger.Error
			}
			level("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Any("app_code", appErr.Code),
				zap.Error(err),
			)
		}

		info := ""
		if appErr.Raw != nil {
			info = appErr.Raw.Error()
		}

		body := errs{
			Code:    appErr.Code,
			Message: appErr.Message,
			Info:    info,
			Details: appErr.Details,
		}

		return c.JSON(appErr.HTTPCode, body)
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := errs{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "Internal server error",
		Info:    err.Error(),
	}

	return c.JSON(http.StatusInternalServerError, body)
}

// bindAndValidate binds the request into v and runs struct validation
func bindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return errors.ErrValidation(err)
	}
	if err := c.Validate(v); err != nil {
		return errors.ErrValidation(err)
	}
	return nil
}

// currentUserID reads the id set by the auth middleware
func currentUserID(c echo.Context) (uuid.UUID, error) {
	id, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.ErrUnauthenticated()
	}
	return id, nil
}

// pathID parses the :id path parameter
func pathID(c echo.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.ErrInvalidArgument("invalid id: " + raw)
	}
	return id, nil
}

type resource int

const (
	resourceMeeting resource = iota
	resourceTask
	resourceIntegration
	resourceUser
)

// toAppError maps usecase errors onto the HTTP error taxonomy
func toAppError(err error, kind resource, id string) error {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return err
	}

	var syncErr *tasksync.Error
	if stdErrors.As(err, &syncErr) {
		service := string(syncErr.Service)
		switch {
		case stdErrors.Is(err, ucerrors.ErrIntegrationNotFound):
			return errors.ErrIntegrationNotFound(service)
		case stdErrors.Is(err, ucerrors.ErrIntegrationInactive):
			return errors.ErrIntegrationInactive(service)
		case stdErrors.Is(err, ucerrors.ErrAlreadySynced):
			return errors.ErrAlreadySynced(service, syncErr.Ref)
		case stdErrors.Is(err, ucerrors.ErrTargetRequired):
			return errors.ErrTargetRequired(service)
		case stdErrors.Is(err, ucerrors.ErrSyncInProgress):
			return errors.ErrSyncInProgress(service)
		case stdErrors.Is(err, ucerrors.ErrUpstreamTimeout):
			return errors.ErrUpstreamTimeout(service, syncErr.Cause)
		case stdErrors.Is(err, ucerrors.ErrSyncFailed):
			return errors.ErrSyncFailed(service, syncErr.Cause)
		}
	}

	switch {
	case stdErrors.Is(err, ucerrors.ErrNotFound):
		switch kind {
		case resourceMeeting:
			return errors.ErrMeetingNotFound(id)
		case resourceTask:
			return errors.ErrTaskNotFound(id)
		case resourceIntegration:
			return errors.ErrNotFound("Integration").WithDetail("integration_id", id)
		}
		return errors.ErrUserNotFound()
	case stdErrors.Is(err, ucerrors.ErrInvalidTransition):
		if kind == resourceMeeting {
			return errors.ErrMeetingInvalidTransition(err)
		}
		return errors.ErrTaskInvalidTransition(err)
	case stdErrors.Is(err, ucerrors.ErrValidation), stdErrors.Is(err, ucerrors.ErrInvalidInput):
		return errors.ErrValidation(err)
	case stdErrors.Is(err, ucerrors.ErrInvalidCredentials):
		return errors.ErrInvalidCredentials()
	case stdErrors.Is(err, ucerrors.ErrEmailAlreadyUsed):
		return errors.ErrUserAlreadyExists(id)
	case stdErrors.Is(err, ucerrors.ErrTokenInvalid):
		return errors.ErrInvalidToken()
	case stdErrors.Is(err, ucerrors.ErrUserNotActive):
		return errors.ErrForbidden("User is not active")
	case stdErrors.Is(err, ucerrors.ErrOAuthDisabled):
		return errors.ErrForbidden("Google sign-in is not configured")
	}
	return errors.ErrInternal(err)
}
