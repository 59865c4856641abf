package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-secretary/errors"
	authDTO "github.com/johnquangdev/meeting-secretary/internal/adapter/dto/auth"
	"github.com/johnquangdev/meeting-secretary/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
	"github.com/johnquangdev/meeting-secretary/internal/usecase/auth"
	ucerrors "github.com/johnquangdev/meeting-secretary/internal/usecase/errors"
)

// Auth handles authentication HTTP requests
type Auth struct {
	authService *auth.Service
	logger      *zap.Logger
}

// NewAuth creates a new auth handler
func NewAuth(authService *auth.Service, logger *zap.Logger) *Auth {
	return &Auth{
		authService: authService,
		logger:      logger,
	}
}

// Register handles POST /auth/register
// @Summary      Register a password account
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      authDTO.RegisterRequest  true  "Registration"
// @Success      200      {object}  authDTO.UserResponse
// @Failure      400      {object}  map[string]interface{}  "Validation failed"
// @Failure      409      {object}  map[string]interface{}  "Email already registered"
// @Router       /auth/register [post]
func (h *Auth) Register(c echo.Context) error {
	var req authDTO.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	user, err := h.authService.Register(c.Request().Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, resourceUser, req.Email))
	}
	return HandleSuccess(h.logger, c, presenter.ToUserResponse(user))
}

// Login handles POST /auth/login
// @Summary      Exchange credentials for a bearer token
// @Tags         Auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Email"
// @Param        password  formData  string  true  "Password"
// @Success      200       {object}  authDTO.TokenResponse
// @Failure      401       {object}  map[string]interface{}  "Incorrect email or password"
// @Router       /auth/login [post]
func (h *Auth) Login(c echo.Context) error {
	var req authDTO.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	token, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, resourceUser, req.Username))
	}
	return HandleSuccess(h.logger, c, presenter.ToTokenResponse(token))
}

// Me handles GET /auth/me
// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  authDTO.UserResponse
// @Failure      401  {object}  map[string]interface{}  "User not authenticated"
// @Router       /auth/me [get]
func (h *Auth) Me(c echo.Context) error {
	user, ok := c.Get("user").(*entities.User)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}
	return HandleSuccess(h.logger, c, presenter.ToUserResponse(user))
}

// GoogleLogin handles GET /auth/google/login
// @Summary      Start Google sign-in
// @Tags         Auth
// @Success      307
// @Router       /auth/google/login [get]
func (h *Auth) GoogleLogin(c echo.Context) error {
	authURL, err := h.authService.GetGoogleAuthURL(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, resourceUser, ""))
	}

	return c.Redirect(http.StatusTemporaryRedirect, authURL.URL)
}

// GoogleCallback handles GET /auth/google/callback
// @Summary      Finish Google sign-in
// @Tags         Auth
// @Produce      json
// @Param        code   query     string  true  "Authorization code"
// @Param        state  query     string  true  "OAuth state"
// @Success      200    {object}  authDTO.TokenResponse
// @Failure      401    {object}  map[string]interface{}  "Authentication failed"
// @Router       /auth/google/callback [get]
func (h *Auth) GoogleCallback(c echo.Context) error {
	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if code == "" || state == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Missing code or state parameter"))
	}

	token, err := h.authService.HandleGoogleCallback(c.Request().Context(), code, state)
	if err != nil {
		if stdErrors.Is(err, ucerrors.ErrOAuthDisabled) {
			return HandleError(h.logger, c, toAppError(err, resourceUser, ""))
		}
		return HandleError(h.logger, c, errors.ErrOAuthFailed("google", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToTokenResponse(token))
}
