package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	integrationDTO "github.com/johnquangdev/meeting-secretary/internal/adapter/dto/integration"
	"github.com/johnquangdev/meeting-secretary/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-secretary/internal/usecase/integration"
)

// Integration handles tracker credential management
type Integration struct {
	integrationService *integration.Service
	logger             *zap.Logger
}

// NewIntegrationHandler creates a new integration handler
func NewIntegrationHandler(integrationService *integration.Service, logger *zap.Logger) *Integration {
	return &Integration{
		integrationService: integrationService,
		logger:             logger,
	}
}

// ListIntegrations handles GET /integrations
// @Summary      List integrations
// @Tags         Integrations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  integrationDTO.IntegrationResponse
// @Router       /integrations [get]
func (h *Integration) ListIntegrations(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	items, err := h.integrationService.List(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, resourceIntegration, ""))
	}
	return HandleSuccess(h.logger, c, presenter.ToIntegrationListResponse(items))
}

// CreateIntegration handles POST /integrations
// @Summary      Store tracker credentials
// @Description  Replaces any existing integration for the same service
// @Tags         Integrations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      integrationDTO.CreateIntegrationRequest  true  "Service and config"
// @Success      200      {object}  integrationDTO.IntegrationResponse
// @Failure      400      {object}  map[string]interface{}  "Invalid service_type or config"
// @Router       /integrations [post]
func (h *Integration) CreateIntegration(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req integrationDTO.CreateIntegrationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	item, err := h.integrationService.Create(c.Request().Context(), userID, integration.CreateInput{
		ServiceType: req.ServiceType,
		Config:      req.Config,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, resourceIntegration, ""))
	}
	return HandleSuccess(h.logger, c, presenter.ToIntegrationResponse(item))
}

// GetIntegration handles GET /integrations/:id
// @Summary      Get an integration
// @Tags         Integrations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Integration ID"
// @Success      200  {object}  integrationDTO.IntegrationResponse
// @Failure      404  {object}  map[string]interface{}  "Integration not found"
// @Router       /integrations/{id} [get]
func (h *Integration) GetIntegration(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	item, err := h.integrationService.Get(c.Request().Context(), userID, id)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, resourceIntegration, id.String()))
	}
	return HandleSuccess(h.logger, c, presenter.ToIntegrationResponse(item))
}

// ToggleIntegration handles PATCH /integrations/:id/toggle
// @Summary      Flip an integration between active and inactive
// @Tags         Integrations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Integration ID"
// @Success      200  {object}  integrationDTO.IntegrationResponse
// @Failure      404  {object}  map[string]interface{}  "Integration not found"
// @Router       /integrations/{id}/toggle [patch]
func (h *Integration) ToggleIntegration(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	item, err := h.integrationService.Toggle(c.Request().Context(), userID, id)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, resourceIntegration, id.String()))
	}
	return HandleSuccess(h.logger, c, presenter.ToIntegrationResponse(item))
}

// DeleteIntegration handles DELETE /integrations/:id
// @Summary      Delete an integration
// @Tags         Integrations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Integration ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}  "Integration not found"
// @Router       /integrations/{id} [delete]
func (h *Integration) DeleteIntegration(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.integrationService.Delete(c.Request().Context(), userID, id); err != nil {
		return HandleError(h.logger, c, toAppError(err, resourceIntegration, id.String()))
	}
	return HandleSuccess(h.logger, c, map[string]string{"id": id.String()})
}
