package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-secretary/errors"
	taskDTO "github.com/johnquangdev/meeting-secretary/internal/adapter/dto/task"
	"github.com/johnquangdev/meeting-secretary/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
	"github.com/johnquangdev/meeting-secretary/internal/usecase/task"
	"github.com/johnquangdev/meeting-secretary/internal/usecase/tasksync"
)

// Task handles task review, lifecycle and sync requests
type Task struct {
	taskService *task.Service
	coordinator *tasksync.Coordinator
	logger      *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *task.Service, coordinator *tasksync.Coordinator, logger *zap.Logger) *Task {
	return &Task{
		taskService: taskService,
		coordinator: coordinator,
		logger:      logger,
	}
}

// ListTasks handles GET /tasks
// @Summary      List tasks
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        meeting_id     query     string  false  "Meeting ID"
// @Param        status_filter  query     string  false  "pending, confirmed, completed or cancelled"
// @Success      200            {array}   taskDTO.TaskResponse
// @Failure      400            {object}  map[string]interface{}  "Invalid filter"
// @Router       /tasks [get]
func (h *Task) ListTasks(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var q taskDTO.ListTasksQuery
	if err := bindAndValidate(c, &q); err != nil {
		return HandleError(h.logger, c, err)
	}

	var filter task.Filter
	if q.MeetingID != "" {
		id, err := uuid.Parse(q.MeetingID)
		if err != nil {
			return HandleError(h.logger, c, errors.ErrValidation(err))
		}
		filter.MeetingID = &id
	}
	if q.StatusFilter != "" {
		status := entities.TaskStatus(q.StatusFilter)
		filter.Status = &status
	}

	tasks, err := h.taskService.List(c.Request().Context(), userID, filter)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, resourceTask, ""))
	}
	return HandleSuccess(h.logger, c, presenter.ToTaskListResponse(tasks))
}

// GetTask handles GET /tasks/:id
// @Summary      Get a task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  taskDTO.TaskResponse
// @Failure      404  {object}  map[string]interface{}  "Task not found"
// @Router       /tasks/{id} [get]
func (h *Task) GetTask(c echo.Context) error {
	userID, id, err := h.ids(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	t, err := h.taskService.Get(c.Request().Context(), userID, id)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, resourceTask, id.String()))
	}
	return HandleSuccess(h.logger, c, presenter.ToTaskResponse(t))
}

// UpdateTask handles PATCH /tasks/:id
// @Summary      Partially update a task
// @Description  Only supplied fields change; a null deadline clears it
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Task ID"
// @Param        request  body      taskDTO.UpdateTaskRequest  true  "Fields to change"
// @Success      200      {object}  taskDTO.TaskResponse
// @Failure      400      {object}  map[string]interface{}  "Validation failed"
// @Failure      404      {object}  map[string]interface{}  "Task not found"
// @Failure      409      {object}  map[string]interface{}  "Status transition not allowed"
// @Router       /tasks/{id} [patch]
func (h *Task) UpdateTask(c echo.Context) error {
	userID, id, err := h.ids(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req taskDTO.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrValidation(err))
	}

	patch := task.Patch{
		Description: req.Description,
		OwnerName:   req.OwnerName,
		Priority:    req.Priority,
		Status:      req.Status,
	}
	if req.Deadline.Set {
		patch.Deadline = req.Deadline.Value
		patch.ClearDeadline = req.Deadline.Value == nil
	}

	t, err := h.taskService.Update(c.Request().Context(), userID, id, patch)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, resourceTask, id.String()))
	}
	return HandleSuccess(h.logger, c, presenter.ToTaskResponse(t))
}

// ConfirmTask handles POST /tasks/:id/confirm
// @Summary      Confirm a pending task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  taskDTO.TaskResponse
// @Failure      409  {object}  map[string]interface{}  "Task is not pending"
// @Router       /tasks/{id}/confirm [post]
func (h *Task) ConfirmTask(c echo.Context) error {
	userID, id, err := h.ids(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	t, err := h.taskService.Confirm(c.Request().Context(), userID, id)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, resourceTask, id.String()))
	}
	return HandleSuccess(h.logger, c, presenter.ToTaskResponse(t))
}

// DeleteTask handles DELETE /tasks/:id
// @Summary      Delete a task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}  "Task not found"
// @Router       /tasks/{id} [delete]
func (h *Task) DeleteTask(c echo.Context) error {
	userID, id, err := h.ids(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.taskService.Delete(c.Request().Context(), userID, id); err != nil {
		return HandleError(h.logger, c, toAppError(err, resourceTask, id.String()))
	}
	return HandleSuccess(h.logger, c, map[string]string{"id": id.String()})
}

// SyncTask handles POST /tasks/:id/sync
// @Summary      Create the task in Jira or Trello
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Task ID"
// @Param        request  body      taskDTO.SyncTaskRequest  true  "Target service"
// @Success      200      {object}  taskDTO.SyncTaskResponse
// @Failure      400      {object}  map[string]interface{}  "Invalid service or missing target"
// @Failure      404      {object}  map[string]interface{}  "Task or integration not found"
// @Failure      409      {object}  map[string]interface{}  "Already synced, inactive or in progress"
// @Failure      502      {object}  map[string]interface{}  "Tracker rejected the item"
// @Failure      504      {object}  map[string]interface{}  "Tracker did not respond in time"
// @Router       /tasks/{id}/sync [post]
func (h *Task) SyncTask(c echo.Context) error {
	userID, id, err := h.ids(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req taskDTO.SyncTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := h.coordinator.Sync(c.Request().Context(), userID, id, tasksync.Input{
		Service:    req.Service,
		ProjectKey: req.ProjectKey,
		ListID:     req.ListID,
	})
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, resourceTask, id.String()))
	}
	return HandleSuccess(h.logger, c, presenter.ToSyncResponse(result))
}

func (h *Task) ids(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := pathID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, id, nil
}
