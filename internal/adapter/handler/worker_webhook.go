package handler

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-secretary/errors"
	meetingDTO "github.com/johnquangdev/meeting-secretary/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
	"github.com/johnquangdev/meeting-secretary/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-secretary/pkg/ai"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body
const SignatureHeader = "X-Worker-Signature"

// WorkerWebhookHandler receives status transitions from an out-of-process worker
type WorkerWebhookHandler struct {
	meetingService *meeting.Service
	secret         string
	logger         *zap.Logger
}

// NewWorkerWebhookHandler creates a new handler; an empty secret rejects every call
func NewWorkerWebhookHandler(meetingService *meeting.Service, secret string, logger *zap.Logger) *WorkerWebhookHandler {
	return &WorkerWebhookHandler{meetingService: meetingService, secret: secret, logger: logger}
}

// Advance handles POST /internal/meetings/:id/advance
// @Summary      Advance a meeting (worker callback)
// @Tags         Internal
// @Accept       json
// @Produce      json
// @Param        id                  path      string                     true  "Meeting ID"
// @Param        X-Worker-Signature  header    string                     true  "hex HMAC-SHA256 of the body"
// @Param        request             body      meetingDTO.AdvanceRequest  true  "Transition"
// @Success      200                 {object}  map[string]interface{}
// @Failure      403                 {object}  map[string]interface{}  "Bad signature"
// @Failure      404                 {object}  map[string]interface{}  "Meeting not found"
// @Failure      409                 {object}  map[string]interface{}  "Transition not allowed"
// @Router       /internal/meetings/{id}/advance [post]
func (h *WorkerWebhookHandler) Advance(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if !ai.VerifyHMAC(h.secret, body, strings.TrimSpace(c.Request().Header.Get(SignatureHeader))) {
		return HandleError(h.logger, c, errors.ErrForbidden("Invalid worker signature"))
	}

	var req meetingDTO.AdvanceRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return HandleError(h.logger, c, errors.ErrValidation(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrValidation(err))
	}

	payload := meeting.AdvancePayload{
		Transcript: req.Transcript,
		IsRedacted: req.IsRedacted,
		Error:      req.Error,
	}
	for _, t := range req.Tasks {
		draft := meeting.TaskDraft{
			Description: t.Description,
			OwnerName:   t.Owner,
			Priority:    t.Priority,
			Confidence:  t.Confidence,
		}
		if t.Deadline != nil {
			if d, err := time.Parse("2006-01-02", *t.Deadline); err == nil {
				draft.Deadline = &d
			}
		}
		payload.Tasks = append(payload.Tasks, draft)
	}

	next := entities.MeetingStatus(req.Status)
	if err := h.meetingService.Advance(c.Request().Context(), id, next, payload); err != nil {
		return HandleError(h.logger, c, toAppError(err, resourceMeeting, id.String()))
	}

	h.logger.Info("meeting advanced by worker callback",
		zap.String("meeting_id", id.String()),
		zap.String("status", req.Status),
	)
	return HandleSuccess(h.logger, c, map[string]string{"id": id.String(), "status": req.Status})
}
