package handler

import (
	stdErrors "errors"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-secretary/errors"
	meetingDTO "github.com/johnquangdev/meeting-secretary/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-secretary/internal/adapter/presenter"
	ucerrors "github.com/johnquangdev/meeting-secretary/internal/usecase/errors"
	"github.com/johnquangdev/meeting-secretary/internal/usecase/meeting"
)

// Meeting handles meeting upload and retrieval
type Meeting struct {
	meetingService *meeting.Service
	maxUploadSize  int64
	logger         *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(meetingService *meeting.Service, maxUploadSize int64, logger *zap.Logger) *Meeting {
	return &Meeting{
		meetingService: meetingService,
		maxUploadSize:  maxUploadSize,
		logger:         logger,
	}
}

// Upload handles POST /meetings/upload
// @Summary      Upload a meeting recording
// @Description  Stores the audio and queues it for transcription and task extraction
// @Tags         Meetings
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file           formData  file    true   "Audio file (.mp3, .wav, .m4a, .ogg, .flac)"
// @Param        title          formData  string  false  "Title"
// @Param        is_local_only  formData  bool    false  "Never send audio to cloud providers"
// @Success      200            {object}  meetingDTO.MeetingResponse
// @Failure      400            {object}  map[string]interface{}  "Invalid file type or file too large"
// @Failure      401            {object}  map[string]interface{}  "User not authenticated"
// @Router       /meetings/upload [post]
func (h *Meeting) Upload(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var form meetingDTO.UploadForm
	if err := bindAndValidate(c, &form); err != nil {
		return HandleError(h.logger, c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrValidation(err))
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if fileHeader.Size > h.maxUploadSize {
		return HandleError(h.logger, c, errors.ErrFileTooLarge(h.maxUploadSize))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	m, err := h.meetingService.Submit(c.Request().Context(), userID, meeting.SubmitInput{
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Size:        fileHeader.Size,
		Body:        file,
		Title:       form.Title,
		IsLocalOnly: form.IsLocalOnly,
	})
	if err != nil {
		switch {
		case stdErrors.Is(err, ucerrors.ErrUnsupportedFormat):
			return HandleError(h.logger, c, errors.ErrUnsupportedAudioFormat(ext))
		case stdErrors.Is(err, ucerrors.ErrFileTooLarge):
			return HandleError(h.logger, c, errors.ErrFileTooLarge(h.maxUploadSize))
		}
		return HandleError(h.logger, c, errors.ErrStorageFailed("upload", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToMeetingResponse(m))
}

// ListMeetings handles GET /meetings
// @Summary      List meetings
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   meetingDTO.MeetingResponse
// @Router       /meetings [get]
func (h *Meeting) ListMeetings(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	meetings, err := h.meetingService.List(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, resourceMeeting, ""))
	}
	return HandleSuccess(h.logger, c, presenter.ToMeetingListResponse(meetings))
}

// GetMeeting handles GET /meetings/:id
// @Summary      Get a meeting with its tasks
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  meetingDTO.MeetingResponse
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Router       /meetings/{id} [get]
func (h *Meeting) GetMeeting(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	m, err := h.meetingService.Get(c.Request().Context(), userID, id)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, resourceMeeting, id.String()))
	}
	return HandleSuccess(h.logger, c, presenter.ToMeetingResponse(m))
}

// DeleteMeeting handles DELETE /meetings/:id
// @Summary      Delete a meeting and its tasks
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Router       /meetings/{id} [delete]
func (h *Meeting) DeleteMeeting(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.meetingService.Delete(c.Request().Context(), userID, id); err != nil {
		return HandleError(h.logger, c, toAppError(err, resourceMeeting, id.String()))
	}
	return HandleSuccess(h.logger, c, map[string]string{"id": id.String()})
}
