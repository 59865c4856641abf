package meeting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
	"github.com/johnquangdev/meeting-secretary/internal/domain/repositories"
	ucerrors "github.com/johnquangdev/meeting-secretary/internal/usecase/errors"
	"github.com/johnquangdev/meeting-secretary/pkg/config"
)

// AudioStore persists uploaded audio blobs
type AudioStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}

// Dispatcher hands a pending meeting to whatever processes it
type Dispatcher interface {
	Dispatch(meetingID uuid.UUID)
}

// Service owns the meeting lifecycle
type Service struct {
	meetings   repositories.MeetingRepository
	audio      AudioStore
	dispatcher Dispatcher
	cfg        config.ProcessingConfig
	logger     *zap.Logger
}

// NewService creates the meeting service
func NewService(meetings repositories.MeetingRepository, audio AudioStore, cfg config.ProcessingConfig, logger *zap.Logger) *Service {
	return &Service{
		meetings: meetings,
		audio:    audio,
		cfg:      cfg,
		logger:   logger,
	}
}

// SetDispatcher wires the processing queue once it exists
func (s *Service) SetDispatcher(d Dispatcher) {
	s.dispatcher = d
}

// SubmitInput is an uploaded recording
type SubmitInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Title       string
	IsLocalOnly bool
}

// TaskDraft is an action item proposed by the extraction step
type TaskDraft struct {
	Description string
	OwnerName   *string
	Deadline    *time.Time
	Priority    string
	Confidence  *float64
}

// AdvancePayload carries the worker's result for a transition
type AdvancePayload struct {
	Transcript string
	IsRedacted bool
	Tasks      []TaskDraft
	Error      string
}

// Submit stores the audio, records a pending meeting and queues it
func (s *Service) Submit(ctx context.Context, ownerID uuid.UUID, in SubmitInput) (*entities.Meeting, error) {
	ext := strings.ToLower(filepath.Ext(in.Filename))
	if !entities.IsAllowedAudioExtension(ext) {
		return nil, fmt.Errorf("%w: %w: %q", ucerrors.ErrValidation, ucerrors.ErrUnsupportedFormat, ext)
	}
	if in.Size > s.cfg.MaxUploadSize {
		return nil, fmt.Errorf("%w: %w: %d > %d bytes", ucerrors.ErrValidation, ucerrors.ErrFileTooLarge, in.Size, s.cfg.MaxUploadSize)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = filepath.Base(in.Filename)
	}

	key := fmt.Sprintf("meetings/%s/%s%s", ownerID, uuid.NewString(), ext)
	meeting := entities.NewMeeting(ownerID, title, key, in.ContentType, in.IsLocalOnly || s.cfg.LocalMode)

	if err := s.audio.Put(ctx, key, in.Body, in.Size, in.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store audio: %w", err)
	}
	if err := s.meetings.Create(ctx, meeting); err != nil {
		s.removeAudio(ctx, key)
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	s.logger.Info("meeting submitted",
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.Bool("is_local_only", meeting.IsLocalOnly),
	)

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(meeting.ID)
	}
	return meeting, nil
}

// Advance applies a worker-reported transition.
// Only pending->processing and processing->completed|failed are accepted;
// a transition lost to a concurrent writer is reported as ErrInvalidTransition.
func (s *Service) Advance(ctx context.Context, meetingID uuid.UUID, next entities.MeetingStatus, payload AdvancePayload) error {
	current, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return mapMeetingErr(err)
	}
	if !current.Status.CanAdvanceTo(next) {
		return fmt.Errorf("%w: %s -> %s", ucerrors.ErrInvalidTransition, current.Status, next)
	}

	switch next {
	case entities.MeetingStatusProcessing:
		err = s.meetings.MarkProcessing(ctx, meetingID)
	case entities.MeetingStatusCompleted:
		err = s.meetings.MarkCompleted(ctx, meetingID, repositories.MeetingCompletion{
			Transcript: payload.Transcript,
			IsRedacted: payload.IsRedacted,
			Tasks:      s.buildTasks(current, payload.Tasks),
		})
	case entities.MeetingStatusFailed:
		err = s.meetings.MarkFailed(ctx, meetingID, payload.Error)
	}

	if errors.Is(err, entities.ErrConflict) {
		if _, findErr := s.meetings.FindByID(ctx, meetingID); errors.Is(findErr, entities.ErrMeetingNotFound) {
			return ucerrors.ErrNotFound
		}
		return fmt.Errorf("%w: meeting left %s concurrently", ucerrors.ErrInvalidTransition, current.Status)
	}
	if err != nil {
		return err
	}

	s.logger.Info("meeting advanced",
		zap.String("meeting_id", meetingID.String()),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next)),
	)
	return nil
}

// Get returns the owner's meeting with its tasks in extraction order
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*entities.Meeting, error) {
	m, err := s.meetings.FindForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, mapMeetingErr(err)
	}
	return m, nil
}

// List returns the owner's meetings, newest first
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*entities.Meeting, error) {
	return s.meetings.ListByOwner(ctx, ownerID)
}

// Delete removes the meeting and its tasks; the audio blob is removed best-effort
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	m, err := s.meetings.FindForOwner(ctx, ownerID, id)
	if err != nil {
		return mapMeetingErr(err)
	}
	if err := s.meetings.Delete(ctx, ownerID, id); err != nil {
		return mapMeetingErr(err)
	}
	s.removeAudio(ctx, m.AudioObjectKey)

	s.logger.Info("meeting deleted", zap.String("meeting_id", id.String()))
	return nil
}

func (s *Service) removeAudio(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.audio.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to remove audio", zap.String("key", key), zap.Error(err))
	}
}

// buildTasks turns drafts into pending tasks, dropping empty descriptions
func (s *Service) buildTasks(m *entities.Meeting, drafts []TaskDraft) []*entities.Task {
	tasks := make([]*entities.Task, 0, len(drafts))
	for _, d := range drafts {
		priority := entities.TaskPriority(strings.ToLower(strings.TrimSpace(d.Priority)))
		if !priority.IsValid() {
			priority = entities.TaskPriorityMedium
		}

		task := entities.NewTask(m.ID, m.OwnerID, len(tasks), d.Description, priority)
		task.OwnerName = d.OwnerName
		task.Deadline = d.Deadline
		if d.Confidence != nil {
			c := min(max(*d.Confidence, 0), 1)
			task.Confidence = &c
		}

		if err := task.Validate(); err != nil {
			s.logger.Warn("dropping extracted task",
				zap.String("meeting_id", m.ID.String()),
				zap.Error(err),
			)
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks
}

func mapMeetingErr(err error) error {
	if errors.Is(err, entities.ErrMeetingNotFound) {
		return ucerrors.ErrNotFound
	}
	return err
}
