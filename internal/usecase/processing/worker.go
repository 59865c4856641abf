// Package processing runs uploaded meetings through transcription and task
// extraction and reports the outcome through the meeting lifecycle.
package processing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
	"github.com/johnquangdev/meeting-secretary/internal/domain/repositories"
	ucerrors "github.com/johnquangdev/meeting-secretary/internal/usecase/errors"
	"github.com/johnquangdev/meeting-secretary/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-secretary/pkg/ai"
	"github.com/johnquangdev/meeting-secretary/pkg/config"
	"github.com/johnquangdev/meeting-secretary/pkg/jobcontext"
	"github.com/johnquangdev/meeting-secretary/pkg/redact"
)

const jobType = "meeting.process"

// ErrNoTranscriber is returned when no transcription provider is configured
var ErrNoTranscriber = errors.New("no transcription provider configured")

// AudioSource reads stored audio
type AudioSource interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Transcriber turns audio into text
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}

// Extractor finds action items in a transcript
type Extractor interface {
	ExtractTasks(ctx context.Context, transcript string) ([]ai.ExtractedTask, error)
}

// Advancer applies lifecycle transitions
type Advancer interface {
	Advance(ctx context.Context, meetingID uuid.UUID, next entities.MeetingStatus, payload meeting.AdvancePayload) error
}

// Worker is an in-process queue of meetings to process
type Worker struct {
	meetings    repositories.MeetingRepository
	advancer    Advancer
	audio       AudioSource
	transcriber Transcriber
	local       Transcriber
	extractor   Extractor
	cfg         config.ProcessingConfig
	logger      *zap.Logger

	queue    chan uuid.UUID
	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

// NewWorker creates a worker; providers are attached with the With* methods
func NewWorker(meetings repositories.MeetingRepository, advancer Advancer, audio AudioSource, cfg config.ProcessingConfig, logger *zap.Logger) *Worker {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 15 * time.Minute
	}
	return &Worker{
		meetings: meetings,
		advancer: advancer,
		audio:    audio,
		cfg:      cfg,
		logger:   logger,
		queue:    make(chan uuid.UUID, cfg.QueueSize),
	}
}

// WithTranscriber sets the remote transcription provider
func (w *Worker) WithTranscriber(t Transcriber) *Worker {
	w.transcriber = t
	return w
}

// WithLocalTranscriber sets the provider allowed for local-only meetings
func (w *Worker) WithLocalTranscriber(t Transcriber) *Worker {
	w.local = t
	return w
}

// WithExtractor sets the task extraction model
func (w *Worker) WithExtractor(e Extractor) *Worker {
	w.extractor = e
	return w
}

// Dispatch queues a meeting; a full queue is left to the next sweep
func (w *Worker) Dispatch(meetingID uuid.UUID) {
	select {
	case w.queue <- meetingID:
	default:
		w.logger.Warn("processing queue full, deferring to sweep", zap.String("meeting_id", meetingID.String()))
	}
}

// Start launches the workers and the pending sweep
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("worker pool already running")
	}
	w.running = true
	w.stopChan = make(chan struct{})

	w.logger.Info("🚀 Starting processing worker pool", zap.Int("worker_count", w.cfg.Workers))

	for i := 0; i < w.cfg.Workers; i++ {
		w.wg.Add(1)
		go w.work(ctx, i)
	}
	if w.cfg.SweepInterval > 0 {
		w.wg.Add(1)
		go w.sweep(ctx)
	}
	return nil
}

// Stop signals all goroutines and waits for in-flight jobs
func (w *Worker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return fmt.Errorf("worker pool not running")
	}
	close(w.stopChan)
	w.wg.Wait()
	w.running = false

	w.logger.Info("✅ Processing worker pool stopped")
	return nil
}

func (w *Worker) work(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case id := <-w.queue:
			if err := w.process(ctx, id, workerID); err != nil {
				w.logger.Error("❌ Meeting processing error",
					zap.Int("worker_id", workerID),
					zap.String("meeting_id", id.String()),
					zap.Error(err),
				)
			}
		}
	}
}

// sweep re-queues pending meetings that were never dispatched or were dropped
func (w *Worker) sweep(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := w.meetings.ListByStatus(ctx, entities.MeetingStatusPending, w.cfg.QueueSize)
			if err != nil {
				w.logger.Error("failed to list pending meetings", zap.Error(err))
				continue
			}
			for _, m := range pending {
				w.Dispatch(m.ID)
			}
		}
	}
}

// Process runs one meeting to a terminal status
func (w *Worker) Process(ctx context.Context, meetingID uuid.UUID) error {
	return w.process(ctx, meetingID, 0)
}

func (w *Worker) process(ctx context.Context, meetingID uuid.UUID, workerID int) error {
	m, err := w.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return err
	}
	if m.Status != entities.MeetingStatusPending {
		return nil
	}
	// Without a local transcriber, local-only meetings stay pending for an
	// external worker reporting through the signed callback.
	if m.IsLocalOnly && w.local == nil {
		w.logger.Debug("leaving local-only meeting for an external worker", zap.String("meeting_id", m.ID.String()))
		return nil
	}

	// Claim: only one worker wins pending -> processing.
	if err := w.advancer.Advance(ctx, m.ID, entities.MeetingStatusProcessing, meeting.AdvancePayload{}); err != nil {
		if errors.Is(err, ucerrors.ErrInvalidTransition) || errors.Is(err, ucerrors.ErrNotFound) {
			return nil
		}
		return err
	}

	jobCtx, cancel := jobcontext.JobBegin(ctx, m.ID, jobType, workerID, w.cfg.JobTimeout)
	defer cancel()

	payload, runErr := w.run(jobCtx, m)
	job := jobcontext.GetJobMetadata(jobCtx)

	// The job context may have expired; the final write gets its own budget.
	doneCtx, doneCancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer doneCancel()

	if runErr != nil {
		w.logger.Warn("meeting processing failed",
			zap.String("meeting_id", m.ID.String()),
			zap.String("job_type", job.JobType),
			zap.Int("worker_id", job.WorkerID),
			zap.Duration("elapsed", time.Since(job.StartTime)),
			zap.Error(runErr),
		)
		return w.advancer.Advance(doneCtx, m.ID, entities.MeetingStatusFailed, meeting.AdvancePayload{Error: runErr.Error()})
	}

	w.logger.Info("meeting processed",
		zap.String("meeting_id", m.ID.String()),
		zap.Int("worker_id", job.WorkerID),
		zap.Duration("elapsed", time.Since(job.StartTime)),
		zap.Int("tasks", len(payload.Tasks)),
		zap.Bool("is_redacted", payload.IsRedacted),
	)
	return w.advancer.Advance(doneCtx, m.ID, entities.MeetingStatusCompleted, payload)
}

// run transcribes, redacts and extracts; local-only audio never reaches remote providers
func (w *Worker) run(ctx context.Context, m *entities.Meeting) (meeting.AdvancePayload, error) {
	transcriber := w.transcriber
	if m.IsLocalOnly {
		transcriber = w.local
	}
	if transcriber == nil {
		return meeting.AdvancePayload{}, ErrNoTranscriber
	}

	var text string
	err := jobcontext.JobEnd(ctx, func(ctx context.Context) error {
		rc, err := w.audio.Open(ctx, m.AudioObjectKey)
		if err != nil {
			return fmt.Errorf("failed to open audio: %w", err)
		}
		defer rc.Close()

		text, err = transcriber.Transcribe(ctx, rc)
		return err
	})
	if err != nil {
		return meeting.AdvancePayload{}, fmt.Errorf("transcription failed: %w", err)
	}

	payload := meeting.AdvancePayload{Transcript: text}
	if w.cfg.EnableRedaction {
		r := redact.Redact(text)
		payload.Transcript = r.Text
		payload.IsRedacted = r.Redacted()
	}

	payload.Tasks = toDrafts(w.extract(ctx, m, payload.Transcript))
	return payload, nil
}

// extract prefers the model and falls back to keyword extraction
func (w *Worker) extract(ctx context.Context, m *entities.Meeting, transcript string) []ai.ExtractedTask {
	if strings.TrimSpace(transcript) == "" {
		return nil
	}
	if w.extractor == nil || m.IsLocalOnly {
		return ai.ExtractSimple(transcript)
	}

	tasks, err := w.extractor.ExtractTasks(ctx, transcript)
	if err != nil {
		w.logger.Warn("task extraction failed, using keyword fallback",
			zap.String("meeting_id", m.ID.String()),
			zap.Error(err),
		)
		return ai.ExtractSimple(transcript)
	}
	return tasks
}

func toDrafts(extracted []ai.ExtractedTask) []meeting.TaskDraft {
	drafts := make([]meeting.TaskDraft, 0, len(extracted))
	for _, e := range extracted {
		d := meeting.TaskDraft{
			Description: e.Description,
			Priority:    e.Priority,
			Confidence:  e.Confidence,
		}
		if e.Owner != nil && strings.TrimSpace(*e.Owner) != "" {
			owner := strings.TrimSpace(*e.Owner)
			d.OwnerName = &owner
		}
		if e.Deadline != nil {
			if t, err := time.Parse("2006-01-02", *e.Deadline); err == nil {
				d.Deadline = &t
			}
		}
		drafts = append(drafts, d)
	}
	return drafts
}
