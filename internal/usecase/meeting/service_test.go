package meeting

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-secretary/internal/adapter/repository"
	"github.com/johnquangdev/meeting-secretary/internal/adapter/repository/repotest"
	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
	ucerrors "github.com/johnquangdev/meeting-secretary/internal/usecase/errors"
	"github.com/johnquangdev/meeting-secretary/pkg/config"
)

type memAudio struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memAudio) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	return nil
}

func (m *memAudio) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type recordingDispatcher struct {
	ids []uuid.UUID
}

func (d *recordingDispatcher) Dispatch(id uuid.UUID) { d.ids = append(d.ids, id) }

type fixture struct {
	svc   *Service
	db    *gorm.DB
	audio *memAudio
	queue *recordingDispatcher
	owner *entities.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := repotest.NewDB(t)
	f := &fixture{
		db:    db,
		audio: &memAudio{objects: map[string][]byte{}},
		queue: &recordingDispatcher{},
		owner: repotest.SeedUser(t, db, "owner@example.com"),
	}
	f.svc = NewService(repository.NewMeetingRepository(db), f.audio, config.ProcessingConfig{MaxUploadSize: 1024}, zap.NewNop())
	f.svc.SetDispatcher(f.queue)
	return f
}

func (f *fixture) submit(t *testing.T, title string) *entities.Meeting {
	t.Helper()
	m, err := f.svc.Submit(context.Background(), f.owner.ID, SubmitInput{
		Filename:    "standup.MP3",
		ContentType: "audio/mpeg",
		Size:        4,
		Body:        bytes.NewReader([]byte("RIFF")),
		Title:       title,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return m
}

func TestSubmit_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.owner.ID, SubmitInput{Filename: "notes.txt", Size: 1, Body: bytes.NewReader(nil)})
	if !errors.Is(err, ucerrors.ErrValidation) || !errors.Is(err, ucerrors.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}

	_, err = f.svc.Submit(ctx, f.owner.ID, SubmitInput{Filename: "big.wav", Size: 2048, Body: bytes.NewReader(nil)})
	if !errors.Is(err, ucerrors.ErrFileTooLarge) {
		t.Fatalf("expected file too large, got %v", err)
	}
	if len(f.audio.objects) != 0 || len(f.queue.ids) != 0 {
		t.Fatal("rejected uploads must not store or dispatch")
	}
}

func TestSubmit_StoresAndDispatches(t *testing.T) {
	f := newFixture(t)
	m := f.submit(t, "")

	if m.Status != entities.MeetingStatusPending || m.Title != "standup.MP3" {
		t.Fatalf("unexpected meeting: %+v", m)
	}
	if _, ok := f.audio.objects[m.AudioObjectKey]; !ok {
		t.Fatal("audio not stored")
	}
	if len(f.queue.ids) != 1 || f.queue.ids[0] != m.ID {
		t.Fatalf("expected dispatch of %s, got %v", m.ID, f.queue.ids)
	}
}

func TestAdvance_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.submit(t, "Standup")

	err := f.svc.Advance(ctx, m.ID, entities.MeetingStatusCompleted, AdvancePayload{Transcript: "skip"})
	if !errors.Is(err, ucerrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	got, _ := f.svc.Get(ctx, f.owner.ID, m.ID)
	if got.Status != entities.MeetingStatusPending || got.Transcript != nil || got.ProcessedAt != nil {
		t.Fatalf("rejected advance must leave meeting unchanged: %+v", got)
	}

	if err := f.svc.Advance(ctx, m.ID, entities.MeetingStatusProcessing, AdvancePayload{}); err != nil {
		t.Fatalf("processing: %v", err)
	}

	high := 1.7
	err = f.svc.Advance(ctx, m.ID, entities.MeetingStatusCompleted, AdvancePayload{
		Transcript: "We need X",
		Tasks: []TaskDraft{
			{Description: "Do X", Priority: "medium"},
			{Description: "   ", Priority: "low"},
			{Description: "Ship Y", Priority: "URGENT", Confidence: &high},
		},
	})
	if err != nil {
		t.Fatalf("completed: %v", err)
	}

	got, err = f.svc.Get(ctx, f.owner.ID, m.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != entities.MeetingStatusCompleted || got.ProcessedAt == nil || got.Transcript == nil || *got.Transcript != "We need X" {
		t.Fatalf("unexpected completed meeting: %+v", got)
	}
	if len(got.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got.Tasks))
	}
	if got.Tasks[0].Description != "Do X" || got.Tasks[0].Status != entities.TaskStatusPending {
		t.Fatalf("unexpected first task: %+v", got.Tasks[0])
	}
	if got.Tasks[1].Priority != entities.TaskPriorityMedium || got.Tasks[1].Confidence == nil || *got.Tasks[1].Confidence != 1 {
		t.Fatalf("second task not normalised: %+v", got.Tasks[1])
	}

	err = f.svc.Advance(ctx, m.ID, entities.MeetingStatusFailed, AdvancePayload{Error: "late"})
	if !errors.Is(err, ucerrors.ErrInvalidTransition) {
		t.Fatalf("terminal meeting must not move, got %v", err)
	}
}

func TestAdvance_FailedHasNoTranscript(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.submit(t, "Retro")

	_ = f.svc.Advance(ctx, m.ID, entities.MeetingStatusProcessing, AdvancePayload{})
	if err := f.svc.Advance(ctx, m.ID, entities.MeetingStatusFailed, AdvancePayload{Transcript: "ignored", Error: "decoder crashed"}); err != nil {
		t.Fatalf("failed: %v", err)
	}

	got, _ := f.svc.Get(ctx, f.owner.ID, m.ID)
	if got.Status != entities.MeetingStatusFailed || got.Transcript != nil || len(got.Tasks) != 0 || got.ProcessedAt == nil {
		t.Fatalf("unexpected failed meeting: %+v", got)
	}
}

func TestAdvance_ConcurrentClaimSingleWinner(t *testing.T) {
	f := newFixture(t)
	m := f.submit(t, "Race")

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.svc.Advance(context.Background(), m.ID, entities.MeetingStatusProcessing, AdvancePayload{})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ucerrors.ErrInvalidTransition) {
				t.Errorf("loser must see invalid transition, got %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}

func TestDelete_CascadesAndRejectsLateAdvance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.submit(t, "Planning")

	_ = f.svc.Advance(ctx, m.ID, entities.MeetingStatusProcessing, AdvancePayload{})
	_ = f.svc.Advance(ctx, m.ID, entities.MeetingStatusCompleted, AdvancePayload{Tasks: []TaskDraft{{Description: "Write plan", Priority: "high"}}})

	if err := f.svc.Delete(ctx, f.owner.ID, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var count int64
	f.db.Model(&entities.Task{}).Where("meeting_id = ?", m.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected tasks removed, %d left", count)
	}
	if _, ok := f.audio.objects[m.AudioObjectKey]; ok {
		t.Fatal("audio should be removed")
	}

	if _, err := f.svc.Get(ctx, f.owner.ID, m.ID); !errors.Is(err, ucerrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := f.svc.Delete(ctx, f.owner.ID, m.ID); !errors.Is(err, ucerrors.ErrNotFound) {
		t.Fatalf("second delete must be not found, got %v", err)
	}
	if err := f.svc.Advance(ctx, m.ID, entities.MeetingStatusFailed, AdvancePayload{}); !errors.Is(err, ucerrors.ErrNotFound) {
		t.Fatalf("advance on deleted meeting must be not found, got %v", err)
	}
}

func TestGet_ScopedToOwner(t *testing.T) {
	f := newFixture(t)
	m := f.submit(t, "Private")
	stranger := repotest.SeedUser(t, f.db, "stranger@example.com")

	if _, err := f.svc.Get(context.Background(), stranger.ID, m.ID); !errors.Is(err, ucerrors.ErrNotFound) {
		t.Fatalf("expected not found for stranger, got %v", err)
	}
	if err := f.svc.Delete(context.Background(), stranger.ID, m.ID); !errors.Is(err, ucerrors.ErrNotFound) {
		t.Fatalf("stranger delete must be not found, got %v", err)
	}
}
