package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-secretary/internal/adapter/repository"
	"github.com/johnquangdev/meeting-secretary/internal/adapter/repository/repotest"
	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
	ucerrors "github.com/johnquangdev/meeting-secretary/internal/usecase/errors"
)

func newTestService(t *testing.T) (*Service, *gorm.DB, *entities.Meeting) {
	t.Helper()
	db := repotest.NewDB(t)
	owner := repotest.SeedUser(t, db, "owner@example.com")
	m := repotest.SeedMeeting(t, db, owner.ID, entities.MeetingStatusCompleted)
	return NewService(repository.NewTaskRepository(db), zap.NewNop()), db, m
}

func strPtr(s string) *string { return &s }

func TestConfirm(t *testing.T) {
	svc, db, m := newTestService(t)
	ctx := context.Background()
	task := repotest.SeedTask(t, db, m, 0, entities.TaskStatusPending)

	got, err := svc.Confirm(ctx, m.OwnerID, task.ID)
	if err != nil || got.Status != entities.TaskStatusConfirmed {
		t.Fatalf("confirm: %+v %v", got, err)
	}

	if _, err := svc.Confirm(ctx, m.OwnerID, task.ID); !errors.Is(err, ucerrors.ErrInvalidTransition) {
		t.Fatalf("second confirm must be invalid transition, got %v", err)
	}
}

func TestUpdate_MergesSuppliedFields(t *testing.T) {
	svc, db, m := newTestService(t)
	ctx := context.Background()
	task := repotest.SeedTask(t, db, m, 0, entities.TaskStatusPending)
	deadline := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	got, err := svc.Update(ctx, m.OwnerID, task.ID, Patch{
		OwnerName: strPtr("Sam"),
		Deadline:  &deadline,
		Priority:  strPtr("high"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Description != task.Description || got.Status != entities.TaskStatusPending {
		t.Fatalf("unsupplied fields changed: %+v", got)
	}

	stored, _ := svc.Get(ctx, m.OwnerID, task.ID)
	if stored.OwnerName == nil || *stored.OwnerName != "Sam" || stored.Priority != entities.TaskPriorityHigh {
		t.Fatalf("update not persisted: %+v", stored)
	}
	if stored.Deadline == nil || !stored.Deadline.Equal(deadline) {
		t.Fatalf("deadline not persisted: %v", stored.Deadline)
	}

	got, err = svc.Update(ctx, m.OwnerID, task.ID, Patch{OwnerName: strPtr(""), ClearDeadline: true})
	if err != nil || got.OwnerName != nil || got.Deadline != nil {
		t.Fatalf("clear failed: %+v %v", got, err)
	}
}

func TestUpdate_Validation(t *testing.T) {
	svc, db, m := newTestService(t)
	ctx := context.Background()
	task := repotest.SeedTask(t, db, m, 0, entities.TaskStatusPending)

	cases := []struct {
		name  string
		patch Patch
		want  error
	}{
		{"unknown priority", Patch{Priority: strPtr("urgent")}, ucerrors.ErrValidation},
		{"blank description", Patch{Description: strPtr("  ")}, ucerrors.ErrValidation},
		{"unknown status", Patch{Status: strPtr("archived")}, ucerrors.ErrValidation},
		{"skip confirmation", Patch{Status: strPtr("completed")}, ucerrors.ErrInvalidTransition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Update(ctx, m.OwnerID, task.ID, tc.patch); !errors.Is(err, tc.want) {
				t.Fatalf("got %v want %v", err, tc.want)
			}
		})
	}

	stored, _ := svc.Get(ctx, m.OwnerID, task.ID)
	if stored.Priority != entities.TaskPriorityMedium || stored.Status != entities.TaskStatusPending {
		t.Fatalf("rejected updates must not persist: %+v", stored)
	}
}

func TestUpdate_StatusFollowsTransitions(t *testing.T) {
	svc, db, m := newTestService(t)
	ctx := context.Background()
	task := repotest.SeedTask(t, db, m, 0, entities.TaskStatusConfirmed)

	got, err := svc.Update(ctx, m.OwnerID, task.ID, Patch{Status: strPtr("completed")})
	if err != nil || got.Status != entities.TaskStatusCompleted {
		t.Fatalf("complete: %+v %v", got, err)
	}

	if _, err := svc.Update(ctx, m.OwnerID, task.ID, Patch{Status: strPtr("pending")}); !errors.Is(err, ucerrors.ErrInvalidTransition) {
		t.Fatalf("completed task cannot reopen, got %v", err)
	}
}

func TestUpdate_CompletedTaskFieldsStayEditable(t *testing.T) {
	svc, db, m := newTestService(t)
	ctx := context.Background()
	task := repotest.SeedTask(t, db, m, 0, entities.TaskStatusCompleted)

	got, err := svc.Update(ctx, m.OwnerID, task.ID, Patch{
		Description: strPtr("Ship the Q3 report"),
		Priority:    strPtr("high"),
	})
	if err != nil {
		t.Fatalf("edit completed task: %v", err)
	}
	if got.Status != entities.TaskStatusCompleted {
		t.Fatalf("edit must not change status, got %s", got.Status)
	}

	stored, _ := svc.Get(ctx, m.OwnerID, task.ID)
	if stored.Description != "Ship the Q3 report" || stored.Priority != entities.TaskPriorityHigh || stored.Status != entities.TaskStatusCompleted {
		t.Fatalf("edit not persisted: %+v", stored)
	}

	cancelled := repotest.SeedTask(t, db, m, 1, entities.TaskStatusCancelled)
	if _, err := svc.Update(ctx, m.OwnerID, cancelled.ID, Patch{OwnerName: strPtr("Sam")}); err != nil {
		t.Fatalf("edit cancelled task: %v", err)
	}
}

func TestListAndDelete(t *testing.T) {
	svc, db, m := newTestService(t)
	ctx := context.Background()
	pending := repotest.SeedTask(t, db, m, 0, entities.TaskStatusPending)
	repotest.SeedTask(t, db, m, 1, entities.TaskStatusCancelled)

	status := entities.TaskStatusPending
	tasks, err := svc.List(ctx, m.OwnerID, Filter{MeetingID: &m.ID, Status: &status})
	if err != nil || len(tasks) != 1 || tasks[0].ID != pending.ID {
		t.Fatalf("filtered list: %v %v", tasks, err)
	}

	bogus := entities.TaskStatus("archived")
	if _, err := svc.List(ctx, m.OwnerID, Filter{Status: &bogus}); !errors.Is(err, ucerrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := svc.Delete(ctx, m.OwnerID, pending.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, m.OwnerID, pending.ID); !errors.Is(err, ucerrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, m.OwnerID, pending.ID); !errors.Is(err, ucerrors.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
