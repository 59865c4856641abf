package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/johnquangdev/meeting-secretary/internal/adapter/repository/repotest"
	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
	"github.com/johnquangdev/meeting-secretary/internal/domain/repositories"
)

func TestTaskRepository_ListFilters(t *testing.T) {
	db := repotest.NewDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	owner := repotest.SeedUser(t, db, "owner@example.com")
	other := repotest.SeedUser(t, db, "other@example.com")

	m1 := repotest.SeedMeeting(t, db, owner.ID, entities.MeetingStatusCompleted)
	m2 := repotest.SeedMeeting(t, db, owner.ID, entities.MeetingStatusCompleted)
	m3 := repotest.SeedMeeting(t, db, other.ID, entities.MeetingStatusCompleted)
	repotest.SeedTask(t, db, m1, 0, entities.TaskStatusPending)
	repotest.SeedTask(t, db, m1, 1, entities.TaskStatusConfirmed)
	repotest.SeedTask(t, db, m2, 0, entities.TaskStatusPending)
	repotest.SeedTask(t, db, m3, 0, entities.TaskStatusPending)

	all, err := repo.List(ctx, owner.ID, repositories.TaskFilters{})
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 tasks, got %d (%v)", len(all), err)
	}

	pending := entities.TaskStatusPending
	byStatus, _ := repo.List(ctx, owner.ID, repositories.TaskFilters{Status: &pending})
	if len(byStatus) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(byStatus))
	}

	byMeeting, _ := repo.List(ctx, owner.ID, repositories.TaskFilters{MeetingID: &m1.ID, Status: &pending})
	if len(byMeeting) != 1 {
		t.Fatalf("expected 1 pending in meeting, got %d", len(byMeeting))
	}
}

func TestTaskRepository_UpdateIfStatus(t *testing.T) {
	db := repotest.NewDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	owner := repotest.SeedUser(t, db, "owner@example.com")
	m := repotest.SeedMeeting(t, db, owner.ID, entities.MeetingStatusCompleted)
	task := repotest.SeedTask(t, db, m, 0, entities.TaskStatusPending)

	task.Status = entities.TaskStatusConfirmed
	task.Description = "Renamed"
	if err := repo.UpdateIfStatus(ctx, task, entities.TaskStatusPending); err != nil {
		t.Fatalf("update: %v", err)
	}

	task.Status = entities.TaskStatusCancelled
	if err := repo.UpdateIfStatus(ctx, task, entities.TaskStatusPending); !errors.Is(err, entities.ErrConflict) {
		t.Fatalf("stale expected status should conflict, got %v", err)
	}

	got, err := repo.FindByID(ctx, owner.ID, task.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != entities.TaskStatusConfirmed || got.Description != "Renamed" {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestTaskRepository_SetExternalRefOnce(t *testing.T) {
	db := repotest.NewDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	owner := repotest.SeedUser(t, db, "owner@example.com")
	m := repotest.SeedMeeting(t, db, owner.ID, entities.MeetingStatusCompleted)
	task := repotest.SeedTask(t, db, m, 0, entities.TaskStatusPending)

	if err := repo.SetExternalRef(ctx, task.ID, entities.ServiceJira, "PROJ-1"); err != nil {
		t.Fatalf("set ref: %v", err)
	}
	if err := repo.SetExternalRef(ctx, task.ID, entities.ServiceJira, "PROJ-2"); !errors.Is(err, entities.ErrConflict) {
		t.Fatalf("second write should conflict, got %v", err)
	}
	if err := repo.SetExternalRef(ctx, task.ID, entities.ServiceTrello, "card-1"); err != nil {
		t.Fatalf("independent trello slot: %v", err)
	}

	got, _ := repo.FindByID(ctx, owner.ID, task.ID)
	if got.JiraIssueKey == nil || *got.JiraIssueKey != "PROJ-1" {
		t.Fatalf("jira key overwritten: %+v", got.JiraIssueKey)
	}
	if got.TrelloCardID == nil || *got.TrelloCardID != "card-1" {
		t.Fatalf("trello id missing: %+v", got.TrelloCardID)
	}
	if got.Status != entities.TaskStatusPending {
		t.Fatalf("status must not change on sync, got %s", got.Status)
	}
}

func TestTaskRepository_DeleteScoped(t *testing.T) {
	db := repotest.NewDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	owner := repotest.SeedUser(t, db, "owner@example.com")
	other := repotest.SeedUser(t, db, "other@example.com")
	m := repotest.SeedMeeting(t, db, owner.ID, entities.MeetingStatusCompleted)
	task := repotest.SeedTask(t, db, m, 0, entities.TaskStatusPending)

	if err := repo.Delete(ctx, other.ID, task.ID); !errors.Is(err, entities.ErrTaskNotFound) {
		t.Fatalf("foreign delete should be not found, got %v", err)
	}
	if err := repo.Delete(ctx, owner.ID, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, owner.ID, task.ID); !errors.Is(err, entities.ErrTaskNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
