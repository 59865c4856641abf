package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/johnquangdev/meeting-secretary/internal/adapter/repository/repotest"
	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
)

func TestIntegrationRepository_UpsertReplaces(t *testing.T) {
	db := repotest.NewDB(t)
	repo := NewIntegrationRepository(db)
	ctx := context.Background()
	owner := repotest.SeedUser(t, db, "owner@example.com")

	first, err := entities.NewIntegration(owner.ID, entities.ServiceTrello,
		json.RawMessage(`{"api_key":"k","api_token":"t","default_list_id":"L1"}`), true)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	saved, err := repo.Upsert(ctx, first)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second, _ := entities.NewIntegration(owner.ID, entities.ServiceTrello,
		json.RawMessage(`{"api_key":"k2","api_token":"t2","default_list_id":"L2"}`), false)
	replaced, err := repo.Upsert(ctx, second)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if replaced.ID != saved.ID {
		t.Fatalf("upsert should keep the existing row: %s vs %s", replaced.ID, saved.ID)
	}
	if replaced.IsActive {
		t.Fatal("is_active should be replaced")
	}
	cfg, err := replaced.TrelloConfig()
	if err != nil || cfg.DefaultListID != "L2" {
		t.Fatalf("config not replaced: %+v %v", cfg, err)
	}

	list, _ := repo.ListByUser(ctx, owner.ID)
	if len(list) != 1 {
		t.Fatalf("expected one integration per service, got %d", len(list))
	}
}

func TestIntegrationRepository_ToggleAndDelete(t *testing.T) {
	db := repotest.NewDB(t)
	repo := NewIntegrationRepository(db)
	ctx := context.Background()
	owner := repotest.SeedUser(t, db, "owner@example.com")
	other := repotest.SeedUser(t, db, "other@example.com")

	in, _ := entities.NewIntegration(owner.ID, entities.ServiceJira,
		json.RawMessage(`{"base_url":"https://acme.atlassian.net","email":"a@b.c","api_token":"x"}`), true)
	saved, err := repo.Upsert(ctx, in)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	toggled, err := repo.Toggle(ctx, owner.ID, saved.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.IsActive {
		t.Fatal("expected inactive after toggle")
	}
	toggled, _ = repo.Toggle(ctx, owner.ID, saved.ID)
	if !toggled.IsActive {
		t.Fatal("expected active after second toggle")
	}

	if _, err := repo.Toggle(ctx, other.ID, saved.ID); !errors.Is(err, entities.ErrIntegrationNotFound) {
		t.Fatalf("foreign toggle should be not found, got %v", err)
	}
	if err := repo.Delete(ctx, other.ID, saved.ID); !errors.Is(err, entities.ErrIntegrationNotFound) {
		t.Fatalf("foreign delete should be not found, got %v", err)
	}
	if err := repo.Delete(ctx, owner.ID, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByService(ctx, owner.ID, entities.ServiceJira); !errors.Is(err, entities.ErrIntegrationNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
