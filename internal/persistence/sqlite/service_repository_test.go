package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/facility-booking/internal/persistence"
)

func TestServiceRepository_CreateAppliesDefaultDuration(t *testing.T) {
	h := newHarness(t)
	repo := h.Services
	ctx := context.Background()

	if err := repo.CreateService(ctx, persistence.Service{ID: "svc-1", Name: "Consultation"}); err != nil {
		t.Fatalf("CreateService failed: %v", err)
	}

	retrieved, err := repo.GetService(ctx, "svc-1")
	if err != nil {
		t.Fatalf("GetService failed: %v", err)
	}
	if retrieved.DurationMinutes != 60 {
		t.Errorf("expected default duration 60, got %d", retrieved.DurationMinutes)
	}
}

func TestServiceRepository_CreatePreservesExplicitDuration(t *testing.T) {
	h := newHarness(t)
	repo := h.Services
	ctx := context.Background()

	if err := repo.CreateService(ctx, persistence.Service{ID: "svc-1", Name: "Deep Clean", DurationMinutes: 90}); err != nil {
		t.Fatalf("CreateService failed: %v", err)
	}

	retrieved, err := repo.GetService(ctx, "svc-1")
	if err != nil {
		t.Fatalf("GetService failed: %v", err)
	}
	if retrieved.DurationMinutes != 90 {
		t.Errorf("expected duration 90, got %d", retrieved.DurationMinutes)
	}
}

func TestServiceRepository_ListAndDelete(t *testing.T) {
	h := newHarness(t)
	repo := h.Services
	ctx := context.Background()

	if err := repo.CreateService(ctx, persistence.Service{ID: "svc-b", Name: "Bravo"}); err != nil {
		t.Fatalf("CreateService failed: %v", err)
	}
	if err := repo.CreateService(ctx, persistence.Service{ID: "svc-a", Name: "Alpha"}); err != nil {
		t.Fatalf("CreateService failed: %v", err)
	}

	services, err := repo.ListServices(ctx)
	if err != nil {
		t.Fatalf("ListServices failed: %v", err)
	}
	if len(services) != 2 || services[0].Name != "Alpha" {
		t.Fatalf("expected name ordering, got %v", services)
	}

	if err := repo.DeleteService(ctx, "svc-a"); err != nil {
		t.Fatalf("DeleteService failed: %v", err)
	}
	if err := repo.DeleteService(ctx, "svc-a"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat delete, got %v", err)
	}
}
