package goals

import (
	"context"
	"errors"
	"testing"
	"time"

	"perfeval/internal/domain/identity"
)

var (
	alice   = identity.Identity{UserID: "alice", Role: identity.RoleEmployee}
	bob     = identity.Identity{UserID: "bob", Role: identity.RoleEmployee}
	manager = identity.Identity{UserID: "mia", Role: identity.RoleManager}
)

func newTestService(now time.Time) *Service {
	svc := NewService(NewMemoryStore())
	svc.now = func() time.Time { return now }
	return svc
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestCreateStampsOwnerAndDefaults(t *testing.T) {
	svc := newTestService(time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC))
	goal, err := svc.Create(context.Background(), alice, CreateInput{Title: "  Ship v2 ", DueDate: "2026-06-01"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if goal.UserID != "alice" || goal.Title != "Ship v2" || goal.Priority != PriorityMedium || goal.Status != StatusActive {
		t.Fatalf("unexpected goal: %+v", goal)
	}

	done, err := svc.Create(context.Background(), alice, CreateInput{Title: "Done already", Progress: 100})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if done.Status != StatusCompleted || done.CompletedDate != "2026-05-04" {
		t.Fatalf("expected completed goal, got %+v", done)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(time.Now())
	tests := []struct {
		name string
		in   CreateInput
		want error
	}{
		{name: "missing title", in: CreateInput{Title: " "}, want: ErrTitleRequired},
		{name: "bad priority", in: CreateInput{Title: "t", Priority: "urgent"}, want: ErrInvalidPriority},
		{name: "bad status", in: CreateInput{Title: "t", Status: "paused"}, want: ErrInvalidStatus},
		{name: "bad progress", in: CreateInput{Title: "t", Progress: 101}, want: ErrInvalidProgress},
		{name: "bad date", in: CreateInput{Title: "t", DueDate: "31/12/2026"}, want: ErrInvalidDueDate},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), alice, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUpdateProgressScenario(t *testing.T) {
	svc := newTestService(time.Date(2026, 5, 4, 23, 30, 0, 0, time.UTC))
	ctx := context.Background()
	goal, _ := svc.Create(ctx, alice, CreateInput{Title: "Certification", Progress: 40})

	updated, err := svc.Update(ctx, alice, goal.ID, Patch{Progress: intPtr(100)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != StatusCompleted || updated.CompletedDate != "2026-05-04" {
		t.Fatalf("expected completion today, got %+v", updated)
	}

	reopened, err := svc.Update(ctx, alice, goal.ID, Patch{Progress: intPtr(80), Status: strPtr(StatusOnTrack)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if reopened.Status != StatusOnTrack || reopened.CompletedDate != "" || reopened.Progress != 80 {
		t.Fatalf("expected reopened goal, got %+v", reopened)
	}

	titled, err := svc.Update(ctx, alice, goal.ID, Patch{Title: strPtr("Cloud certification")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if titled.Status != StatusOnTrack || titled.Progress != 80 {
		t.Fatalf("title-only update must not touch progress: %+v", titled)
	}
}

func TestOwnershipAndVisibility(t *testing.T) {
	svc := newTestService(time.Now())
	ctx := context.Background()
	goal, _ := svc.Create(ctx, alice, CreateInput{Title: "Mine"})

	if _, err := svc.Update(ctx, bob, goal.ID, Patch{Progress: intPtr(10)}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, bob, goal.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Update(ctx, alice, "missing", Patch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	bobGoals, err := svc.List(ctx, bob, "")
	if err != nil || len(bobGoals) != 0 {
		t.Fatalf("bob should see no goals: %v %v", bobGoals, err)
	}
	if _, err := svc.List(ctx, bob, "alice"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("employees may not list other users' goals: %v", err)
	}
	managed, err := svc.List(ctx, manager, "alice")
	if err != nil || len(managed) != 1 {
		t.Fatalf("manager should see alice's goal: %v %v", managed, err)
	}
	if _, err := svc.Get(ctx, manager, goal.ID); err != nil {
		t.Fatalf("manager get: %v", err)
	}
	if _, err := svc.Get(ctx, bob, goal.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if err := svc.Delete(ctx, alice, goal.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, alice, goal.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSweepOverdue(t *testing.T) {
	svc := newTestService(time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	late, _ := svc.Create(ctx, alice, CreateInput{Title: "Late", DueDate: "2026-05-01", Progress: 30})
	svc.Create(ctx, alice, CreateInput{Title: "Future", DueDate: "2026-06-01"})
	svc.Create(ctx, alice, CreateInput{Title: "Done", DueDate: "2026-04-01", Progress: 100})

	n, err := svc.SweepOverdue(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected one overdue goal, got %d %v", n, err)
	}
	got, _ := svc.Get(ctx, alice, late.ID)
	if got.Status != StatusOverdue {
		t.Fatalf("expected overdue, got %s", got.Status)
	}
	if n, _ := svc.SweepOverdue(ctx); n != 0 {
		t.Fatalf("second sweep should be a no-op, got %d", n)
	}
}
