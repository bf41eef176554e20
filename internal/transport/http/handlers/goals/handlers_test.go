package goalshandler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/goals"
	"perfeval/internal/domain/identity"
	"perfeval/internal/platform/requestctx"
)

var (
	alice   = identity.Identity{UserID: "alice", Role: identity.RoleEmployee}
	bob     = identity.Identity{UserID: "bob", Role: identity.RoleEmployee}
	manager = identity.Identity{UserID: "mia", Role: identity.RoleManager}
)

func newRouter() http.Handler {
	h := NewHandler(goals.NewService(goals.NewMemoryStore()), auth.NewStaticPermissions(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Route("/api", h.RegisterRoutes)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, as *identity.Identity, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if as != nil {
		req = req.WithContext(requestctx.WithIdentity(req.Context(), *as))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeGoal(t *testing.T, rec *httptest.ResponseRecorder) goals.Goal {
	t.Helper()
	var goal goals.Goal
	if err := json.Unmarshal(rec.Body.Bytes(), &goal); err != nil {
		t.Fatalf("decode: %v (%s)", err, rec.Body.String())
	}
	return goal
}

func TestGoalsRequireAuth(t *testing.T) {
	h := newRouter()
	if rec := do(t, h, http.MethodGet, "/api/goals", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCreateValidation(t *testing.T) {
	h := newRouter()
	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing title", body: map[string]any{"priority": "high"}},
		{name: "bad priority", body: map[string]any{"title": "t", "priority": "urgent"}},
		{name: "progress too high", body: map[string]any{"title": "t", "progress": 120}},
		{name: "bad date", body: map[string]any{"title": "t", "dueDate": "tomorrow"}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/goals", &alice, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGoalOwnershipAndVisibility(t *testing.T) {
	h := newRouter()
	created := do(t, h, http.MethodPost, "/api/goals", &alice, map[string]any{"title": "Ship v2", "userId": "bob"})
	if created.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", created.Code, created.Body.String())
	}
	goal := decodeGoal(t, created)
	if goal.UserID != "alice" {
		t.Fatalf("owner must be the caller, got %q", goal.UserID)
	}

	var list []goals.Goal
	rec := do(t, h, http.MethodGet, "/api/goals", &bob, nil)
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	if rec.Code != http.StatusOK || len(list) != 0 {
		t.Fatalf("bob should see no goals: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodGet, "/api/goals?userId=alice", &bob, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for employee reading others, got %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/api/goals?userId=alice", &manager, nil)
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	if rec.Code != http.StatusOK || len(list) != 1 {
		t.Fatalf("manager should see alice's goal: %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(t, h, http.MethodPut, "/api/goals/"+goal.ID, &bob, map[string]any{"progress": 10}); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on foreign update, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPut, "/api/goals/missing", &alice, map[string]any{"progress": 10}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/api/goals/"+goal.ID, &bob, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on foreign delete, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/api/goals/"+goal.ID, &alice, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/api/goals/"+goal.ID, &alice, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestProgressCompletionRule(t *testing.T) {
	h := newRouter()
	goal := decodeGoal(t, do(t, h, http.MethodPost, "/api/goals", &alice, map[string]any{"title": "Learn Go", "progress": 40}))

	done := decodeGoal(t, do(t, h, http.MethodPut, "/api/goals/"+goal.ID, &alice, map[string]any{"progress": 100}))
	if done.Status != goals.StatusCompleted || done.CompletedDate == "" {
		t.Fatalf("expected completed goal, got %+v", done)
	}

	reopened := decodeGoal(t, do(t, h, http.MethodPut, "/api/goals/"+goal.ID, &alice, map[string]any{"progress": 60, "status": "behind"}))
	if reopened.Status != goals.StatusBehind || reopened.CompletedDate != "" {
		t.Fatalf("expected reopened goal, got %+v", reopened)
	}
}
