package analyticshandler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/analytics"
	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/evaluations"
	"perfeval/internal/domain/goals"
	"perfeval/internal/domain/identity"
	"perfeval/internal/domain/users"
	"perfeval/internal/platform/requestctx"
)

var (
	alice   = identity.Identity{UserID: "alice", Role: identity.RoleEmployee}
	bob     = identity.Identity{UserID: "bob", Role: identity.RoleEmployee}
	manager = identity.Identity{UserID: "mia", Role: identity.RoleManager}
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	goalSvc := goals.NewService(goals.NewMemoryStore())
	evalSvc := evaluations.NewService(evaluations.NewMemoryStore())
	for _, progress := range []int{100, 20} {
		if _, err := goalSvc.Create(context.Background(), alice, goals.CreateInput{Title: "g", Progress: progress}); err != nil {
			t.Fatalf("create goal: %v", err)
		}
	}
	h := NewHandler(analytics.NewService(goalSvc, evalSvc), users.NewService(users.NewMemoryStore()),
		auth.NewStaticPermissions(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Route("/api", h.RegisterRoutes)
	return r
}

func get(h http.Handler, path string, as identity.Identity) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(requestctx.WithIdentity(req.Context(), as))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSummaryJSON(t *testing.T) {
	h := newRouter(t)
	rec := get(h, "/api/analytics/summary", alice)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var summary analytics.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Goals.Total != 2 || summary.Goals.CompletionRate != 50 || summary.Goals.AverageProgress != 60 {
		t.Fatalf("unexpected summary %+v", summary.Goals)
	}

	if rec := get(h, "/api/analytics/summary?userId=alice", bob); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if rec := get(h, "/api/analytics/summary?userId=alice", manager); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for manager, got %d", rec.Code)
	}
}

func TestSummaryPDF(t *testing.T) {
	h := newRouter(t)
	rec := get(h, "/api/analytics/summary.pdf", alice)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Fatalf("body is not a pdf")
	}
}
