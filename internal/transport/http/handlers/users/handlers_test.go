package usershandler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/identity"
	"perfeval/internal/domain/users"
	"perfeval/internal/platform/requestctx"
)

type fixture struct {
	router http.Handler
	svc    *users.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	userSvc := users.NewService(users.NewMemoryStore())
	authSvc := auth.NewService(userSvc, "test-secret", time.Hour, nil, nil)
	h := NewHandler(userSvc, authSvc, auth.NewStaticPermissions(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Route("/api", h.RegisterRoutes)
	return fixture{router: r, svc: userSvc}
}

func (f fixture) do(t *testing.T, method, path string, as *identity.Identity, body any) *httptest.ResponseRecorder {
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
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f fixture) register(t *testing.T, email, role string) identity.Identity {
	t.Helper()
	user, err := f.svc.Register(context.Background(), users.NewUser{Email: email, Name: email, Role: role, PasswordHash: "x"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return identity.Identity{UserID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}
}

func TestMeReturnsSessionIdentity(t *testing.T) {
	f := newFixture(t)
	if rec := f.do(t, http.MethodGet, "/api/users/me", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	me := identity.Identity{UserID: "u1", Email: "a@example.com", Name: "Ann", Role: identity.RoleEmployee}
	first := f.do(t, http.MethodGet, "/api/users/me", &me, nil)
	second := f.do(t, http.MethodGet, "/api/users/me", &me, nil)
	if first.Code != http.StatusOK || first.Body.String() != second.Body.String() {
		t.Fatalf("me should be idempotent: %s vs %s", first.Body.String(), second.Body.String())
	}
	var body struct {
		User identity.Identity `json:"user"`
	}
	if err := json.Unmarshal(first.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.User.UserID != "u1" || body.User.Role != identity.RoleEmployee {
		t.Fatalf("unexpected identity %+v", body.User)
	}
}

func TestListRequiresManagerOrHR(t *testing.T) {
	f := newFixture(t)
	emp := f.register(t, "emp@example.com", identity.RoleEmployee)
	mgr := f.register(t, "mgr@example.com", identity.RoleManager)

	if rec := f.do(t, http.MethodGet, "/api/users", &emp, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	rec := f.do(t, http.MethodGet, "/api/users", &mgr, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 users, got %d", len(list))
	}
	for _, u := range list {
		if _, ok := u["passwordHash"]; ok {
			t.Fatalf("password hash serialized: %v", u)
		}
	}
}

func TestHRCanProvisionHR(t *testing.T) {
	f := newFixture(t)
	hr := f.register(t, "hr@example.com", identity.RoleHR)
	mgr := f.register(t, "mgr@example.com", identity.RoleManager)
	payload := map[string]string{"email": "new-hr@example.com", "password": "secret1", "name": "New", "role": "hr"}

	if rec := f.do(t, http.MethodPost, "/api/users", &mgr, payload); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for manager, got %d", rec.Code)
	}
	rec := f.do(t, http.MethodPost, "/api/users", &hr, payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := f.do(t, http.MethodPost, "/api/users", &hr, payload); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", rec.Code)
	}
}

func TestUpdateProfileRules(t *testing.T) {
	f := newFixture(t)
	ann := f.register(t, "ann@example.com", identity.RoleEmployee)
	bob := f.register(t, "bob@example.com", identity.RoleEmployee)
	hr := f.register(t, "hr@example.com", identity.RoleHR)

	tests := []struct {
		name   string
		as     identity.Identity
		target string
		body   map[string]string
		status int
	}{
		{name: "self", as: ann, target: ann.UserID, body: map[string]string{"name": "Ann B"}, status: http.StatusOK},
		{name: "other employee", as: bob, target: ann.UserID, body: map[string]string{"name": "x"}, status: http.StatusForbidden},
		{name: "hr edits anyone", as: hr, target: ann.UserID, body: map[string]string{"department": "Ops"}, status: http.StatusOK},
		{name: "role immutable", as: ann, target: ann.UserID, body: map[string]string{"role": "hr"}, status: http.StatusBadRequest},
		{name: "email taken", as: ann, target: ann.UserID, body: map[string]string{"email": "bob@example.com"}, status: http.StatusConflict},
		{name: "missing", as: hr, target: "nope", body: map[string]string{"name": "x"}, status: http.StatusNotFound},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPut, "/api/users/"+tc.target, &tc.as, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ann := f.register(t, "ann@example.com", identity.RoleEmployee)
	hr := f.register(t, "hr@example.com", identity.RoleHR)

	if rec := f.do(t, http.MethodDelete, "/api/users/"+hr.UserID, &ann, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if rec := f.do(t, http.MethodDelete, "/api/users/"+ann.UserID, &hr, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := f.do(t, http.MethodDelete, "/api/users/"+ann.UserID, &hr, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
