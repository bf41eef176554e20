package shared

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/chat"
	"perfeval/internal/domain/goals"
	"perfeval/internal/domain/users"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{users.ErrEmailTaken, http.StatusConflict, "conflict"},
		{fmt.Errorf("wrapped: %w", goals.ErrNotFound), http.StatusNotFound, "not_found"},
		{goals.ErrForbidden, http.StatusForbidden, "forbidden"},
		{goals.ErrInvalidProgress, http.StatusBadRequest, "validation_error"},
		{chat.ErrChannelExists, http.StatusConflict, "conflict"},
		{auth.ErrMFARequired, http.StatusUnauthorized, "mfa_required"},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{errors.New("connection refused"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.err.Error(), func(t *testing.T) {
			status, code := StatusFor(tc.err)
			if status != tc.status || code != tc.code {
				t.Fatalf("got %d %s, want %d %s", status, code, tc.status, tc.code)
			}
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	WriteError(rec, req, nil, errors.New("pq: password authentication failed"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
}

func TestValidator(t *testing.T) {
	v := NewValidator()
	v.Required("name", " ", "is required")
	v.Email("email", "not-an-email")
	v.Email("ok", "a@example.com")
	v.MinLength("password", "12345", 6, "must be at least 6 characters")
	v.Enum("role", "HR", []string{"employee", "manager"}, "must be employee or manager")
	v.Date("dueDate", "2026-13-01")
	v.Date("empty", "")
	score := 6.0
	v.Range("score", &score, 0, 5, "must be between 0 and 5")

	issues := v.Issues()
	if len(issues) != 6 {
		t.Fatalf("expected 6 issues, got %+v", issues)
	}
	if issues[0].Field != "dueDate" {
		t.Fatalf("issues should be sorted by field: %+v", issues)
	}

	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-9") {
		t.Fatal("expected reject")
	}
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), `"fields"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct{ Name string }
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	if DecodeJSON(rec, req, &dst) {
		t.Fatal("expected decode failure")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("x", 64)+`"}`))
	req.Body = http.MaxBytesReader(rec, req.Body, 16)
	if DecodeJSON(rec, req, &dst) {
		t.Fatal("expected size failure")
	}
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}
