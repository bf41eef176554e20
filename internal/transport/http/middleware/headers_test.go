package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSecureHeaders(t *testing.T) {
	tests := []struct {
		name     string
		isProd   bool
		wantHSTS bool
	}{
		{name: "development", isProd: false, wantHSTS: false},
		{name: "production", isProd: true, wantHSTS: true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			h := SecureHeaders(tc.isProd)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/goals", nil))

			if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Fatalf("expected nosniff, got %q", got)
			}
			if got := rec.Header().Get("Cache-Control"); got != "no-store" {
				t.Fatalf("expected no-store, got %q", got)
			}
			if hasHSTS := rec.Header().Get("Strict-Transport-Security") != ""; hasHSTS != tc.wantHSTS {
				t.Fatalf("expected hsts=%v", tc.wantHSTS)
			}
		})
	}
}

func TestBodyLimit(t *testing.T) {
	var read int
	h := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		read = len(body)
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader("tiny")))
	if rec.Code != http.StatusNoContent || read != 4 {
		t.Fatalf("small body: got status %d, read %d", rec.Code, read)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader("this body is too long")))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("declared oversize: expected 413, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "payload_too_large") {
		t.Fatalf("expected payload_too_large code, got %s", rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader("this body is too long"))
	req.ContentLength = -1
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("chunked oversize: expected 413, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/goals", strings.NewReader("this body is too long")))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("reads are not limited: got %d", rec.Code)
	}
}
