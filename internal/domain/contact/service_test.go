package contact

import (
	"context"
	"errors"
	"testing"

	"perfeval/internal/domain/identity"
)

type failingStore struct{ MemoryStore }

func (f *failingStore) Create(context.Context, *Message) error {
	return errors.New("disk full")
}

func TestSubmit(t *testing.T) {
	svc := NewService(NewMemoryStore())
	tests := []struct {
		name string
		in   SubmitInput
		want error
	}{
		{name: "ok", in: SubmitInput{Name: "Ann", Email: "ann@example.com", Message: "Hello"}},
		{name: "missing name", in: SubmitInput{Email: "ann@example.com", Message: "Hello"}, want: ErrMissingFields},
		{name: "blank message", in: SubmitInput{Name: "Ann", Email: "ann@example.com", Message: "  "}, want: ErrMissingFields},
		{name: "bad email", in: SubmitInput{Name: "Ann", Email: "not-an-email", Message: "Hello"}, want: ErrInvalidEmail},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			msg, err := svc.Submit(context.Background(), tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if tc.want == nil && msg.ID == "" {
				t.Fatalf("expected stored message to have an id")
			}
		})
	}
}

func TestSubmitStoreFailure(t *testing.T) {
	svc := NewService(&failingStore{})
	_, err := svc.Submit(context.Background(), SubmitInput{Name: "Ann", Email: "ann@example.com", Message: "Hello"})
	if err == nil || errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestListRequiresHR(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()
	for _, body := range []string{"first", "second"} {
		if _, err := svc.Submit(ctx, SubmitInput{Name: "Ann", Email: "ann@example.com", Message: body}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if _, err := svc.List(ctx, identity.Identity{UserID: "e", Role: identity.RoleEmployee}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	list, err := svc.List(ctx, identity.Identity{UserID: "h", Role: identity.RoleHR})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Message != "second" {
		t.Fatalf("expected newest first, got %+v", list)
	}
}
