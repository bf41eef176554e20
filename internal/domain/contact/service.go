package contact

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"perfeval/internal/domain/identity"
)

const DefaultListLimit = 100

type Service struct {
	Store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, now: time.Now}
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (Message, error) {
	msg := Message{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Message:   strings.TrimSpace(in.Message),
		CreatedAt: s.now().UTC(),
	}
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		return Message{}, ErrMissingFields
	}
	if _, err := mail.ParseAddress(msg.Email); err != nil {
		return Message{}, ErrInvalidEmail
	}
	if err := s.Store.Create(ctx, &msg); err != nil {
		return Message{}, fmt.Errorf("save contact message: %w", err)
	}
	return msg, nil
}

func (s *Service) List(ctx context.Context, actor identity.Identity) ([]Message, error) {
	if !actor.IsHR() {
		return nil, ErrForbidden
	}
	list, err := s.Store.List(ctx, DefaultListLimit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Message{}
	}
	return list, nil
}
