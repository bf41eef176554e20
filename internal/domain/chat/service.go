package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"perfeval/internal/domain/identity"
)

type Service struct {
	Store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, now: time.Now}
}

// Slugify turns a display name into a room id.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (s *Service) EnsureDefaults(ctx context.Context) error {
	for _, ch := range DefaultChannels {
		if _, err := s.Store.GetChannel(ctx, ch.ID); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		ch.CreatedAt = s.now().UTC()
		ch.Members = []string{}
		if err := s.Store.CreateChannel(ctx, ch); err != nil && !errors.Is(err, ErrChannelExists) {
			return fmt.Errorf("seed channel %s: %w", ch.ID, err)
		}
	}
	return nil
}

func (s *Service) ListChannels(ctx context.Context, actor identity.Identity) ([]ChannelView, error) {
	return s.Store.ListChannelViews(ctx, actor.UserID)
}

func (s *Service) CreateChannel(ctx context.Context, actor identity.Identity, in CreateChannelInput) (Channel, error) {
	name := strings.TrimSpace(in.Name)
	slug := Slugify(name)
	if slug == "" {
		return Channel{}, ErrInvalidName
	}
	kind := in.Type
	if kind == "" {
		kind = ChannelPublic
	}
	if kind != ChannelPublic && kind != ChannelPrivate {
		return Channel{}, ErrInvalidType
	}

	members := []string{actor.UserID}
	seen := map[string]struct{}{actor.UserID: {}}
	for _, m := range in.Members {
		m = strings.TrimSpace(m)
		if _, dup := seen[m]; m == "" || dup {
			continue
		}
		seen[m] = struct{}{}
		members = append(members, m)
	}

	channel := Channel{
		ID:        slug,
		Name:      name,
		Type:      kind,
		Members:   members,
		CreatedBy: actor.UserID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.Store.CreateChannel(ctx, channel); err != nil {
		return Channel{}, err
	}
	return channel, nil
}

func (s *Service) JoinChannel(ctx context.Context, actor identity.Identity, id string) (Channel, error) {
	channel, err := s.Store.GetChannel(ctx, id)
	if err != nil {
		return Channel{}, err
	}
	if channel.HasMember(actor.UserID) {
		return channel, nil
	}
	if channel.Type == ChannelPrivate {
		return Channel{}, ErrForbidden
	}
	if err := s.Store.AddMember(ctx, id, actor.UserID); err != nil {
		return Channel{}, err
	}
	channel.Members = append(channel.Members, actor.UserID)
	return channel, nil
}

func (s *Service) DeleteChannel(ctx context.Context, actor identity.Identity, id string) error {
	channel, err := s.Store.GetChannel(ctx, id)
	if err != nil {
		return err
	}
	if channel.CreatedBy != actor.UserID && !actor.IsHR() {
		return ErrForbidden
	}
	return s.Store.DeleteChannel(ctx, id)
}

func (s *Service) readable(ctx context.Context, actor identity.Identity, id string) (Channel, error) {
	channel, err := s.Store.GetChannel(ctx, id)
	if err != nil {
		return Channel{}, err
	}
	if channel.Type == ChannelPrivate && !channel.HasMember(actor.UserID) {
		return Channel{}, ErrForbidden
	}
	return channel, nil
}

// CanUseRoom reports whether actor may join or post to a relay room. Rooms
// that are not channels are ad-hoc and open to every caller; private
// channels are open to their members only.
func (s *Service) CanUseRoom(ctx context.Context, actor identity.Identity, room string) (bool, error) {
	_, err := s.readable(ctx, actor, room)
	switch {
	case err == nil, errors.Is(err, ErrNotFound):
		return true, nil
	case errors.Is(err, ErrForbidden):
		return false, nil
	}
	return false, err
}

// History returns the most recent messages before the cursor in
// chronological order and records that the caller has read the channel.
func (s *Service) History(ctx context.Context, actor identity.Identity, id string, before time.Time, limit int) ([]Message, error) {
	if _, err := s.readable(ctx, actor, id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	messages, err := s.Store.ListMessages(ctx, id, before, limit)
	if err != nil {
		return nil, err
	}
	if before.IsZero() {
		if err := s.Store.MarkRead(ctx, id, actor.UserID, s.now().UTC()); err != nil {
			return nil, err
		}
	}
	if messages == nil {
		messages = []Message{}
	}
	return messages, nil
}

func (s *Service) PostMessage(ctx context.Context, actor identity.Identity, id, body string) (Message, error) {
	body = strings.TrimSpace(body)
	if body == "" || utf8.RuneCountInString(body) > MaxMessageLength {
		return Message{}, ErrInvalidMessage
	}
	if _, err := s.readable(ctx, actor, id); err != nil {
		return Message{}, err
	}
	now := s.now().UTC()
	msg := Message{
		ChannelID: id,
		UserID:    actor.UserID,
		UserName:  actor.Name,
		Message:   body,
		Timestamp: now,
		Type:      KindMessage,
	}
	if err := s.Store.InsertMessage(ctx, &msg); err != nil {
		return Message{}, err
	}
	if err := s.Store.MarkRead(ctx, id, actor.UserID, now); err != nil {
		return Message{}, err
	}
	return msg, nil
}
