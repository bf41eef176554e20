package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu       sync.RWMutex
	channels map[string]Channel
	messages map[string][]Message
	reads    map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		channels: map[string]Channel{},
		messages: map[string][]Message{},
		reads:    map[string]time.Time{},
	}
}

func readKey(channelID, userID string) string {
	return channelID + "\x00" + userID
}

func (s *MemoryStore) CreateChannel(_ context.Context, channel Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.channels[channel.ID]; ok {
		return ErrChannelExists
	}
	channel.Members = append([]string{}, channel.Members...)
	s.channels[channel.ID] = channel
	return nil
}

func (s *MemoryStore) GetChannel(_ context.Context, id string) (Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	channel, ok := s.channels[id]
	if !ok {
		return Channel{}, ErrNotFound
	}
	channel.Members = append([]string{}, channel.Members...)
	return channel, nil
}

func (s *MemoryStore) ListChannels(_ context.Context, userID string) ([]Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Channel{}
	for _, channel := range s.channels {
		if channel.Type == ChannelPublic || channel.HasMember(userID) {
			channel.Members = append([]string{}, channel.Members...)
			out = append(out, channel)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListChannelViews(ctx context.Context, userID string) ([]ChannelView, error) {
	channels, err := s.ListChannels(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	views := make([]ChannelView, 0, len(channels))
	for _, channel := range channels {
		view := ChannelView{Channel: channel}
		since := s.reads[readKey(channel.ID, userID)]
		msgs := s.messages[channel.ID]
		for _, msg := range msgs {
			if msg.UserID != userID && msg.Timestamp.After(since) {
				view.UnreadCount++
			}
		}
		if len(msgs) > 0 {
			last := msgs[len(msgs)-1]
			view.LastMessage = &last
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *MemoryStore) AddMember(_ context.Context, channelID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	channel, ok := s.channels[channelID]
	if !ok {
		return ErrNotFound
	}
	if !channel.HasMember(userID) {
		channel.Members = append(channel.Members, userID)
		s.channels[channelID] = channel
	}
	return nil
}

func (s *MemoryStore) DeleteChannel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.channels[id]; !ok {
		return ErrNotFound
	}
	delete(s.channels, id)
	delete(s.messages, id)
	for key := range s.reads {
		if len(key) > len(id) && key[:len(id)+1] == id+"\x00" {
			delete(s.reads, key)
		}
	}
	return nil
}

func (s *MemoryStore) InsertMessage(_ context.Context, msg *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.channels[msg.ChannelID]; !ok {
		return ErrNotFound
	}
	msg.ID = uuid.NewString()
	s.messages[msg.ChannelID] = append(s.messages[msg.ChannelID], *msg)
	return nil
}

func (s *MemoryStore) ListMessages(_ context.Context, channelID string, before time.Time, limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.messages[channelID]
	end := len(all)
	if !before.IsZero() {
		end = sort.Search(len(all), func(i int) bool { return !all[i].Timestamp.Before(before) })
	}
	start := max(end-limit, 0)
	return append([]Message{}, all[start:end]...), nil
}

func (s *MemoryStore) MarkRead(_ context.Context, channelID, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads[readKey(channelID, userID)] = at
	return nil
}

func (s *MemoryStore) CountUnread(_ context.Context, channelID, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	since := s.reads[readKey(channelID, userID)]
	n := 0
	for _, msg := range s.messages[channelID] {
		if msg.UserID != userID && msg.Timestamp.After(since) {
			n++
		}
	}
	return n, nil
}
