package chat

import "time"

// Channel is a chat room. Its ID doubles as the relay room name.
type Channel struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Members   []string  `json:"members"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c Channel) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// ChannelView is a channel as seen by one caller.
type ChannelView struct {
	Channel
	UnreadCount int      `json:"unreadCount"`
	LastMessage *Message `json:"lastMessage,omitempty"`
}

type Message struct {
	ID         string    `json:"id"`
	ChannelID  string    `json:"channelId"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	UserAvatar string    `json:"userAvatar"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	Type       string    `json:"type"`
}

type CreateChannelInput struct {
	Name    string
	Type    string
	Members []string
}
