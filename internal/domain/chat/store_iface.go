package chat

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateChannel(ctx context.Context, channel Channel) error
	GetChannel(ctx context.Context, id string) (Channel, error)
	// ListChannels returns public channels plus private ones userID belongs to.
	ListChannels(ctx context.Context, userID string) ([]Channel, error)
	// ListChannelViews is ListChannels with each channel's unread count and
	// latest message for userID, fetched in a fixed number of round trips.
	ListChannelViews(ctx context.Context, userID string) ([]ChannelView, error)
	AddMember(ctx context.Context, channelID, userID string) error
	// DeleteChannel removes the channel with its messages and read markers.
	DeleteChannel(ctx context.Context, id string) error
	InsertMessage(ctx context.Context, msg *Message) error
	// ListMessages returns up to limit messages older than before, oldest first.
	ListMessages(ctx context.Context, channelID string, before time.Time, limit int) ([]Message, error)
	MarkRead(ctx context.Context, channelID, userID string, at time.Time) error
	// CountUnread counts other users' messages newer than userID's read marker.
	CountUnread(ctx context.Context, channelID, userID string) (int, error)
}
