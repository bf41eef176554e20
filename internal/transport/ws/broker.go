package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const redisChannel = "perfeval:chat:relay"

// Broker fans a room frame out to every hub that may hold members of the room.
type Broker interface {
	Publish(ctx context.Context, room string, frame []byte) error
	// Run delivers frames published by any instance until ctx is done.
	Run(ctx context.Context, deliver func(room string, frame []byte)) error
}

// LocalBroker keeps fan-out inside this process.
type LocalBroker struct {
	deliver func(room string, frame []byte)
}

func (b *LocalBroker) Publish(_ context.Context, room string, frame []byte) error {
	if b.deliver != nil {
		b.deliver(room, frame)
	}
	return nil
}

func (b *LocalBroker) Run(ctx context.Context, deliver func(room string, frame []byte)) error {
	<-ctx.Done()
	return nil
}

type envelope struct {
	Room  string          `json:"room"`
	Frame json.RawMessage `json:"frame"`
}

// RedisBroker relays frames through Redis pub/sub so every instance sees them.
type RedisBroker struct {
	Client *redis.Client
	Logger *slog.Logger
}

func NewRedisBroker(client *redis.Client, logger *slog.Logger) *RedisBroker {
	return &RedisBroker{Client: client, Logger: logger}
}

func (b *RedisBroker) Publish(ctx context.Context, room string, frame []byte) error {
	payload, err := json.Marshal(envelope{Room: room, Frame: frame})
	if err != nil {
		return err
	}
	return b.Client.Publish(ctx, redisChannel, payload).Err()
}

func (b *RedisBroker) Run(ctx context.Context, deliver func(room string, frame []byte)) error {
	sub := b.Client.Subscribe(ctx, redisChannel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.Logger.Warn("chat relay: bad pubsub payload", "err", err)
				continue
			}
			deliver(env.Room, env.Frame)
		}
	}
}
