package chat_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"perfeval/internal/domain/chat"
	"perfeval/internal/platform/config"
	"perfeval/internal/platform/db"
	"perfeval/internal/platform/mongodb"
)

// storeContract checks the behaviour every chat store shares.
func storeContract(t *testing.T, store chat.StoreAPI) {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()[:8]
	public := chat.Channel{ID: "pub-" + suffix, Name: "Pub", Type: chat.ChannelPublic, Members: []string{"u1"}, CreatedBy: "u1", CreatedAt: time.Now().UTC()}
	private := chat.Channel{ID: "priv-" + suffix, Name: "Priv", Type: chat.ChannelPrivate, Members: []string{"u1"}, CreatedBy: "u1", CreatedAt: time.Now().UTC()}

	for _, ch := range []chat.Channel{public, private} {
		if err := store.CreateChannel(ctx, ch); err != nil {
			t.Fatalf("create %s: %v", ch.ID, err)
		}
	}
	if err := store.CreateChannel(ctx, public); !errors.Is(err, chat.ErrChannelExists) {
		t.Fatalf("expected ErrChannelExists, got %v", err)
	}

	visible := func(userID string) map[string]bool {
		list, err := store.ListChannels(ctx, userID)
		if err != nil {
			t.Fatalf("list channels: %v", err)
		}
		out := map[string]bool{}
		for _, ch := range list {
			out[ch.ID] = true
		}
		return out
	}
	if v := visible("u2"); !v[public.ID] || v[private.ID] {
		t.Fatalf("u2 should only see the public channel, got %v", v)
	}
	if err := store.AddMember(ctx, private.ID, "u2"); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := store.AddMember(ctx, private.ID, "u2"); err != nil {
		t.Fatalf("add member twice: %v", err)
	}
	if v := visible("u2"); !v[private.ID] {
		t.Fatalf("u2 should see the private channel after joining")
	}

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, author := range []string{"u1", "u2", "u1"} {
		msg := &chat.Message{ChannelID: public.ID, UserID: author, Message: "m", Type: chat.KindMessage, Timestamp: base.Add(time.Duration(i) * time.Second)}
		if err := store.InsertMessage(ctx, msg); err != nil {
			t.Fatalf("insert message: %v", err)
		}
		if msg.ID == "" {
			t.Fatal("expected message id to be assigned")
		}
	}

	latest, err := store.ListMessages(ctx, public.ID, time.Time{}, 2)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(latest) != 2 || !latest[0].Timestamp.Before(latest[1].Timestamp) {
		t.Fatalf("expected the two newest messages oldest first, got %+v", latest)
	}
	older, err := store.ListMessages(ctx, public.ID, latest[0].Timestamp, 10)
	if err != nil {
		t.Fatalf("list older: %v", err)
	}
	if len(older) != 1 || older[0].UserID != "u1" {
		t.Fatalf("expected one older message, got %+v", older)
	}

	unread, err := store.CountUnread(ctx, public.ID, "u2")
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if unread != 2 {
		t.Fatalf("expected 2 unread for u2, got %d", unread)
	}
	if err := store.MarkRead(ctx, public.ID, "u2", base.Add(time.Second)); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if unread, _ = store.CountUnread(ctx, public.ID, "u2"); unread != 1 {
		t.Fatalf("expected 1 unread after marking read, got %d", unread)
	}

	views, err := store.ListChannelViews(ctx, "u2")
	if err != nil {
		t.Fatalf("list channel views: %v", err)
	}
	byID := map[string]chat.ChannelView{}
	for _, v := range views {
		byID[v.ID] = v
	}
	pub, ok := byID[public.ID]
	if !ok || pub.UnreadCount != 1 || pub.LastMessage == nil || pub.LastMessage.UserID != "u1" {
		t.Fatalf("unexpected public view: %+v", pub)
	}
	if !pub.LastMessage.Timestamp.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("expected the newest message, got %v", pub.LastMessage.Timestamp)
	}
	priv, ok := byID[private.ID]
	if !ok || priv.UnreadCount != 0 || priv.LastMessage != nil {
		t.Fatalf("unexpected private view: %+v", priv)
	}

	if err := store.DeleteChannel(ctx, public.ID); err != nil {
		t.Fatalf("delete channel: %v", err)
	}
	if _, err := store.GetChannel(ctx, public.ID); !errors.Is(err, chat.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if msgs, _ := store.ListMessages(ctx, public.ID, time.Time{}, 10); len(msgs) != 0 {
		t.Fatalf("expected messages to be deleted with the channel, got %d", len(msgs))
	}
	if err := store.DeleteChannel(ctx, private.ID); err != nil {
		t.Fatalf("delete private channel: %v", err)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	storeContract(t, chat.NewMemoryStore())
}

func TestMongoStoreContract(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	client, err := mongodb.Connect(ctx, config.Config{MongoURI: uri})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer mongodb.Disconnect(client)

	database := client.Database("perfeval_test_chat")
	defer database.Drop(context.Background())
	if err := mongodb.EnsureIndexes(ctx, database); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	storeContract(t, chat.NewMongoStore(database))
}

func TestPostgresStoreContract(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	pool, err := db.Connect(ctx, config.Config{DatabaseURL: dbURL})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	storeContract(t, chat.NewStore(pool))
}
