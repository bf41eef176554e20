package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"perfeval/internal/platform/config"
)

const (
	CollectionUsers       = "users"
	CollectionGoals       = "goals"
	CollectionEvaluations = "evaluations"
	CollectionChannels    = "chat_channels"
	CollectionMessages    = "chat_messages"
	CollectionChatReads   = "chat_reads"
	CollectionContacts    = "contact_messages"
	connectTimeout        = 10 * time.Second
	disconnectTimeout     = 10 * time.Second
)

// ErrInvalidID is returned when a path id is not an ObjectID hex string.
var ErrInvalidID = errors.New("invalid object id")

func Connect(ctx context.Context, cfg config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

func Disconnect(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the unique and lookup indexes every store relies on.
// CreateMany is idempotent for identical index specs.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		CollectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionGoals: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "dueDate", Value: 1}, {Key: "progress", Value: 1}}},
		},
		CollectionEvaluations: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "reviewerId", Value: 1}}},
			{Keys: bson.D{{Key: "revieweeId", Value: 1}}},
		},
		CollectionChannels: {
			{Keys: bson.D{{Key: "members", Value: 1}}},
		},
		CollectionMessages: {
			{Keys: bson.D{{Key: "channelId", Value: 1}, {Key: "timestamp", Value: 1}}},
		},
		CollectionChatReads: {
			{Keys: bson.D{{Key: "channelId", Value: 1}, {Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func ParseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}
