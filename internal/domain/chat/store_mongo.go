package chat

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"perfeval/internal/platform/mongodb"
)

type channelDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Type      string    `bson:"type"`
	Members   []string  `bson:"members"`
	CreatedBy string    `bson:"createdBy"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d channelDoc) toChannel() Channel {
	members := d.Members
	if members == nil {
		members = []string{}
	}
	return Channel{ID: d.ID, Name: d.Name, Type: d.Type, Members: members, CreatedBy: d.CreatedBy, CreatedAt: d.CreatedAt}
}

type messageDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ChannelID  string             `bson:"channelId"`
	UserID     string             `bson:"userId"`
	UserName   string             `bson:"userName"`
	UserAvatar string             `bson:"userAvatar"`
	Message    string             `bson:"message"`
	Timestamp  time.Time          `bson:"timestamp"`
	Type       string             `bson:"type"`
}

func (d messageDoc) toMessage() Message {
	return Message{
		ID:         d.ID.Hex(),
		ChannelID:  d.ChannelID,
		UserID:     d.UserID,
		UserName:   d.UserName,
		UserAvatar: d.UserAvatar,
		Message:    d.Message,
		Timestamp:  d.Timestamp,
		Type:       d.Type,
	}
}

// MongoStore is the MongoDB implementation of StoreAPI.
type MongoStore struct {
	channels *mongo.Collection
	messages *mongo.Collection
	reads    *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		channels: db.Collection(mongodb.CollectionChannels),
		messages: db.Collection(mongodb.CollectionMessages),
		reads:    db.Collection(mongodb.CollectionChatReads),
	}
}

func (s *MongoStore) CreateChannel(ctx context.Context, channel Channel) error {
	members := channel.Members
	if members == nil {
		members = []string{}
	}
	_, err := s.channels.InsertOne(ctx, channelDoc{
		ID:        channel.ID,
		Name:      channel.Name,
		Type:      channel.Type,
		Members:   members,
		CreatedBy: channel.CreatedBy,
		CreatedAt: channel.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrChannelExists
	}
	return err
}

func (s *MongoStore) GetChannel(ctx context.Context, id string) (Channel, error) {
	var doc channelDoc
	err := s.channels.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Channel{}, ErrNotFound
	}
	if err != nil {
		return Channel{}, err
	}
	return doc.toChannel(), nil
}

func (s *MongoStore) ListChannels(ctx context.Context, userID string) ([]Channel, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"type": ChannelPublic},
		bson.M{"members": userID},
	}}
	cursor, err := s.channels.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []channelDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Channel, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toChannel())
	}
	return out, nil
}

// ListChannelViews reads the caller's markers once, then folds every visible
// channel's messages into a latest message and an unread count in one pipeline.
func (s *MongoStore) ListChannelViews(ctx context.Context, userID string) ([]ChannelView, error) {
	channels, err := s.ListChannels(ctx, userID)
	if err != nil || len(channels) == 0 {
		return []ChannelView{}, err
	}
	ids := make(bson.A, 0, len(channels))
	for _, ch := range channels {
		ids = append(ids, ch.ID)
	}

	cursor, err := s.reads.Find(ctx, bson.M{"userId": userID, "channelId": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var reads []struct {
		ChannelID  string    `bson:"channelId"`
		LastReadAt time.Time `bson:"lastReadAt"`
	}
	if err := cursor.All(ctx, &reads); err != nil {
		return nil, err
	}
	var marker any = time.Time{}
	if len(reads) > 0 {
		branches := make(bson.A, 0, len(reads))
		for _, r := range reads {
			branches = append(branches, bson.M{"case": bson.M{"$eq": bson.A{"$channelId", r.ChannelID}}, "then": r.LastReadAt})
		}
		marker = bson.M{"$switch": bson.M{"branches": branches, "default": time.Time{}}}
	}
	unread := bson.M{"$and": bson.A{
		bson.M{"$ne": bson.A{"$userId", userID}},
		bson.M{"$gt": bson.A{"$timestamp", marker}},
	}}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"channelId": bson.M{"$in": ids}}}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$channelId",
			"last":   bson.M{"$first": "$$ROOT"},
			"unread": bson.M{"$sum": bson.M{"$cond": bson.A{unread, 1, 0}}},
		}}},
	}
	agg, err := s.messages.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var groups []struct {
		ChannelID string     `bson:"_id"`
		Last      messageDoc `bson:"last"`
		Unread    int        `bson:"unread"`
	}
	if err := agg.All(ctx, &groups); err != nil {
		return nil, err
	}
	byChannel := make(map[string]int, len(groups))
	for i, g := range groups {
		byChannel[g.ChannelID] = i
	}

	views := make([]ChannelView, 0, len(channels))
	for _, ch := range channels {
		view := ChannelView{Channel: ch}
		if i, ok := byChannel[ch.ID]; ok {
			last := groups[i].Last.toMessage()
			view.LastMessage = &last
			view.UnreadCount = groups[i].Unread
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *MongoStore) AddMember(ctx context.Context, channelID, userID string) error {
	res, err := s.channels.UpdateOne(ctx, bson.M{"_id": channelID}, bson.M{"$addToSet": bson.M{"members": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteChannel(ctx context.Context, id string) error {
	res, err := s.channels.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	if _, err := s.messages.DeleteMany(ctx, bson.M{"channelId": id}); err != nil {
		return err
	}
	_, err = s.reads.DeleteMany(ctx, bson.M{"channelId": id})
	return err
}

func (s *MongoStore) InsertMessage(ctx context.Context, msg *Message) error {
	res, err := s.messages.InsertOne(ctx, messageDoc{
		ChannelID:  msg.ChannelID,
		UserID:     msg.UserID,
		UserName:   msg.UserName,
		UserAvatar: msg.UserAvatar,
		Message:    msg.Message,
		Timestamp:  msg.Timestamp,
		Type:       msg.Type,
	})
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid.Hex()
	}
	return nil
}

func (s *MongoStore) ListMessages(ctx context.Context, channelID string, before time.Time, limit int) ([]Message, error) {
	filter := bson.M{"channelId": channelID}
	if !before.IsZero() {
		filter["timestamp"] = bson.M{"$lt": before}
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(int64(limit))
	cursor, err := s.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []messageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Message, len(docs))
	for i, doc := range docs {
		out[len(docs)-1-i] = doc.toMessage()
	}
	return out, nil
}

func (s *MongoStore) MarkRead(ctx context.Context, channelID, userID string, at time.Time) error {
	_, err := s.reads.UpdateOne(ctx,
		bson.M{"channelId": channelID, "userId": userID},
		bson.M{"$set": bson.M{"lastReadAt": at}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *MongoStore) CountUnread(ctx context.Context, channelID, userID string) (int, error) {
	filter := bson.M{"channelId": channelID, "userId": bson.M{"$ne": userID}}
	var read struct {
		LastReadAt time.Time `bson:"lastReadAt"`
	}
	err := s.reads.FindOne(ctx, bson.M{"channelId": channelID, "userId": userID}).Decode(&read)
	switch {
	case err == nil:
		filter["timestamp"] = bson.M{"$gt": read.LastReadAt}
	case !errors.Is(err, mongo.ErrNoDocuments):
		return 0, err
	}
	n, err := s.messages.CountDocuments(ctx, filter)
	return int(n), err
}
