package goals

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

type goalDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        string             `bson:"userId"`
	Title         string             `bson:"title"`
	Description   string             `bson:"description"`
	Category      string             `bson:"category"`
	Priority      string             `bson:"priority"`
	Progress      int                `bson:"progress"`
	Status        string             `bson:"status"`
	DueDate       string             `bson:"dueDate,omitempty"`
	CompletedDate string             `bson:"completedDate,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func newGoalDoc(g Goal) goalDoc {
	return goalDoc{
		UserID:        g.UserID,
		Title:         g.Title,
		Description:   g.Description,
		Category:      g.Category,
		Priority:      g.Priority,
		Progress:      g.Progress,
		Status:        g.Status,
		DueDate:       g.DueDate,
		CompletedDate: g.CompletedDate,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

func (d goalDoc) toGoal() Goal {
	return Goal{
		ID:            d.ID.Hex(),
		UserID:        d.UserID,
		Title:         d.Title,
		Description:   d.Description,
		Category:      d.Category,
		Priority:      d.Priority,
		Progress:      d.Progress,
		Status:        d.Status,
		DueDate:       d.DueDate,
		CompletedDate: d.CompletedDate,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// MongoStore is the MongoDB implementation of StoreAPI.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection(mongodb.CollectionGoals)}
}

func (s *MongoStore) Create(ctx context.Context, goal *Goal) error {
	res, err := s.collection.InsertOne(ctx, newGoalDoc(*goal))
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		goal.ID = oid.Hex()
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (Goal, error) {
	oid, err := mongodb.ParseObjectID(id)
	if err != nil {
		return Goal{}, ErrNotFound
	}
	var doc goalDoc
	err = s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Goal{}, ErrNotFound
	}
	if err != nil {
		return Goal{}, err
	}
	return doc.toGoal(), nil
}

func (s *MongoStore) ListByOwner(ctx context.Context, userID string) ([]Goal, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []goalDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Goal, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toGoal())
	}
	return out, nil
}

func (s *MongoStore) Update(ctx context.Context, goal Goal) error {
	oid, err := mongodb.ParseObjectID(goal.ID)
	if err != nil {
		return ErrNotFound
	}
	doc := newGoalDoc(goal)
	doc.ID = oid
	res, err := s.collection.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := mongodb.ParseObjectID(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) MarkOverdue(ctx context.Context, today string, now time.Time) (int64, error) {
	res, err := s.collection.UpdateMany(ctx, bson.M{
		"dueDate":  bson.M{"$gt": "", "$lt": today},
		"progress": bson.M{"$lt": 100},
		"status":   bson.M{"$nin": bson.A{StatusCompleted, StatusOverdue}},
	}, bson.M{"$set": bson.M{"status": StatusOverdue, "updatedAt": now}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
