package evaluations

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

type evaluationDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        string             `bson:"userId"`
	Title         string             `bson:"title"`
	Type          string             `bson:"type"`
	ReviewerID    string             `bson:"reviewerId"`
	RevieweeID    string             `bson:"revieweeId"`
	Status        string             `bson:"status"`
	Priority      string             `bson:"priority,omitempty"`
	Progress      int                `bson:"progress"`
	Score         *float64           `bson:"score,omitempty"`
	DueDate       string             `bson:"dueDate,omitempty"`
	ScheduledDate string             `bson:"scheduledDate,omitempty"`
	CompletedDate string             `bson:"completedDate,omitempty"`
	Comments      string             `bson:"comments,omitempty"`
	Anonymous     bool               `bson:"anonymous"`
	Questions     []Question         `bson:"questions"`
	Responses     []Response         `bson:"responses"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func newEvaluationDoc(e Evaluation) evaluationDoc {
	return evaluationDoc{
		UserID:        e.UserID,
		Title:         e.Title,
		Type:          e.Type,
		ReviewerID:    e.ReviewerID,
		RevieweeID:    e.RevieweeID,
		Status:        e.Status,
		Priority:      e.Priority,
		Progress:      e.Progress,
		Score:         e.Score,
		DueDate:       e.DueDate,
		ScheduledDate: e.ScheduledDate,
		CompletedDate: e.CompletedDate,
		Comments:      e.Comments,
		Anonymous:     e.Anonymous,
		Questions:     e.Questions,
		Responses:     e.Responses,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func (d evaluationDoc) toEvaluation() Evaluation {
	e := Evaluation{
		ID:            d.ID.Hex(),
		UserID:        d.UserID,
		Title:         d.Title,
		Type:          d.Type,
		ReviewerID:    d.ReviewerID,
		RevieweeID:    d.RevieweeID,
		Status:        d.Status,
		Priority:      d.Priority,
		Progress:      d.Progress,
		Score:         d.Score,
		DueDate:       d.DueDate,
		ScheduledDate: d.ScheduledDate,
		CompletedDate: d.CompletedDate,
		Comments:      d.Comments,
		Anonymous:     d.Anonymous,
		Questions:     d.Questions,
		Responses:     d.Responses,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if e.Questions == nil {
		e.Questions = []Question{}
	}
	if e.Responses == nil {
		e.Responses = []Response{}
	}
	return e
}

// MongoStore is the MongoDB implementation of StoreAPI.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection(mongodb.CollectionEvaluations)}
}

func (s *MongoStore) Create(ctx context.Context, e *Evaluation) error {
	res, err := s.collection.InsertOne(ctx, newEvaluationDoc(*e))
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		e.ID = oid.Hex()
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (Evaluation, error) {
	oid, err := mongodb.ParseObjectID(id)
	if err != nil {
		return Evaluation{}, ErrNotFound
	}
	var doc evaluationDoc
	err = s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Evaluation{}, ErrNotFound
	}
	if err != nil {
		return Evaluation{}, err
	}
	return doc.toEvaluation(), nil
}

func (s *MongoStore) find(ctx context.Context, filter bson.M) ([]Evaluation, error) {
	cursor, err := s.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []evaluationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Evaluation, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toEvaluation())
	}
	return out, nil
}

func (s *MongoStore) ListAll(ctx context.Context) ([]Evaluation, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoStore) ListForUser(ctx context.Context, userID string) ([]Evaluation, error) {
	return s.find(ctx, bson.M{"$or": bson.A{
		bson.M{"userId": userID},
		bson.M{"reviewerId": userID},
		bson.M{"revieweeId": userID},
	}})
}

func (s *MongoStore) Update(ctx context.Context, e Evaluation) error {
	oid, err := mongodb.ParseObjectID(e.ID)
	if err != nil {
		return ErrNotFound
	}
	doc := newEvaluationDoc(e)
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
