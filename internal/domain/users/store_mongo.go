package users

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

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	Name         string             `bson:"name"`
	Department   string             `bson:"department"`
	Role         string             `bson:"role"`
	Avatar       string             `bson:"avatar,omitempty"`
	MFAEnabled   bool               `bson:"mfaEnabled"`
	PasswordHash string             `bson:"passwordHash"`
	MFASecret    []byte             `bson:"mfaSecret,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d userDoc) toUser() User {
	return User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		Name:         d.Name,
		Department:   d.Department,
		Role:         d.Role,
		Avatar:       d.Avatar,
		MFAEnabled:   d.MFAEnabled,
		PasswordHash: d.PasswordHash,
		MFASecret:    d.MFASecret,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// MongoStore is the MongoDB implementation of StoreAPI.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection(mongodb.CollectionUsers)}
}

func (s *MongoStore) Create(ctx context.Context, user *User) error {
	doc := userDoc{
		Email:        user.Email,
		Name:         user.Name,
		Department:   user.Department,
		Role:         user.Role,
		Avatar:       user.Avatar,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	res, err := s.collection.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	return nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (User, error) {
	var doc userDoc
	err := s.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return doc.toUser(), nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (User, error) {
	oid, err := mongodb.ParseObjectID(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoStore) List(ctx context.Context) ([]User, error) {
	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]User, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toUser())
	}
	return out, nil
}

func (s *MongoStore) Update(ctx context.Context, user User) error {
	oid, err := mongodb.ParseObjectID(user.ID)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"email":      user.Email,
		"name":       user.Name,
		"department": user.Department,
		"avatar":     user.Avatar,
		"updatedAt":  user.UpdatedAt,
	}})
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) SetMFA(ctx context.Context, id string, enabled bool, secret []byte) error {
	oid, err := mongodb.ParseObjectID(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"mfaEnabled": enabled,
		"mfaSecret":  secret,
		"updatedAt":  time.Now().UTC(),
	}})
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
