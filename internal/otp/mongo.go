package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps records in a collection with a TTL index on
// expires_at. The TTL monitor only runs about once a minute, so Get also
// filters on expiry.
type MongoStore struct {
	col *mongo.Collection
	now func() time.Time
}

type mongoRecord struct {
	Key       string    `bson:"_id"`
	Code      string    `bson:"code"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("otps"), now: time.Now}
}

// EnsureIndexes creates the TTL index that lets MongoDB purge stale codes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("otp_ttl"),
	})
	if err != nil {
		return fmt.Errorf("otp ttl index: %w", err)
	}
	return nil
}

func (s *MongoStore) Set(ctx context.Context, key string, rec Record, ttl time.Duration) error {
	expiresAt := rec.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = s.now().Add(ttl)
	}
	doc := mongoRecord{Key: key, Code: rec.Code, ExpiresAt: expiresAt.UTC()}
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) Get(ctx context.Context, key string) (Record, error) {
	var doc mongoRecord
	err := s.col.FindOne(ctx, bson.M{
		"_id":        key,
		"expires_at": bson.M{"$gt": s.now().UTC()},
	}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return Record{Code: doc.Code, ExpiresAt: doc.ExpiresAt}, nil
}

func (s *MongoStore) Delete(ctx context.Context, key string) (bool, error) {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) DeleteIfCode(ctx context.Context, key, code string) (bool, error) {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": key, "code": code})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
