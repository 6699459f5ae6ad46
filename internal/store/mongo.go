package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Purav2003/epimech-admin/internal/models"
)

// ConnectMongo dials and pings MongoDB.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// ProductStore handles product CRUD in MongoDB, one collection per category.
type ProductStore struct {
	db *mongo.Database
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{db: db}
}

// EnsureIndexes creates the rank index on each category collection.
func (s *ProductStore) EnsureIndexes(ctx context.Context, collections ...string) error {
	for _, name := range collections {
		_, err := s.db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "rank", Value: 1}, {Key: "_id", Value: 1}},
		})
		if err != nil {
			return fmt.Errorf("rank index on %s: %w", name, err)
		}
	}
	return nil
}

func (s *ProductStore) List(ctx context.Context, collection string, f models.ProductFilter) ([]models.Product, error) {
	filter := bson.M{}
	if f.VisibleOnly {
		filter["is_hide"] = bson.M{"$ne": true}
	}
	if f.Search != "" {
		filter["part_name"] = bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
	}

	opts := options.Find().SetSort(bson.D{{Key: "rank", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductStore) Get(ctx context.Context, collection, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var p models.Product
	err = s.db.Collection(collection).FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductStore) Insert(ctx context.Context, collection string, p *models.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, p); err != nil {
		return fmt.Errorf("mongo insert: %w", err)
	}
	return nil
}

func (s *ProductStore) Update(ctx context.Context, collection, id string, patch models.ProductPatch, at time.Time) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{"updated_at": at}
	if patch.PartName != nil {
		set["part_name"] = *patch.PartName
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}
	if patch.PartNumber != nil {
		set["part_number"] = *patch.PartNumber
	}
	if patch.Subimages != nil {
		set["subimages"] = *patch.Subimages
	}
	if patch.IsHide != nil {
		set["is_hide"] = *patch.IsHide
	}

	var p models.Product
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = s.db.Collection(collection).FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductStore) Delete(ctx context.Context, collection, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProductStore) SetRank(ctx context.Context, collection, id string, rank int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"rank": rank}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MaxRank returns the highest rank in the collection, or 0 when empty.
func (s *ProductStore) MaxRank(ctx context.Context, collection string) (int, error) {
	var doc struct {
		Rank int `bson:"rank"`
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "rank", Value: -1}}).
		SetProjection(bson.M{"rank": 1})
	err := s.db.Collection(collection).FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.Rank, nil
}
