package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Purav2003/epimech-admin/internal/models"
)

// InquiryStore keeps storefront inquiries in MongoDB.
type InquiryStore struct {
	col *mongo.Collection
}

func NewInquiryStore(db *mongo.Database) *InquiryStore {
	return &InquiryStore{col: db.Collection("inquiries")}
}

// List returns inquiries newest first, optionally of one type.
func (s *InquiryStore) List(ctx context.Context, typ models.InquiryType) ([]models.Inquiry, error) {
	filter := bson.M{}
	if typ != "" {
		filter["type"] = typ
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Inquiry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *InquiryStore) Insert(ctx context.Context, inq *models.Inquiry) error {
	if inq.ID.IsZero() {
		inq.ID = primitive.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, inq); err != nil {
		return fmt.Errorf("mongo insert: %w", err)
	}
	return nil
}

func (s *InquiryStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
